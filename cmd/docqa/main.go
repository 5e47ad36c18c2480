package main

import (
	"github.com/joho/godotenv"

	"docqa/internal/cli"
)

func main() {
	// API keys may live in a local .env file; absence is fine.
	godotenv.Load()

	cli.Execute()
}

package api

import (
	"encoding/json"
	"net/http"

	"docqa/internal/domain"
)

type questionRequest struct {
	Question string `json:"question"`
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type answerResponse struct {
	Answer       string `json:"answer"`
	Source       string `json:"source"`
	QualityScore int    `json:"quality_score"`
}

type chatResponse struct {
	Answer       string    `json:"answer"`
	Source       string    `json:"source"`
	QualityScore int       `json:"quality_score"`
	SessionID    string    `json:"session_id"`
	History      []message `json:"history"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toMessages(history []domain.Message) []message {
	out := make([]message, len(history))
	for i, m := range history {
		out[i] = message{Role: m.Role, Content: m.Content}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

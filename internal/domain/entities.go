package domain

import "time"

// Section kinds produced by the parser and carried through chunk metadata.
const (
	KindText  = "text"
	KindTable = "table"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Section is one logical unit extracted from a source document: a run of
// prose under a header, or a table serialized to text.
type Section struct {
	Kind    string
	Header  string
	Columns []string
	Body    string
}

// ChunkMetadata tags a chunk with the section it came from.
type ChunkMetadata struct {
	Kind    string   `json:"kind"`
	Header  string   `json:"header,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

// Chunk is the unit of indexing: a bounded span of text plus the metadata
// of the section that produced it. Immutable once created.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// DocumentRecord is the durable registry entry for one ingested file.
// ContentHash is the natural key: two byte-identical files are the same
// document regardless of path or name.
type DocumentRecord struct {
	ContentHash string    `json:"content_hash"`
	SourcePath  string    `json:"source_path"`
	DisplayName string    `json:"display_name"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// RetrievedChunk is a similarity-search result with its original metadata.
type RetrievedChunk struct {
	Kind    string   `json:"kind"`
	Content string   `json:"content"`
	Header  string   `json:"header,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Score   float64  `json:"score"`
}

// Message is one conversation turn as seen by callers (timestamps are
// internal to the conversation store).
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Answer is the result of a single-query request.
type Answer struct {
	Answer       string `json:"answer"`
	Source       string `json:"source"`
	QualityScore int    `json:"quality_score"`
}

// ChatAnswer is the result of a chat request: an Answer scoped to a
// session, with the running history after this exchange.
type ChatAnswer struct {
	Answer
	SessionID string    `json:"session_id"`
	History   []Message `json:"conversation_history"`
}

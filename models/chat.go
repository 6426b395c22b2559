package models

import "time"

// Turn is a single conversation turn owned by a session.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessage is one message in the prompt sent to the LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required,min=1,max=2000"`
}

// ChatResponse is the reply returned by POST /api/chat.
type ChatResponse struct {
	Reply           string        `json:"reply"`
	TokensUsed      int           `json:"tokens_used"`
	RetrievedChunks int           `json:"retrieved_chunks"`
	Scores          []SourceScore `json:"scores"`
	SessionID       string        `json:"session_id"`
	Timestamp       time.Time     `json:"timestamp"`
}

// SourceScore reports which source a retrieved chunk came from and how well
// it matched the query.
type SourceScore struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

package models

import "time"

// MessageRole identifies who produced a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn of a conversation, keyed by session.
type ChatMessage struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// Advice is the structured payload produced by one pipeline invocation.
// Allocation fields are populated for portfolio queries, Projection for
// prediction queries; the narrative is always present.
type Advice struct {
	SessionID       string                 `json:"session_id"`
	Intent          IntentResult           `json:"intent"`
	Profile         *UserProfile           `json:"profile,omitempty"`
	BaseAllocation  Allocation             `json:"base_allocation,omitempty"`
	Adjusted        Allocation             `json:"adjusted_allocation,omitempty"`
	Amounts         map[AssetClass]float64 `json:"allocation_amounts,omitempty"`
	TotalInvestment float64                `json:"total_investment,omitempty"`
	SentimentNotes  string                 `json:"sentiment_notes,omitempty"`
	Projection      *PriceProjection       `json:"projection,omitempty"`
	Narrative       string                 `json:"narrative"`
}

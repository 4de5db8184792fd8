package internal

import "time"

// GenerationRecord is one generate action as kept in history.
type GenerationRecord struct {
	ID             string    `json:"id"`
	Mode           string    `json:"mode"`
	Selection      string    `json:"selection"`
	BasePrompt     string    `json:"base_prompt"`
	EnhancedPrompt string    `json:"enhanced_prompt"`
	Advisory       string    `json:"advisory,omitempty"`
	Model          string    `json:"model"`
	LatencyMs      int       `json:"latency_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

package schema

import "time"

// ToolStatus describes the lifecycle of a tool invocation.
type ToolStatus string

const (
	// ToolRunning indicates the tool has started and not yet ended.
	ToolRunning ToolStatus = "running"
	// ToolCompleted indicates the tool has ended.
	ToolCompleted ToolStatus = "completed"
)

// ToolActivity is one entry in the tool activity ledger.
type ToolActivity struct {
	ID        ActivityID `json:"id"`
	Tool      string     `json:"tool"`
	Input     string     `json:"input,omitempty"`
	Output    string     `json:"output,omitempty"`
	Status    ToolStatus `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at,omitzero"`
}

// Duration reports how long the invocation ran. Zero until completed.
func (a ToolActivity) Duration() time.Duration {
	if a.Status != ToolCompleted || a.EndedAt.Before(a.StartedAt) {
		return 0
	}
	return a.EndedAt.Sub(a.StartedAt)
}

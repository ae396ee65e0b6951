package models

import "time"

// Event types
const (
	EventTypeStageCompleted = "STAGE_COMPLETED"
	EventTypeRunCompleted   = "RUN_COMPLETED"
	EventTypeRunFailed      = "RUN_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// StageCompletedEvent published after a stage's rows are committed
type StageCompletedEvent struct {
	BaseEvent
	RunID    string `json:"run_id"`
	Stage    string `json:"stage"`
	Table    string `json:"table"`
	RowCount int    `json:"row_count"`
}

// RunCompletedEvent published when all present stages finish
type RunCompletedEvent struct {
	BaseEvent
	RunID      string         `json:"run_id"`
	RowCounts  map[string]int `json:"row_counts"`
	DurationMS int64          `json:"duration_ms"`
}

// RunFailedEvent published when the run aborts
type RunFailedEvent struct {
	BaseEvent
	RunID  string `json:"run_id"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

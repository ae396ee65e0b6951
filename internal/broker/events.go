package broker

import (
	"context"
	"fmt"
	"time"

	"sales-etl/internal/models"

	"github.com/google/uuid"
)

// LoadEventPublisher publishes ETL lifecycle events keyed by run id, so
// downstream consumers (reconciliation tooling, the dashboard refresher) can
// react to completed or aborted loads.
type LoadEventPublisher struct {
	producer *Producer
}

// NewLoadEventPublisher creates a new load event publisher
func NewLoadEventPublisher(producer *Producer) *LoadEventPublisher {
	return &LoadEventPublisher{producer: producer}
}

func baseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// StageCompleted publishes a STAGE_COMPLETED event
func (ep *LoadEventPublisher) StageCompleted(ctx context.Context, runID, stage, table string, rows int) error {
	event := &models.StageCompletedEvent{
		BaseEvent: baseEvent(models.EventTypeStageCompleted),
		RunID:     runID,
		Stage:     stage,
		Table:     table,
		RowCount:  rows,
	}
	return ep.producer.PublishEvent(ctx, runKey(runID), event)
}

// RunCompleted publishes a RUN_COMPLETED event
func (ep *LoadEventPublisher) RunCompleted(ctx context.Context, runID string, counts map[string]int, duration time.Duration) error {
	event := &models.RunCompletedEvent{
		BaseEvent:  baseEvent(models.EventTypeRunCompleted),
		RunID:      runID,
		RowCounts:  counts,
		DurationMS: duration.Milliseconds(),
	}
	return ep.producer.PublishEvent(ctx, runKey(runID), event)
}

// RunFailed publishes a RUN_FAILED event
func (ep *LoadEventPublisher) RunFailed(ctx context.Context, runID, stage, reason string) error {
	event := &models.RunFailedEvent{
		BaseEvent: baseEvent(models.EventTypeRunFailed),
		RunID:     runID,
		Stage:     stage,
		Reason:    reason,
	}
	return ep.producer.PublishEvent(ctx, runKey(runID), event)
}

func runKey(runID string) string {
	return fmt.Sprintf("run-%s", runID)
}

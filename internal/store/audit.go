package store

import (
	"context"

	"rentalhub/internal/models"
)

// IsEventRecorded checks whether the audit worker already processed an event.
func (s *Store) IsEventRecorded(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM workflow_events WHERE event_id = $1)", eventID)
	return exists, err
}

// RecordWorkflowEvent appends one audit row; replays are absorbed by the
// event_id primary key.
func (s *Store) RecordWorkflowEvent(ctx context.Context, e *models.WorkflowEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflow_events (event_id, event_type, entity, entity_id, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.EventType, e.Entity, e.EntityID, e.Payload)
	return err
}

// GetWorkflowEvents lists the audit trail for one entity, oldest first.
func (s *Store) GetWorkflowEvents(ctx context.Context, entity string, entityID int64) ([]models.WorkflowEvent, error) {
	var events []models.WorkflowEvent
	err := s.db.SelectContext(ctx, &events,
		"SELECT * FROM workflow_events WHERE entity = $1 AND entity_id = $2 ORDER BY processed_at",
		entity, entityID)
	return events, err
}

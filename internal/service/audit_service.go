package service

import (
	"context"

	"rentalhub/internal/models"
	"rentalhub/internal/store"
)

// AuditService exposes the workflow_events trail the audit worker writes.
type AuditService struct {
	store *store.Store
}

// NewAuditService creates a new audit service
func NewAuditService(st *store.Store) *AuditService {
	return &AuditService{store: st}
}

var auditEntities = map[string]bool{
	"order_payment": true,
	"booking":       true,
	"supplier":      true,
}

// Trail lists the recorded workflow events for one entity, oldest first.
func (s *AuditService) Trail(ctx context.Context, entity string, entityID int64) ([]models.WorkflowEvent, error) {
	if !auditEntities[entity] {
		return nil, validationf("unknown audit entity: %q", entity)
	}
	return s.store.GetWorkflowEvents(ctx, entity, entityID)
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/rs/zerolog/log"
)

// AuditService records and lists tenant audit entries
type AuditService struct {
	repo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo *repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record writes an audit entry for the actor in ctx. Failures are logged and swallowed
// so that auditing never changes the outcome of the audited operation.
// It must not be called while a transaction holds the connection.
func (s *AuditService) Record(ctx context.Context, tenantID uuid.UUID, action, resourceType, resourceID string, opErr error) {
	if tenantID == uuid.Nil {
		return
	}

	actor := ActorFrom(ctx)
	entry := &models.AuditLog{
		TenantID:     tenantID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    actor.IP,
		UserAgent:    actor.UserAgent,
		Status:       models.AuditStatusSuccess,
	}
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		entry.UserID = &id
	}
	if opErr != nil {
		entry.Status = models.AuditStatusFailure
		entry.ErrorMessage = opErr.Error()
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn().Err(err).
			Str("tenant_id", tenantID.String()).
			Str("action", action).
			Msg("Failed to write audit log")
	}
}

// List returns a page of the tenant's audit log
func (s *AuditService) List(ctx context.Context, tenantID uuid.UUID, filter models.AuditFilter, p models.PageParams) (*models.Page[models.AuditLog], error) {
	logs, total, err := s.repo.List(ctx, tenantID, filter, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(logs, total, p), nil
}

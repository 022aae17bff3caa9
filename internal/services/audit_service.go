package services

import (
	"encoding/json"
	"fmt"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/rs/zerolog"
)

// AuditService appends history records. It never updates or deletes one.
type AuditService struct {
	auditRepo repository.AuditRepository
	log       zerolog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo repository.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

// Record appends a record for a mutation that has already committed.
// A failed append is logged rather than returned.
func (s *AuditService) Record(entity, entityID, operation, actorID string, data interface{}) {
	if s == nil {
		return
	}
	if err := s.Append(entity, entityID, operation, actorID, data); err != nil {
		s.log.Warn().Err(err).
			Str("entity", entity).
			Str("entity_id", entityID).
			Str("operation", operation).
			Msg("failed to write audit record")
	}
}

// Append writes one record and reports failures
func (s *AuditService) Append(entity, entityID, operation, actorID string, data interface{}) error {
	record := &models.Audit{
		Entity:    entity,
		EntityID:  entityID,
		Operation: operation,
		UserID:    actorID,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode audit data: %w", err)
		}
		record.Data = string(raw)
	}
	if err := s.auditRepo.Create(record); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// ListForEntity returns the history of one entity, oldest first
func (s *AuditService) ListForEntity(entity, entityID string) ([]models.Audit, error) {
	if entity == "" || entityID == "" {
		return nil, apierrors.NewValidationError(models.EntityAudit, "entity_id", "must not be empty")
	}
	records, err := s.auditRepo.ListForEntity(entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}

package repository

import (
	"github.com/helixtrack/core/internal/models"
	"gorm.io/gorm"
)

// GormAuditRepository is a GORM implementation of AuditRepository
type GormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: db}
}

// Create appends a record
func (r *GormAuditRepository) Create(record *models.Audit) error {
	return r.db.Create(record).Error
}

// ListForEntity lists records of one entity, oldest first
func (r *GormAuditRepository) ListForEntity(entity, entityID string) ([]models.Audit, error) {
	records := []models.Audit{}
	err := r.db.Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created ASC, id ASC").
		Find(&records).Error
	return records, err
}

package repository

import (
	"errors"
	"fmt"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"gorm.io/gorm"
)

// LinkKind describes one direction of an N:M mapping table.
type LinkKind[M any, PM interface {
	*M
	models.Entity
}] struct {
	Name         string
	SourceEntity string
	TargetEntity string
	SourceColumn string
	TargetColumn string
	// SourceModel and TargetModel are zero values of the joined tables, used for parent checks.
	SourceModel interface{}
	TargetModel interface{}
	// New builds an unsaved mapping row linking source to target
	New func(sourceID, targetID string) PM
	// Endpoints reads (source, target) back from a row
	Endpoints func(PM) (string, string)
}

// Reverse returns the same mapping table seen from the target side
func (k LinkKind[M, PM]) Reverse(name string) LinkKind[M, PM] {
	newRow, endpoints := k.New, k.Endpoints
	return LinkKind[M, PM]{
		Name:         name,
		SourceEntity: k.TargetEntity,
		TargetEntity: k.SourceEntity,
		SourceColumn: k.TargetColumn,
		TargetColumn: k.SourceColumn,
		SourceModel:  k.TargetModel,
		TargetModel:  k.SourceModel,
		New: func(sourceID, targetID string) PM {
			return newRow(targetID, sourceID)
		},
		Endpoints: func(row PM) (string, string) {
			source, target := endpoints(row)
			return target, source
		},
	}
}

// MappingRepository persists rows of one mapping kind.
type MappingRepository[M any, PM interface {
	*M
	models.Entity
}] struct {
	db   *gorm.DB
	kind LinkKind[M, PM]
}

// NewMappingRepository creates a MappingRepository for kind
func NewMappingRepository[M any, PM interface {
	*M
	models.Entity
}](db *gorm.DB, kind LinkKind[M, PM]) *MappingRepository[M, PM] {
	return &MappingRepository[M, PM]{db: db, kind: kind}
}

// Kind returns the mapping kind handled by the repository
func (r *MappingRepository[M, PM]) Kind() LinkKind[M, PM] {
	return r.kind
}

// ListBySource returns every row whose source column is sourceID, tombstones included
func (r *MappingRepository[M, PM]) ListBySource(sourceID string) ([]PM, error) {
	var rows []M
	err := r.db.Where(r.kind.SourceColumn+" = ?", sourceID).
		Order("created ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.kind.Name, err)
	}

	out := make([]PM, len(rows))
	for i := range rows {
		out[i] = PM(&rows[i])
	}
	return out, nil
}

// Link inserts a mapping row unless a live one already joins the pair.
// It reports whether a new row was created.
func (r *MappingRepository[M, PM]) Link(sourceID, targetID string) (PM, bool, error) {
	var (
		row     PM
		created bool
	)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.requireParent(tx, r.kind.SourceModel, r.kind.SourceEntity, sourceID); err != nil {
			return err
		}
		if err := r.requireParent(tx, r.kind.TargetModel, r.kind.TargetEntity, targetID); err != nil {
			return err
		}

		existing, err := r.findActive(tx, sourceID, targetID)
		if err == nil {
			row = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up %s: %w", r.kind.Name, err)
		}

		row = r.kind.New(sourceID, targetID)
		base := row.GetBase()
		base.EnsureID()
		base.Stamp(models.Now())
		if err := row.Validate(); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", r.kind.Name, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return row, created, nil
}

// Unlink tombstones every live row joining the pair and returns how many it touched.
func (r *MappingRepository[M, PM]) Unlink(sourceID, targetID string) (int64, error) {
	now := models.Now()
	result := r.db.Model(new(M)).
		Where(r.kind.SourceColumn+" = ? AND "+r.kind.TargetColumn+" = ? AND deleted = ?", sourceID, targetID, false).
		Updates(map[string]interface{}{
			"deleted":  true,
			"modified": gorm.Expr("CASE WHEN created > ? THEN created ELSE ? END", now, now),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to unlink %s: %w", r.kind.Name, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apierrors.NewNotFoundError(r.kind.Name, sourceID+"->"+targetID)
	}
	return result.RowsAffected, nil
}

func (r *MappingRepository[M, PM]) findActive(tx *gorm.DB, sourceID, targetID string) (PM, error) {
	var row M
	err := tx.Where(r.kind.SourceColumn+" = ? AND "+r.kind.TargetColumn+" = ? AND deleted = ?", sourceID, targetID, false).
		Order("created ASC, id ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return PM(&row), nil
}

func (r *MappingRepository[M, PM]) requireParent(tx *gorm.DB, model interface{}, entity, id string) error {
	if id == "" {
		return apierrors.NewValidationError(r.kind.Name, entity+"_id", "must not be empty")
	}
	if model == nil {
		return nil
	}
	var count int64
	if err := tx.Model(model).Where("id = ? AND deleted = ?", id, false).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s: %w", entity, err)
	}
	if count == 0 {
		return apierrors.NewNotFoundError(entity, id)
	}
	return nil
}

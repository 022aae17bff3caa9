package repository

import (
	"errors"
	"fmt"

	"github.com/helixtrack/core/internal/database"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/utils"
	"gorm.io/gorm"
)

// Store is the generic persistence layer for a catalog entity.
// Every mutation is a single statement or runs inside its own transaction.
type Store[T any, PT interface {
	*T
	models.Entity
}] struct {
	db *gorm.DB
}

// NewStore creates a Store for T
func NewStore[T any, PT interface {
	*T
	models.Entity
}](db *gorm.DB) *Store[T, PT] {
	return &Store[T, PT]{db: db}
}

// WithTx returns a copy of the store bound to tx
func (s *Store[T, PT]) WithTx(tx *gorm.DB) *Store[T, PT] {
	return &Store[T, PT]{db: tx}
}

func (s *Store[T, PT]) entityName() string {
	return PT(new(T)).EntityName()
}

// Create assigns an ID and timestamps when missing, validates and inserts the row.
func (s *Store[T, PT]) Create(entity PT) error {
	base := entity.GetBase()
	base.EnsureID()
	base.Stamp(models.Now())
	if err := entity.Validate(); err != nil {
		return err
	}
	if err := s.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", entity.EntityName(), err)
	}
	return nil
}

// FindByID loads a row by id, tombstones included
func (s *Store[T, PT]) FindByID(id string) (PT, error) {
	var row T
	if err := s.db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewNotFoundError(s.entityName(), id)
		}
		return nil, fmt.Errorf("failed to load %s: %w", s.entityName(), err)
	}
	return PT(&row), nil
}

// FindActive loads a row by id and treats tombstones as missing
func (s *Store[T, PT]) FindActive(id string) (PT, error) {
	entity, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if entity.GetBase().IsDeleted() {
		return nil, apierrors.NewNotFoundError(s.entityName(), id)
	}
	return entity, nil
}

// Exists reports whether a live row with id exists
func (s *Store[T, PT]) Exists(id string) (bool, error) {
	var count int64
	if err := s.db.Model(new(T)).Where("id = ? AND deleted = ?", id, false).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", s.entityName(), err)
	}
	return count > 0, nil
}

// List returns one page of live rows ordered by creation time
func (s *Store[T, PT]) List(params utils.PaginationParams) ([]T, int64, error) {
	query := s.db.Model(new(T)).Scopes(database.NotDeleted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", s.entityName(), err)
	}

	rows := []T{}
	err := query.Order("created ASC, id ASC").
		Scopes(database.Paginate(params)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", s.entityName(), err)
	}
	return rows, total, nil
}

// Save writes back a row changed through its setters. Tombstones cannot be saved.
func (s *Store[T, PT]) Save(entity PT) error {
	base := entity.GetBase()
	if base.IsDeleted() {
		return apierrors.NewValidationError(entity.EntityName(), "deleted", "tombstoned rows are read-only")
	}
	base.Touch()
	if err := entity.Validate(); err != nil {
		return err
	}

	result := s.db.Model(entity).
		Where("deleted = ?", false).
		Select("*").
		Omit("id", "created", "deleted").
		Updates(entity)
	if result.Error != nil {
		return fmt.Errorf("failed to save %s: %w", entity.EntityName(), result.Error)
	}
	if result.RowsAffected == 0 {
		// Some drivers report zero rows when nothing changed; confirm the row is still live.
		if _, err := s.FindActive(base.ID); err != nil {
			return err
		}
	}
	return nil
}

// SoftDelete tombstones a live row. Deleting a missing or tombstoned row is a NotFoundError.
func (s *Store[T, PT]) SoftDelete(id string) (PT, error) {
	var deleted PT
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entity, err := s.WithTx(tx).FindActive(id)
		if err != nil {
			return err
		}
		entity.GetBase().MarkDeleted()

		result := tx.Model(new(T)).
			Where("id = ? AND deleted = ?", id, false).
			Updates(map[string]interface{}{
				"deleted":  true,
				"modified": entity.GetBase().Modified,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to delete %s: %w", s.entityName(), result.Error)
		}
		if result.RowsAffected == 0 {
			return apierrors.NewNotFoundError(s.entityName(), id)
		}
		deleted = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

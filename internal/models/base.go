package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	apierrors "github.com/helixtrack/core/internal/errors"
	"gorm.io/gorm"
)

const (
	maxIDLength    = 64
	maxTitleLength = 255
)

// Entity is implemented by every soft-deletable row in the catalog.
type Entity interface {
	GetBase() *Base
	EntityName() string
	Validate() error
}

// Now returns the current time in epoch seconds
func Now() int64 {
	return time.Now().Unix()
}

// Base carries the identity, audit timestamps and tombstone flag shared by all entities.
// Rows are never physically erased; Deleted only ever goes from false to true.
type Base struct {
	ID       string `gorm:"primarykey;type:varchar(64)" json:"id"`
	Created  int64  `gorm:"not null" json:"created"`
	Modified int64  `gorm:"not null" json:"modified"`
	Deleted  bool   `gorm:"not null;default:false;index" json:"deleted"`
}

// GetBase exposes the embedded audit fields
func (b *Base) GetBase() *Base {
	return b
}

// IsDeleted reports whether the row is a tombstone
func (b *Base) IsDeleted() bool {
	return b.Deleted
}

// SetID assigns the identifier. It can only be set once.
func (b *Base) SetID(id string) error {
	if err := requireID("", "id", id); err != nil {
		return err
	}
	if b.ID != "" && b.ID != id {
		return apierrors.NewValidationError("", "id", "immutable after creation")
	}
	b.ID = id
	return nil
}

// SetCreated assigns the creation timestamp. It can only be set once.
func (b *Base) SetCreated(ts int64) error {
	if ts < 0 {
		return apierrors.NewValidationError("", "created", "must not be negative")
	}
	if b.Created != 0 && b.Created != ts {
		return apierrors.NewValidationError("", "created", "immutable after creation")
	}
	b.Created = ts
	if b.Modified < b.Created {
		b.Modified = b.Created
	}
	return nil
}

// EnsureID assigns a random identifier when none was supplied
func (b *Base) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
}

// Stamp initializes the timestamps of a row about to be persisted
func (b *Base) Stamp(now int64) {
	if b.Created == 0 {
		b.Created = now
	}
	if b.Modified < b.Created {
		b.Modified = b.Created
	}
}

// Touch moves Modified forward to the current time, never below Created.
func (b *Base) Touch() {
	now := Now()
	if now < b.Created {
		now = b.Created
	}
	if now > b.Modified {
		b.Modified = now
	}
}

// MarkDeleted turns the row into a tombstone
func (b *Base) MarkDeleted() {
	b.Deleted = true
	b.Touch()
}

// BeforeCreate is a GORM hook that populates the primary key and timestamps.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	b.EnsureID()
	b.Stamp(Now())
	return nil
}

func (b *Base) validateBase(entity string) error {
	if err := requireID(entity, "id", b.ID); err != nil {
		return err
	}
	if b.Created < 0 {
		return apierrors.NewValidationError(entity, "created", "must not be negative")
	}
	if b.Modified < b.Created {
		return apierrors.NewValidationError(entity, "modified", "must not precede created")
	}
	return nil
}

// mutate runs a field change on a live row and touches Modified on success.
func (b *Base) mutate(entity string, apply func() error) error {
	if b.Deleted {
		return apierrors.NewValidationError(entity, "deleted", "tombstoned rows are read-only")
	}
	if err := apply(); err != nil {
		return err
	}
	b.Touch()
	return nil
}

func requireID(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierrors.NewValidationError(entity, field, "must not be empty")
	}
	if len(value) > maxIDLength {
		return apierrors.NewValidationError(entity, field, "too long")
	}
	return nil
}

func optionalID(entity, field, value string) error {
	if value == "" {
		return nil
	}
	return requireID(entity, field, value)
}

func requireText(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierrors.NewValidationError(entity, field, "must not be empty")
	}
	if utf8.RuneCountInString(value) > maxTitleLength {
		return apierrors.NewValidationError(entity, field, "too long")
	}
	return nil
}

func nonNegative(entity, field string, value float64) error {
	if value < 0 {
		return apierrors.NewValidationError(entity, field, "must not be negative")
	}
	return nil
}

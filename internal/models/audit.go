package models

import (
	"github.com/google/uuid"
	apierrors "github.com/helixtrack/core/internal/errors"
	"gorm.io/gorm"
)

// Audit operations
const (
	OperationCreate     = "create"
	OperationUpdate     = "update"
	OperationDelete     = "delete"
	OperationTransition = "transition"
	OperationLink       = "link"
	OperationUnlink     = "unlink"
	OperationGrant      = "grant"
	OperationRevoke     = "revoke"
)

// Audit is an append-only history record. It has no Modified or Deleted column
// and is never updated after insertion.
type Audit struct {
	ID        string `gorm:"primarykey;type:varchar(64)" json:"id"`
	Created   int64  `gorm:"not null;index" json:"created"`
	Entity    string `gorm:"type:varchar(64);not null;index:idx_audit_entity" json:"entity"`
	EntityID  string `gorm:"type:varchar(64);not null;index:idx_audit_entity" json:"entity_id"`
	Operation string `gorm:"type:varchar(32);not null" json:"operation"`
	UserID    string `gorm:"type:varchar(64);index" json:"user_id"`
	Data      string `gorm:"type:text" json:"data"`
}

func (a *Audit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Created == 0 {
		a.Created = Now()
	}
	return a.Validate()
}

// BeforeUpdate rejects every update of an audit row
func (a *Audit) BeforeUpdate(tx *gorm.DB) error {
	return apierrors.NewValidationError(EntityAudit, "id", "audit records are append-only")
}

func (a *Audit) Validate() error {
	if err := requireID(EntityAudit, "entity", a.Entity); err != nil {
		return err
	}
	if err := requireID(EntityAudit, "entity_id", a.EntityID); err != nil {
		return err
	}
	return requireID(EntityAudit, "operation", a.Operation)
}

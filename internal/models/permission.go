package models

import apierrors "github.com/helixtrack/core/internal/errors"

// Permission values, ordered by how much they allow.
const (
	PermissionRead   = 1
	PermissionCreate = 2
	PermissionUpdate = 3
	PermissionDelete = 5
)

// Permission context kinds
const (
	ContextNode         = "node"
	ContextAccount      = "account"
	ContextOrganization = "organization"
	ContextTeam         = "team"
	ContextProject      = "project"
)

// Permission is a named capability such as "edit". Value encodes its access level.
type Permission struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Value       int    `gorm:"not null" json:"value"`
}

func (p *Permission) EntityName() string { return EntityPermission }

func (p *Permission) Validate() error {
	if err := p.validateBase(EntityPermission); err != nil {
		return err
	}
	if err := requireText(EntityPermission, "title", p.Title); err != nil {
		return err
	}
	if !IsValidPermissionValue(p.Value) {
		return apierrors.NewValidationError(EntityPermission, "value", "must be one of 1, 2, 3 or 5")
	}
	return nil
}

// IsValidPermissionValue reports whether v is a known access level
func IsValidPermissionValue(v int) bool {
	switch v {
	case PermissionRead, PermissionCreate, PermissionUpdate, PermissionDelete:
		return true
	}
	return false
}

// PermissionContext describes the kind of scope a grant applies to.
type PermissionContext struct {
	Base
	Context string `gorm:"type:varchar(32);not null" json:"context"`
}

func (c *PermissionContext) EntityName() string { return EntityPermissionContext }

func (c *PermissionContext) Validate() error {
	if err := c.validateBase(EntityPermissionContext); err != nil {
		return err
	}
	switch c.Context {
	case ContextNode, ContextAccount, ContextOrganization, ContextTeam, ContextProject:
		return nil
	}
	return apierrors.NewValidationError(EntityPermissionContext, "context", "unknown context kind")
}

// PermissionUserMapping grants a permission to a user inside one context
type PermissionUserMapping struct {
	Base
	PermissionID        string `gorm:"type:varchar(64);not null;index" json:"permission_id"`
	UserID              string `gorm:"type:varchar(64);not null;index" json:"user_id"`
	PermissionContextID string `gorm:"type:varchar(64);not null;index" json:"permission_context_id"`
}

func (m *PermissionUserMapping) EntityName() string { return EntityPermissionUserMapping }

func (m *PermissionUserMapping) Validate() error {
	return validateRefs(&m.Base, EntityPermissionUserMapping,
		"permission_id", m.PermissionID,
		"user_id", m.UserID,
		"permission_context_id", m.PermissionContextID,
	)
}

// PermissionTeamMapping grants a permission to every member of a team inside one context
type PermissionTeamMapping struct {
	Base
	PermissionID        string `gorm:"type:varchar(64);not null;index" json:"permission_id"`
	TeamID              string `gorm:"type:varchar(64);not null;index" json:"team_id"`
	PermissionContextID string `gorm:"type:varchar(64);not null;index" json:"permission_context_id"`
}

func (m *PermissionTeamMapping) EntityName() string { return EntityPermissionTeamMapping }

func (m *PermissionTeamMapping) Validate() error {
	return validateRefs(&m.Base, EntityPermissionTeamMapping,
		"permission_id", m.PermissionID,
		"team_id", m.TeamID,
		"permission_context_id", m.PermissionContextID,
	)
}

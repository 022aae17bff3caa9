package models

import apierrors "github.com/helixtrack/core/internal/errors"

// Cycle type constants. A parent cycle must have a larger type than its child.
const (
	CycleTypeSprint    = 10
	CycleTypeMilestone = 100
	CycleTypeRelease   = 1000
)

// Cycle is a sprint, milestone or release. CycleID references the parent cycle.
type Cycle struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CycleID     string `gorm:"type:varchar(64);index" json:"cycle_id"`
	Type        int    `gorm:"not null" json:"type"`
}

func (c *Cycle) EntityName() string { return EntityCycle }

func (c *Cycle) Validate() error {
	if err := c.validateBase(EntityCycle); err != nil {
		return err
	}
	if err := requireText(EntityCycle, "title", c.Title); err != nil {
		return err
	}
	if !IsValidCycleType(c.Type) {
		return apierrors.NewValidationError(EntityCycle, "type", "must be 10, 100 or 1000")
	}
	if c.CycleID == c.ID && c.ID != "" {
		return apierrors.NewValidationError(EntityCycle, "cycle_id", "a cycle cannot be its own parent")
	}
	return optionalID(EntityCycle, "cycle_id", c.CycleID)
}

// IsValidCycleType checks if the cycle type is one of sprint, milestone or release
func IsValidCycleType(t int) bool {
	return t == CycleTypeSprint || t == CycleTypeMilestone || t == CycleTypeRelease
}

// IsValidParent reports whether parentType may contain this cycle
func (c *Cycle) IsValidParent(parentType int) bool {
	return parentType > c.Type
}

// SetTitle renames the cycle
func (c *Cycle) SetTitle(title string) error {
	return c.mutate(EntityCycle, func() error {
		if err := requireText(EntityCycle, "title", title); err != nil {
			return err
		}
		c.Title = title
		return nil
	})
}

type CycleProjectMapping struct {
	Base
	CycleID   string `gorm:"type:varchar(64);not null;index" json:"cycle_id"`
	ProjectID string `gorm:"type:varchar(64);not null;index" json:"project_id"`
}

func (m *CycleProjectMapping) EntityName() string { return "cycle_project_mapping" }

func (m *CycleProjectMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "cycle_id", m.CycleID, "project_id", m.ProjectID)
}

type TicketCycleMapping struct {
	Base
	TicketID string `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
	CycleID  string `gorm:"type:varchar(64);not null;index" json:"cycle_id"`
}

func (m *TicketCycleMapping) EntityName() string { return "ticket_cycle_mapping" }

func (m *TicketCycleMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "ticket_id", m.TicketID, "cycle_id", m.CycleID)
}

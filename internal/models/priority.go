package models

import apierrors "github.com/helixtrack/core/internal/errors"

// Priority levels, lowest to highest
const (
	PriorityLevelLowest  = 1
	PriorityLevelHighest = 5
)

// Priority ranks how urgent a ticket is
type Priority struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Level       int    `gorm:"not null" json:"level"`
	Icon        string `gorm:"type:varchar(64)" json:"icon"`
	Color       string `gorm:"type:varchar(7)" json:"color"`
}

func (p *Priority) EntityName() string { return EntityPriority }

func (p *Priority) Validate() error {
	if err := p.validateBase(EntityPriority); err != nil {
		return err
	}
	if err := requireText(EntityPriority, "title", p.Title); err != nil {
		return err
	}
	if p.Level < PriorityLevelLowest || p.Level > PriorityLevelHighest {
		return apierrors.NewValidationError(EntityPriority, "level", "must be between 1 and 5")
	}
	if err := validateColor(p.Color); err != nil {
		return apierrors.NewValidationError(EntityPriority, "color", "must be a #rrggbb hex color")
	}
	return nil
}

// Resolution records how a closed ticket ended, e.g. fixed or duplicate
type Resolution struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (r *Resolution) EntityName() string { return EntityResolution }

func (r *Resolution) Validate() error {
	if err := r.validateBase(EntityResolution); err != nil {
		return err
	}
	return requireText(EntityResolution, "title", r.Title)
}

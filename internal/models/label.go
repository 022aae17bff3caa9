package models

import (
	"regexp"

	apierrors "github.com/helixtrack/core/internal/errors"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Label struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `gorm:"type:varchar(7)" json:"color"`
}

func (l *Label) EntityName() string { return EntityLabel }

func (l *Label) Validate() error {
	if err := l.validateBase(EntityLabel); err != nil {
		return err
	}
	if err := requireText(EntityLabel, "title", l.Title); err != nil {
		return err
	}
	return validateColor(l.Color)
}

// SetColor changes the hex color, e.g. "#ff0000"
func (l *Label) SetColor(color string) error {
	return l.mutate(EntityLabel, func() error {
		if err := validateColor(color); err != nil {
			return err
		}
		l.Color = color
		return nil
	})
}

func validateColor(color string) error {
	if color != "" && !hexColorPattern.MatchString(color) {
		return apierrors.NewValidationError(EntityLabel, "color", "must be a #rrggbb hex color")
	}
	return nil
}

type LabelCategory struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (c *LabelCategory) EntityName() string { return EntityLabelCategory }

func (c *LabelCategory) Validate() error {
	if err := c.validateBase(EntityLabelCategory); err != nil {
		return err
	}
	return requireText(EntityLabelCategory, "title", c.Title)
}

type LabelLabelCategoryMapping struct {
	Base
	LabelID         string `gorm:"type:varchar(64);not null;index" json:"label_id"`
	LabelCategoryID string `gorm:"type:varchar(64);not null;index" json:"label_category_id"`
}

func (m *LabelLabelCategoryMapping) EntityName() string { return "label_label_category_mapping" }

func (m *LabelLabelCategoryMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "label_id", m.LabelID, "label_category_id", m.LabelCategoryID)
}

type LabelTicketMapping struct {
	Base
	LabelID  string `gorm:"type:varchar(64);not null;index" json:"label_id"`
	TicketID string `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
}

func (m *LabelTicketMapping) EntityName() string { return "label_ticket_mapping" }

func (m *LabelTicketMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "label_id", m.LabelID, "ticket_id", m.TicketID)
}

type LabelProjectMapping struct {
	Base
	LabelID   string `gorm:"type:varchar(64);not null;index" json:"label_id"`
	ProjectID string `gorm:"type:varchar(64);not null;index" json:"project_id"`
}

func (m *LabelProjectMapping) EntityName() string { return "label_project_mapping" }

func (m *LabelProjectMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "label_id", m.LabelID, "project_id", m.ProjectID)
}

type LabelTeamMapping struct {
	Base
	LabelID string `gorm:"type:varchar(64);not null;index" json:"label_id"`
	TeamID  string `gorm:"type:varchar(64);not null;index" json:"team_id"`
}

func (m *LabelTeamMapping) EntityName() string { return "label_team_mapping" }

func (m *LabelTeamMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "label_id", m.LabelID, "team_id", m.TeamID)
}

type LabelAssetMapping struct {
	Base
	LabelID string `gorm:"type:varchar(64);not null;index" json:"label_id"`
	AssetID string `gorm:"type:varchar(64);not null;index" json:"asset_id"`
}

func (m *LabelAssetMapping) EntityName() string { return "label_asset_mapping" }

func (m *LabelAssetMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "label_id", m.LabelID, "asset_id", m.AssetID)
}

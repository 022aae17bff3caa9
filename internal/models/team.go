package models

type Team struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (t *Team) EntityName() string { return EntityTeam }

func (t *Team) Validate() error {
	if err := t.validateBase(EntityTeam); err != nil {
		return err
	}
	return requireText(EntityTeam, "title", t.Title)
}

// SetTitle renames the team
func (t *Team) SetTitle(title string) error {
	return t.mutate(EntityTeam, func() error {
		if err := requireText(EntityTeam, "title", title); err != nil {
			return err
		}
		t.Title = title
		return nil
	})
}

type TeamOrganizationMapping struct {
	Base
	TeamID         string `gorm:"type:varchar(64);not null;index" json:"team_id"`
	OrganizationID string `gorm:"type:varchar(64);not null;index" json:"organization_id"`
}

func (m *TeamOrganizationMapping) EntityName() string { return "team_organization_mapping" }

func (m *TeamOrganizationMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "team_id", m.TeamID, "organization_id", m.OrganizationID)
}

type TeamProjectMapping struct {
	Base
	TeamID    string `gorm:"type:varchar(64);not null;index" json:"team_id"`
	ProjectID string `gorm:"type:varchar(64);not null;index" json:"project_id"`
}

func (m *TeamProjectMapping) EntityName() string { return "team_project_mapping" }

func (m *TeamProjectMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "team_id", m.TeamID, "project_id", m.ProjectID)
}

// UserTeamMapping records team membership. Team permissions flow to users through it.
type UserTeamMapping struct {
	Base
	UserID string `gorm:"type:varchar(64);not null;index" json:"user_id"`
	TeamID string `gorm:"type:varchar(64);not null;index" json:"team_id"`
}

func (m *UserTeamMapping) EntityName() string { return "user_team_mapping" }

func (m *UserTeamMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "user_id", m.UserID, "team_id", m.TeamID)
}

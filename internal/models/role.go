package models

// ProjectRole is a named bundle of access, e.g. "Developer". A role with an
// empty ProjectID can be assigned in any project.
type ProjectRole struct {
	Base
	Title        string `gorm:"type:varchar(255);not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	ProjectID    string `gorm:"type:varchar(64);index" json:"project_id"`
	PermissionID string `gorm:"type:varchar(64);not null" json:"permission_id"`
}

func (r *ProjectRole) EntityName() string { return EntityProjectRole }

func (r *ProjectRole) Validate() error {
	if err := r.validateBase(EntityProjectRole); err != nil {
		return err
	}
	if err := requireText(EntityProjectRole, "title", r.Title); err != nil {
		return err
	}
	if err := optionalID(EntityProjectRole, "project_id", r.ProjectID); err != nil {
		return err
	}
	return requireID(EntityProjectRole, "permission_id", r.PermissionID)
}

// IsGlobal reports whether the role is usable in every project
func (r *ProjectRole) IsGlobal() bool {
	return r.ProjectID == ""
}

// AppliesTo reports whether the role may be held in projectID
func (r *ProjectRole) AppliesTo(projectID string) bool {
	return r.IsGlobal() || r.ProjectID == projectID
}

// ProjectRoleUserMapping assigns a role to a user inside one project
type ProjectRoleUserMapping struct {
	Base
	ProjectRoleID string `gorm:"type:varchar(64);not null;index" json:"project_role_id"`
	ProjectID     string `gorm:"type:varchar(64);not null;index" json:"project_id"`
	UserID        string `gorm:"type:varchar(64);not null;index" json:"user_id"`
}

func (m *ProjectRoleUserMapping) EntityName() string { return EntityProjectRoleUserMapping }

func (m *ProjectRoleUserMapping) Validate() error {
	return validateRefs(&m.Base, EntityProjectRoleUserMapping,
		"project_role_id", m.ProjectRoleID,
		"project_id", m.ProjectID,
		"user_id", m.UserID,
	)
}

package models

import (
	"regexp"

	apierrors "github.com/helixtrack/core/internal/errors"
)

var commitHashPattern = regexp.MustCompile(`^[0-9a-f]{7,64}$`)

// Default repository type IDs
const (
	RepositoryTypeGit       = "repo-type-git"
	RepositoryTypeSVN       = "repo-type-svn"
	RepositoryTypeMercurial = "repo-type-mercurial"
)

// Repository is a source code repository linked to projects and commits
type Repository struct {
	Base
	Repository       string `gorm:"type:varchar(2048);not null" json:"repository"`
	Description      string `gorm:"type:text" json:"description"`
	RepositoryTypeID string `gorm:"type:varchar(64);not null;index" json:"repository_type_id"`
}

func (r *Repository) EntityName() string { return EntityRepository }

func (r *Repository) Validate() error {
	if err := r.validateBase(EntityRepository); err != nil {
		return err
	}
	if err := validateURL(EntityRepository, "repository", r.Repository); err != nil {
		return err
	}
	return requireID(EntityRepository, "repository_type_id", r.RepositoryTypeID)
}

type RepositoryType struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (t *RepositoryType) EntityName() string { return EntityRepositoryType }

func (t *RepositoryType) Validate() error {
	if err := t.validateBase(EntityRepositoryType); err != nil {
		return err
	}
	return requireText(EntityRepositoryType, "title", t.Title)
}

type RepositoryProjectMapping struct {
	Base
	RepositoryID string `gorm:"type:varchar(64);not null;index" json:"repository_id"`
	ProjectID    string `gorm:"type:varchar(64);not null;index" json:"project_id"`
}

func (m *RepositoryProjectMapping) EntityName() string { return "repository_project_mapping" }

func (m *RepositoryProjectMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "repository_id", m.RepositoryID, "project_id", m.ProjectID)
}

// RepositoryCommitTicketMapping ties a commit in a repository to a ticket
type RepositoryCommitTicketMapping struct {
	Base
	RepositoryID string `gorm:"type:varchar(64);not null;index" json:"repository_id"`
	TicketID     string `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
	CommitHash   string `gorm:"type:varchar(64);not null" json:"commit_hash"`
}

func (m *RepositoryCommitTicketMapping) EntityName() string { return "repository_commit_ticket_mapping" }

func (m *RepositoryCommitTicketMapping) Validate() error {
	if err := validatePair(&m.Base, m.EntityName(), "repository_id", m.RepositoryID, "ticket_id", m.TicketID); err != nil {
		return err
	}
	if !commitHashPattern.MatchString(m.CommitHash) {
		return apierrors.NewValidationError(m.EntityName(), "commit_hash", "must be a lowercase hex digest")
	}
	return nil
}

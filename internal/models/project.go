package models

import (
	"regexp"

	apierrors "github.com/helixtrack/core/internal/errors"
)

var projectIdentifierPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// Project owns tickets and is bound to exactly one workflow.
type Project struct {
	Base
	Identifier  string `gorm:"type:varchar(10);uniqueIndex;not null" json:"identifier"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	WorkflowID  string `gorm:"type:varchar(64);index" json:"workflow_id"`
}

func (p *Project) EntityName() string { return EntityProject }

func (p *Project) Validate() error {
	if err := p.validateBase(EntityProject); err != nil {
		return err
	}
	if err := validateIdentifier(p.Identifier); err != nil {
		return err
	}
	if err := requireText(EntityProject, "title", p.Title); err != nil {
		return err
	}
	return optionalID(EntityProject, "workflow_id", p.WorkflowID)
}

// SetTitle renames the project
func (p *Project) SetTitle(title string) error {
	return p.mutate(EntityProject, func() error {
		if err := requireText(EntityProject, "title", title); err != nil {
			return err
		}
		p.Title = title
		return nil
	})
}

// SetIdentifier changes the short ticket key prefix, e.g. "HT"
func (p *Project) SetIdentifier(identifier string) error {
	return p.mutate(EntityProject, func() error {
		if err := validateIdentifier(identifier); err != nil {
			return err
		}
		p.Identifier = identifier
		return nil
	})
}

// SetDescription replaces the description
func (p *Project) SetDescription(description string) error {
	return p.mutate(EntityProject, func() error {
		p.Description = description
		return nil
	})
}

// SetWorkflowID binds the project to a workflow
func (p *Project) SetWorkflowID(workflowID string) error {
	return p.mutate(EntityProject, func() error {
		if err := requireID(EntityProject, "workflow_id", workflowID); err != nil {
			return err
		}
		p.WorkflowID = workflowID
		return nil
	})
}

func validateIdentifier(identifier string) error {
	if !projectIdentifierPattern.MatchString(identifier) {
		return apierrors.NewValidationError(EntityProject, "identifier", "must be 2-10 uppercase letters or digits, starting with a letter")
	}
	return nil
}

type ProjectCategory struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (c *ProjectCategory) EntityName() string { return EntityProjectCategory }

func (c *ProjectCategory) Validate() error {
	if err := c.validateBase(EntityProjectCategory); err != nil {
		return err
	}
	return requireText(EntityProjectCategory, "title", c.Title)
}

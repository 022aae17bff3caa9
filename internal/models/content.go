package models

import (
	"net/url"

	apierrors "github.com/helixtrack/core/internal/errors"
)

// Comment is authored by UserID and attached to tickets through CommentTicketMapping.
type Comment struct {
	Base
	Comment string `gorm:"type:text;not null" json:"comment"`
	UserID  string `gorm:"type:varchar(64);not null;index" json:"user_id"`
}

func (c *Comment) EntityName() string { return EntityComment }

func (c *Comment) Validate() error {
	if err := c.validateBase(EntityComment); err != nil {
		return err
	}
	if c.Comment == "" {
		return apierrors.NewValidationError(EntityComment, "comment", "must not be empty")
	}
	return requireID(EntityComment, "user_id", c.UserID)
}

// SetComment edits the text
func (c *Comment) SetComment(text string) error {
	return c.mutate(EntityComment, func() error {
		if text == "" {
			return apierrors.NewValidationError(EntityComment, "comment", "must not be empty")
		}
		c.Comment = text
		return nil
	})
}

type CommentTicketMapping struct {
	Base
	CommentID string `gorm:"type:varchar(64);not null;index" json:"comment_id"`
	TicketID  string `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
}

func (m *CommentTicketMapping) EntityName() string { return "comment_ticket_mapping" }

func (m *CommentTicketMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "comment_id", m.CommentID, "ticket_id", m.TicketID)
}

// Asset is a stored file referenced by URL
type Asset struct {
	Base
	URL         string `gorm:"type:varchar(2048);not null" json:"url"`
	Description string `gorm:"type:text" json:"description"`
}

func (a *Asset) EntityName() string { return EntityAsset }

func (a *Asset) Validate() error {
	if err := a.validateBase(EntityAsset); err != nil {
		return err
	}
	return validateURL(EntityAsset, "url", a.URL)
}

func validateURL(entity, field, raw string) error {
	if raw == "" {
		return apierrors.NewValidationError(entity, field, "must not be empty")
	}
	if _, err := url.Parse(raw); err != nil {
		return apierrors.NewValidationError(entity, field, "not a valid URL")
	}
	return nil
}

type AssetTicketMapping struct {
	Base
	AssetID  string `gorm:"type:varchar(64);not null;index" json:"asset_id"`
	TicketID string `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
}

func (m *AssetTicketMapping) EntityName() string { return "asset_ticket_mapping" }

func (m *AssetTicketMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "asset_id", m.AssetID, "ticket_id", m.TicketID)
}

type AssetProjectMapping struct {
	Base
	AssetID   string `gorm:"type:varchar(64);not null;index" json:"asset_id"`
	ProjectID string `gorm:"type:varchar(64);not null;index" json:"project_id"`
}

func (m *AssetProjectMapping) EntityName() string { return "asset_project_mapping" }

func (m *AssetProjectMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "asset_id", m.AssetID, "project_id", m.ProjectID)
}

type AssetTeamMapping struct {
	Base
	AssetID string `gorm:"type:varchar(64);not null;index" json:"asset_id"`
	TeamID  string `gorm:"type:varchar(64);not null;index" json:"team_id"`
}

func (m *AssetTeamMapping) EntityName() string { return "asset_team_mapping" }

func (m *AssetTeamMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "asset_id", m.AssetID, "team_id", m.TeamID)
}

type AssetCommentMapping struct {
	Base
	AssetID   string `gorm:"type:varchar(64);not null;index" json:"asset_id"`
	CommentID string `gorm:"type:varchar(64);not null;index" json:"comment_id"`
}

func (m *AssetCommentMapping) EntityName() string { return "asset_comment_mapping" }

func (m *AssetCommentMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "asset_id", m.AssetID, "comment_id", m.CommentID)
}

// Document is a page of project documentation. DocumentID references the parent page.
type Document struct {
	Base
	Title      string `gorm:"type:varchar(255);not null" json:"title"`
	Content    string `gorm:"type:text" json:"content"`
	ProjectID  string `gorm:"type:varchar(64);index" json:"project_id"`
	DocumentID string `gorm:"type:varchar(64);index" json:"document_id"`
}

func (d *Document) EntityName() string { return EntityDocument }

func (d *Document) Validate() error {
	if err := d.validateBase(EntityDocument); err != nil {
		return err
	}
	if err := requireText(EntityDocument, "title", d.Title); err != nil {
		return err
	}
	if d.DocumentID != "" && d.DocumentID == d.ID {
		return apierrors.NewValidationError(EntityDocument, "document_id", "a document cannot be its own parent")
	}
	if err := optionalID(EntityDocument, "project_id", d.ProjectID); err != nil {
		return err
	}
	return optionalID(EntityDocument, "document_id", d.DocumentID)
}

// SetContent replaces the document body
func (d *Document) SetContent(content string) error {
	return d.mutate(EntityDocument, func() error {
		d.Content = content
		return nil
	})
}

type DocumentTicketMapping struct {
	Base
	DocumentID string `gorm:"type:varchar(64);not null;index" json:"document_id"`
	TicketID   string `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
}

func (m *DocumentTicketMapping) EntityName() string { return "document_ticket_mapping" }

func (m *DocumentTicketMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "document_id", m.DocumentID, "ticket_id", m.TicketID)
}

type DocumentProjectMapping struct {
	Base
	DocumentID string `gorm:"type:varchar(64);not null;index" json:"document_id"`
	ProjectID  string `gorm:"type:varchar(64);not null;index" json:"project_id"`
}

func (m *DocumentProjectMapping) EntityName() string { return "document_project_mapping" }

func (m *DocumentProjectMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "document_id", m.DocumentID, "project_id", m.ProjectID)
}

// Chat is a conversation scoped to at most one of organization, team, project or ticket.
type Chat struct {
	Base
	Title          string `gorm:"type:varchar(255);not null" json:"title"`
	OrganizationID string `gorm:"type:varchar(64);index" json:"organization_id"`
	TeamID         string `gorm:"type:varchar(64);index" json:"team_id"`
	ProjectID      string `gorm:"type:varchar(64);index" json:"project_id"`
	TicketID       string `gorm:"type:varchar(64);index" json:"ticket_id"`
}

func (c *Chat) EntityName() string { return EntityChat }

func (c *Chat) Validate() error {
	if err := c.validateBase(EntityChat); err != nil {
		return err
	}
	if err := requireText(EntityChat, "title", c.Title); err != nil {
		return err
	}
	scopes := 0
	for _, id := range []string{c.OrganizationID, c.TeamID, c.ProjectID, c.TicketID} {
		if id != "" {
			scopes++
		}
	}
	if scopes > 1 {
		return apierrors.NewValidationError(EntityChat, "scope", "a chat belongs to at most one of organization, team, project or ticket")
	}
	return nil
}

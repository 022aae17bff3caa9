package models

import (
	"fmt"

	apierrors "github.com/helixtrack/core/internal/errors"
)

// Ticket belongs to exactly one project. Its TicketStatusID is owned by the workflow
// engine and has no plain setter.
type Ticket struct {
	Base
	TicketNumber   int     `gorm:"not null;index" json:"ticket_number"`
	Position       int     `gorm:"not null;default:0" json:"position"`
	Title          string  `gorm:"type:varchar(255);not null" json:"title"`
	Description    string  `gorm:"type:text" json:"description"`
	TicketTypeID   string  `gorm:"type:varchar(64);not null;index" json:"ticket_type_id"`
	TicketStatusID string  `gorm:"type:varchar(64);not null;index" json:"ticket_status_id"`
	ProjectID      string  `gorm:"type:varchar(64);not null;index" json:"project_id"`
	UserID         string  `gorm:"type:varchar(64);index" json:"user_id"`
	PriorityID     string  `gorm:"type:varchar(64);index" json:"priority_id"`
	ResolutionID   string  `gorm:"type:varchar(64)" json:"resolution_id"`
	Creator        string  `gorm:"type:varchar(64);not null" json:"creator"`
	Estimation     float64 `gorm:"not null;default:0" json:"estimation"`
	StoryPoints    int     `gorm:"not null;default:0" json:"story_points"`
}

func (t *Ticket) EntityName() string { return EntityTicket }

func (t *Ticket) Validate() error {
	if err := t.validateBase(EntityTicket); err != nil {
		return err
	}
	if t.TicketNumber < 0 {
		return apierrors.NewValidationError(EntityTicket, "ticket_number", "must not be negative")
	}
	if err := requireText(EntityTicket, "title", t.Title); err != nil {
		return err
	}
	refs := [][2]string{
		{"ticket_type_id", t.TicketTypeID},
		{"ticket_status_id", t.TicketStatusID},
		{"project_id", t.ProjectID},
		{"creator", t.Creator},
	}
	for _, ref := range refs {
		if err := requireID(EntityTicket, ref[0], ref[1]); err != nil {
			return err
		}
	}
	if err := optionalID(EntityTicket, "user_id", t.UserID); err != nil {
		return err
	}
	if err := optionalID(EntityTicket, "priority_id", t.PriorityID); err != nil {
		return err
	}
	if err := optionalID(EntityTicket, "resolution_id", t.ResolutionID); err != nil {
		return err
	}
	if err := nonNegative(EntityTicket, "estimation", t.Estimation); err != nil {
		return err
	}
	return nonNegative(EntityTicket, "story_points", float64(t.StoryPoints))
}

// Key renders the human readable ticket key, e.g. "HT-42"
func (t *Ticket) Key(projectIdentifier string) string {
	return fmt.Sprintf("%s-%d", projectIdentifier, t.TicketNumber)
}

// SetTitle changes the summary line
func (t *Ticket) SetTitle(title string) error {
	return t.mutate(EntityTicket, func() error {
		if err := requireText(EntityTicket, "title", title); err != nil {
			return err
		}
		t.Title = title
		return nil
	})
}

// SetDescription replaces the body text
func (t *Ticket) SetDescription(description string) error {
	return t.mutate(EntityTicket, func() error {
		t.Description = description
		return nil
	})
}

// SetTicketTypeID changes the ticket type
func (t *Ticket) SetTicketTypeID(typeID string) error {
	return t.mutate(EntityTicket, func() error {
		if err := requireID(EntityTicket, "ticket_type_id", typeID); err != nil {
			return err
		}
		t.TicketTypeID = typeID
		return nil
	})
}

// SetAssignee assigns the ticket; empty unassigns it
func (t *Ticket) SetAssignee(userID string) error {
	return t.mutate(EntityTicket, func() error {
		if err := optionalID(EntityTicket, "user_id", userID); err != nil {
			return err
		}
		t.UserID = userID
		return nil
	})
}

// SetPriority ranks the ticket; empty clears it
func (t *Ticket) SetPriority(priorityID string) error {
	return t.mutate(EntityTicket, func() error {
		if err := optionalID(EntityTicket, "priority_id", priorityID); err != nil {
			return err
		}
		t.PriorityID = priorityID
		return nil
	})
}

// SetResolution records how the ticket ended; empty reopens the question
func (t *Ticket) SetResolution(resolutionID string) error {
	return t.mutate(EntityTicket, func() error {
		if err := optionalID(EntityTicket, "resolution_id", resolutionID); err != nil {
			return err
		}
		t.ResolutionID = resolutionID
		return nil
	})
}

// SetPosition changes the board ordering
func (t *Ticket) SetPosition(position int) error {
	return t.mutate(EntityTicket, func() error {
		if err := nonNegative(EntityTicket, "position", float64(position)); err != nil {
			return err
		}
		t.Position = position
		return nil
	})
}

// SetEstimation records the estimate in hours
func (t *Ticket) SetEstimation(hours float64) error {
	return t.mutate(EntityTicket, func() error {
		if err := nonNegative(EntityTicket, "estimation", hours); err != nil {
			return err
		}
		t.Estimation = hours
		return nil
	})
}

// SetStoryPoints records the agile size
func (t *Ticket) SetStoryPoints(points int) error {
	return t.mutate(EntityTicket, func() error {
		if err := nonNegative(EntityTicket, "story_points", float64(points)); err != nil {
			return err
		}
		t.StoryPoints = points
		return nil
	})
}

// TicketRelationshipType names an edge kind between tickets.
// Hierarchical types (parent/child) must stay acyclic.
type TicketRelationshipType struct {
	Base
	Title        string `gorm:"type:varchar(255);not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Hierarchical bool   `gorm:"not null;default:false" json:"hierarchical"`
}

// Default relationship type IDs
const (
	RelationshipTypeParentChild = "rel-parent-child"
	RelationshipTypeBlocks      = "rel-blocks"
	RelationshipTypeRelatesTo   = "rel-relates-to"
	RelationshipTypeDuplicates  = "rel-duplicates"
)

func (t *TicketRelationshipType) EntityName() string { return EntityTicketRelationshipType }

func (t *TicketRelationshipType) Validate() error {
	if err := t.validateBase(EntityTicketRelationshipType); err != nil {
		return err
	}
	return requireText(EntityTicketRelationshipType, "title", t.Title)
}

// TicketRelationship is a typed directed edge from TicketID to ChildTicketID
type TicketRelationship struct {
	Base
	TicketID                 string `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
	ChildTicketID            string `gorm:"type:varchar(64);not null;index" json:"child_ticket_id"`
	TicketRelationshipTypeID string `gorm:"type:varchar(64);not null;index" json:"ticket_relationship_type_id"`
}

func (r *TicketRelationship) EntityName() string { return EntityTicketRelationship }

func (r *TicketRelationship) Validate() error {
	if err := validateRefs(&r.Base, EntityTicketRelationship,
		"ticket_id", r.TicketID,
		"child_ticket_id", r.ChildTicketID,
		"ticket_relationship_type_id", r.TicketRelationshipTypeID,
	); err != nil {
		return err
	}
	if r.TicketID == r.ChildTicketID {
		return apierrors.NewValidationError(EntityTicketRelationship, "child_ticket_id", "a ticket cannot relate to itself")
	}
	return nil
}

package dto

import (
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/services"
	"github.com/helixtrack/core/internal/utils"
)

// TicketDTO represents a ticket in API responses
type TicketDTO struct {
	ID             string  `json:"id"`
	TicketNumber   int     `json:"ticket_number"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	TicketTypeID   string  `json:"ticket_type_id"`
	TicketStatusID string  `json:"ticket_status_id"`
	ProjectID      string  `json:"project_id"`
	AssigneeID     string  `json:"assignee_id,omitempty"`
	PriorityID     string  `json:"priority_id,omitempty"`
	ResolutionID   string  `json:"resolution_id,omitempty"`
	Creator        string  `json:"creator"`
	Position       int     `json:"position"`
	Estimation     float64 `json:"estimation"`
	StoryPoints    int     `json:"story_points"`
	Created        int64   `json:"created"`
	Modified       int64   `json:"modified"`
	Deleted        bool    `json:"deleted"`
}

// TicketListResponse represents a paginated list of tickets
type TicketListResponse struct {
	Tickets    []TicketDTO `json:"tickets"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
	TotalPages int         `json:"total_pages"`
}

// TransitionsResponse lists where a ticket may move next
type TransitionsResponse struct {
	TicketID string   `json:"ticket_id"`
	Current  string   `json:"current"`
	Next     []string `json:"next"`
}

// RelationshipDTO represents one typed edge between tickets
type RelationshipDTO struct {
	ID            string `json:"id"`
	TicketID      string `json:"ticket_id"`
	ChildTicketID string `json:"child_ticket_id"`
	TypeID        string `json:"type_id"`
	Created       int64  `json:"created"`
}

// GeneratedTicketsResponse wraps AI drafts
type GeneratedTicketsResponse struct {
	Drafts []services.TicketDraft `json:"drafts"`
}

// ToTicketDTO converts a Ticket model to TicketDTO
func ToTicketDTO(ticket models.Ticket) TicketDTO {
	return TicketDTO{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		Title:          ticket.Title,
		Description:    ticket.Description,
		TicketTypeID:   ticket.TicketTypeID,
		TicketStatusID: ticket.TicketStatusID,
		ProjectID:      ticket.ProjectID,
		AssigneeID:     ticket.UserID,
		PriorityID:     ticket.PriorityID,
		ResolutionID:   ticket.ResolutionID,
		Creator:        ticket.Creator,
		Position:       ticket.Position,
		Estimation:     ticket.Estimation,
		StoryPoints:    ticket.StoryPoints,
		Created:        ticket.Created,
		Modified:       ticket.Modified,
		Deleted:        ticket.Deleted,
	}
}

// ToTicketListResponse converts one page of tickets to TicketListResponse
func ToTicketListResponse(tickets []models.Ticket, params utils.PaginationParams, totalCount int64) TicketListResponse {
	items := make([]TicketDTO, len(tickets))
	for i, ticket := range tickets {
		items[i] = ToTicketDTO(ticket)
	}

	return TicketListResponse{
		Tickets:    items,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: totalCount,
		TotalPages: params.TotalPages(totalCount),
	}
}

// ToRelationshipDTO converts a TicketRelationship model to RelationshipDTO
func ToRelationshipDTO(rel models.TicketRelationship) RelationshipDTO {
	return RelationshipDTO{
		ID:            rel.ID,
		TicketID:      rel.TicketID,
		ChildTicketID: rel.ChildTicketID,
		TypeID:        rel.TicketRelationshipTypeID,
		Created:       rel.Created,
	}
}

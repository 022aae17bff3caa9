package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/dto"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/services"
	"github.com/helixtrack/core/internal/utils"
)

const generateTimeout = 30 * time.Second

type TicketHandler struct {
	ticketService   *services.TicketService
	workflowService *services.WorkflowService
}

func NewTicketHandler(ticketService *services.TicketService, workflowService *services.WorkflowService) *TicketHandler {
	return &TicketHandler{
		ticketService:   ticketService,
		workflowService: workflowService,
	}
}

// ListTickets returns live tickets, optionally filtered by project, status or assignee
func (h *TicketHandler) ListTickets(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	tickets, total, err := h.ticketService.ListTickets(services.ListTicketsInput{
		ProjectID:  c.Query("project_id"),
		StatusID:   c.Query("status_id"),
		AssigneeID: c.Query("assignee_id"),
		Page:       params.Page,
		PageSize:   params.Limit,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketListResponse(tickets, params, total))
}

// CreateTicket creates a ticket in its project's entry status
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTicketRequest struct {
		ProjectID      string  `json:"project_id" binding:"required"`
		Title          string  `json:"title" binding:"required"`
		Description    string  `json:"description"`
		TicketTypeID   string  `json:"ticket_type_id" binding:"required"`
		TicketStatusID string  `json:"ticket_status_id"`
		AssigneeID     string  `json:"assignee_id"`
		PriorityID     string  `json:"priority_id"`
		ResolutionID   string  `json:"resolution_id"`
		Position       int     `json:"position"`
		Estimation     float64 `json:"estimation"`
		StoryPoints    int     `json:"story_points"`
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ticket, err := h.ticketService.CreateTicket(services.CreateTicketInput{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		TicketTypeID:   req.TicketTypeID,
		TicketStatusID: req.TicketStatusID,
		AssigneeID:     req.AssigneeID,
		PriorityID:     req.PriorityID,
		ResolutionID:   req.ResolutionID,
		CreatorID:      userID,
		Position:       req.Position,
		Estimation:     req.Estimation,
		StoryPoints:    req.StoryPoints,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTicketDTO(*ticket))
}

// GetTicket returns the ticket loaded by RequireTicket, tombstones included
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, ok := middleware.GetTicket(c)
	if !ok {
		apierrors.InternalError(c, "Ticket not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketDTO(*ticket))
}

// UpdateTicket edits ticket fields. Status changes go through TransitionTicket.
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type UpdateTicketRequest struct {
		Title          *string  `json:"title"`
		Description    *string  `json:"description"`
		TicketTypeID   *string  `json:"ticket_type_id"`
		TicketStatusID *string  `json:"ticket_status_id"`
		AssigneeID     *string  `json:"assignee_id"`
		PriorityID     *string  `json:"priority_id"`
		ResolutionID   *string  `json:"resolution_id"`
		Position       *int     `json:"position"`
		Estimation     *float64 `json:"estimation"`
		StoryPoints    *int     `json:"story_points"`
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.TicketStatusID != nil {
		apierrors.BadRequest(c, "Status changes must use the transition endpoint")
		return
	}

	ticket, err := h.ticketService.UpdateTicket(c.Param("id"), services.UpdateTicketInput{
		Title:        req.Title,
		Description:  req.Description,
		TicketTypeID: req.TicketTypeID,
		AssigneeID:   req.AssigneeID,
		PriorityID:   req.PriorityID,
		ResolutionID: req.ResolutionID,
		Position:     req.Position,
		Estimation:   req.Estimation,
		StoryPoints:  req.StoryPoints,
	}, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketDTO(*ticket))
}

// DeleteTicket tombstones a ticket
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.ticketService.DeleteTicket(c.Param("id"), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
}

// TransitionTicket moves the ticket one step along its workflow.
// expected_status_id lets clients pin the status they last saw.
func (h *TicketHandler) TransitionTicket(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ticket, ok := middleware.GetTicket(c)
	if !ok {
		apierrors.InternalError(c, "Ticket not found in context")
		return
	}

	type TransitionRequest struct {
		StatusID         string `json:"status_id" binding:"required"`
		ExpectedStatusID string `json:"expected_status_id"`
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	snapshot := *ticket
	if req.ExpectedStatusID != "" {
		snapshot.TicketStatusID = req.ExpectedStatusID
	}

	updated, err := h.workflowService.Transition(&snapshot, req.StatusID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketDTO(*updated))
}

// ListTransitions returns the statuses the ticket may move to next
func (h *TicketHandler) ListTransitions(c *gin.Context) {
	ticket, ok := middleware.GetTicket(c)
	if !ok {
		apierrors.InternalError(c, "Ticket not found in context")
		return
	}

	next, err := h.workflowService.Successors(ticket)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransitionsResponse{
		TicketID: ticket.ID,
		Current:  ticket.TicketStatusID,
		Next:     next,
	})
}

// ListRelationships returns the live edges touching the ticket
func (h *TicketHandler) ListRelationships(c *gin.Context) {
	rels, err := h.ticketService.ListRelationships(c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	items := make([]dto.RelationshipDTO, len(rels))
	for i, rel := range rels {
		items[i] = dto.ToRelationshipDTO(rel)
	}
	c.JSON(http.StatusOK, gin.H{"relationships": items})
}

// AddRelationship links the ticket to a child ticket
func (h *TicketHandler) AddRelationship(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type RelationshipRequest struct {
		ChildTicketID string `json:"child_ticket_id" binding:"required"`
		TypeID        string `json:"type_id" binding:"required"`
	}

	var req RelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	rel, err := h.ticketService.AddRelationship(services.RelationshipInput{
		TicketID:      c.Param("id"),
		ChildTicketID: req.ChildTicketID,
		TypeID:        req.TypeID,
		ActorID:       userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRelationshipDTO(*rel))
}

// RemoveRelationship unlinks the ticket from a child ticket
func (h *TicketHandler) RemoveRelationship(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	err := h.ticketService.RemoveRelationship(services.RelationshipInput{
		TicketID:      c.Param("id"),
		ChildTicketID: c.Query("child_ticket_id"),
		TypeID:        c.Query("type_id"),
		ActorID:       userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Relationship removed successfully"})
}

// GenerateTickets drafts tickets from free text using AI. Drafts are not saved.
func (h *TicketHandler) GenerateTickets(c *gin.Context) {
	type GenerateRequest struct {
		ProjectID string `json:"project_id"`
		Text      string `json:"text" binding:"required"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	drafts, err := h.ticketService.GenerateTickets(ctx, services.GenerateTicketsInput{
		ProjectID: req.ProjectID,
		Text:      req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, "AI service is not configured")
		case errors.Is(err, services.ErrAINoTicketsGenerated),
			errors.Is(err, services.ErrAINoValidTickets):
			apierrors.BadRequest(c, err.Error())
		default:
			apierrors.Respond(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, dto.GeneratedTicketsResponse{Drafts: drafts})
}

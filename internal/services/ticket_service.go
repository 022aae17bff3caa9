package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/helixtrack/core/internal/constants"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTicketsGenerated   = errors.New("AI did not generate any tickets")
	ErrAINoValidTickets       = errors.New("no valid tickets could be drafted from AI output")
)

// TicketService handles the ticket lifecycle outside of status changes.
type TicketService struct {
	ticketRepo  repository.TicketRepository
	tickets     *repository.Store[models.Ticket, *models.Ticket]
	types       *repository.Store[models.TicketType, *models.TicketType]
	users       *repository.Store[models.User, *models.User]
	priorities  *repository.Store[models.Priority, *models.Priority]
	resolutions *repository.Store[models.Resolution, *models.Resolution]
	workflows   *WorkflowService
	relations   *RelationService
	audit       *AuditService
	aiService   *AIService
	locks       *keyedMutex
	log         zerolog.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(
	db *gorm.DB,
	ticketRepo repository.TicketRepository,
	workflows *WorkflowService,
	relations *RelationService,
	audit *AuditService,
	aiService *AIService,
	log zerolog.Logger,
) *TicketService {
	return &TicketService{
		ticketRepo:  ticketRepo,
		tickets:     repository.NewStore[models.Ticket](db),
		types:       repository.NewStore[models.TicketType](db),
		users:       repository.NewStore[models.User](db),
		priorities:  repository.NewStore[models.Priority](db),
		resolutions: repository.NewStore[models.Resolution](db),
		workflows:   workflows,
		relations:   relations,
		audit:       audit,
		aiService:   aiService,
		locks:       newKeyedMutex(),
		log:         log,
	}
}

// CreateTicketInput represents input for creating a ticket
type CreateTicketInput struct {
	ProjectID      string
	Title          string
	Description    string
	TicketTypeID   string
	TicketStatusID string
	AssigneeID     string
	PriorityID     string
	ResolutionID   string
	CreatorID      string
	Position       int
	Estimation     float64
	StoryPoints    int
}

// UpdateTicketInput represents input for updating a ticket. Status is not editable here.
type UpdateTicketInput struct {
	Title        *string
	Description  *string
	TicketTypeID *string
	AssigneeID   *string
	PriorityID   *string
	ResolutionID *string
	Position     *int
	Estimation   *float64
	StoryPoints  *int
}

// ListTicketsInput represents filters for listing tickets
type ListTicketsInput struct {
	ProjectID  string
	StatusID   string
	AssigneeID string
	Page       int
	PageSize   int
}

// RelationshipInput identifies one typed edge between two tickets
type RelationshipInput struct {
	TicketID      string
	ChildTicketID string
	TypeID        string
	ActorID       string
}

// CreateTicket creates a ticket in the entry status of its project's workflow,
// or in an explicitly requested status that belongs to that workflow.
func (s *TicketService) CreateTicket(input CreateTicketInput) (*models.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apierrors.NewValidationError(models.EntityTicket, "title", "must not be empty")
	}
	if input.CreatorID == "" {
		return nil, apierrors.NewValidationError(models.EntityTicket, "creator", "must not be empty")
	}

	graph, err := s.workflows.GraphForProject(input.ProjectID)
	if err != nil {
		return nil, err
	}
	status := input.TicketStatusID
	if status == "" {
		status = graph.InitialStatus()
	} else if !graph.Contains(status) {
		return nil, apierrors.NewValidationError(models.EntityTicket, "ticket_status_id", "status is not part of the project workflow")
	}

	if err := s.checkTicketType(input.ProjectID, input.TicketTypeID); err != nil {
		return nil, err
	}
	if input.AssigneeID != "" {
		if _, err := s.users.FindActive(input.AssigneeID); err != nil {
			return nil, err
		}
	}
	if err := s.checkRanking(input.PriorityID, input.ResolutionID); err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		TicketTypeID:   input.TicketTypeID,
		TicketStatusID: status,
		ProjectID:      input.ProjectID,
		UserID:         input.AssigneeID,
		PriorityID:     input.PriorityID,
		ResolutionID:   input.ResolutionID,
		Creator:        input.CreatorID,
		Position:       input.Position,
		Estimation:     input.Estimation,
		StoryPoints:    input.StoryPoints,
	}
	if err := s.ticketRepo.Create(ticket); err != nil {
		if apierrors.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.audit.Record(models.EntityTicket, ticket.ID, models.OperationCreate, input.CreatorID, map[string]interface{}{
		"project_id":    ticket.ProjectID,
		"ticket_number": ticket.TicketNumber,
		"status":        ticket.TicketStatusID,
	})
	s.log.Info().Str("ticket_id", ticket.ID).Str("project_id", ticket.ProjectID).Msg("ticket created")
	return ticket, nil
}

func (s *TicketService) checkTicketType(projectID, typeID string) error {
	if typeID == "" {
		return apierrors.NewValidationError(models.EntityTicket, "ticket_type_id", "must not be empty")
	}
	if _, err := s.types.FindActive(typeID); err != nil {
		return err
	}
	if s.relations == nil {
		return nil
	}
	// A project that enables specific ticket types only accepts those.
	allowed, err := s.relations.Linked(KindProjectTicketTypes, projectID)
	if err != nil {
		return err
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, id := range allowed {
		if id == typeID {
			return nil
		}
	}
	return apierrors.NewValidationError(models.EntityTicket, "ticket_type_id", "ticket type is not enabled for the project")
}

// GetTicket returns a ticket by id. Tombstones are returned too.
func (s *TicketService) GetTicket(id string) (*models.Ticket, error) {
	if id == "" {
		return nil, apierrors.NewValidationError(models.EntityTicket, "id", "must not be empty")
	}
	ticket, err := s.ticketRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewNotFoundError(models.EntityTicket, id)
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return ticket, nil
}

// ListTickets returns one page of live tickets
func (s *TicketService) ListTickets(input ListTicketsInput) ([]models.Ticket, int64, error) {
	tickets, total, err := s.ticketRepo.List(repository.TicketFilter{
		ProjectID:  input.ProjectID,
		StatusID:   input.StatusID,
		AssigneeID: input.AssigneeID,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, total, nil
}

// UpdateTicket applies the given field changes through the ticket setters
func (s *TicketService) UpdateTicket(id string, input UpdateTicketInput, actorID string) (*models.Ticket, error) {
	ticket, err := s.GetTicket(id)
	if err != nil {
		return nil, err
	}
	if ticket.Deleted {
		return nil, apierrors.NewNotFoundError(models.EntityTicket, id)
	}

	changed := map[string]interface{}{}
	if input.Title != nil {
		if err := ticket.SetTitle(strings.TrimSpace(*input.Title)); err != nil {
			return nil, err
		}
		changed["title"] = ticket.Title
	}
	if input.Description != nil {
		if err := ticket.SetDescription(*input.Description); err != nil {
			return nil, err
		}
		changed["description"] = true
	}
	if input.TicketTypeID != nil {
		if err := s.checkTicketType(ticket.ProjectID, *input.TicketTypeID); err != nil {
			return nil, err
		}
		if err := ticket.SetTicketTypeID(*input.TicketTypeID); err != nil {
			return nil, err
		}
		changed["ticket_type_id"] = ticket.TicketTypeID
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID != "" {
			if _, err := s.users.FindActive(*input.AssigneeID); err != nil {
				return nil, err
			}
		}
		if err := ticket.SetAssignee(*input.AssigneeID); err != nil {
			return nil, err
		}
		changed["user_id"] = ticket.UserID
	}
	if input.PriorityID != nil {
		if err := s.checkRanking(*input.PriorityID, ""); err != nil {
			return nil, err
		}
		if err := ticket.SetPriority(*input.PriorityID); err != nil {
			return nil, err
		}
		changed["priority_id"] = ticket.PriorityID
	}
	if input.ResolutionID != nil {
		if err := s.checkRanking("", *input.ResolutionID); err != nil {
			return nil, err
		}
		if err := ticket.SetResolution(*input.ResolutionID); err != nil {
			return nil, err
		}
		changed["resolution_id"] = ticket.ResolutionID
	}
	if input.Position != nil {
		if err := ticket.SetPosition(*input.Position); err != nil {
			return nil, err
		}
		changed["position"] = ticket.Position
	}
	if input.Estimation != nil {
		if err := ticket.SetEstimation(*input.Estimation); err != nil {
			return nil, err
		}
		changed["estimation"] = ticket.Estimation
	}
	if input.StoryPoints != nil {
		if err := ticket.SetStoryPoints(*input.StoryPoints); err != nil {
			return nil, err
		}
		changed["story_points"] = ticket.StoryPoints
	}
	if len(changed) == 0 {
		return ticket, nil
	}

	if err := s.ticketRepo.Update(ticket); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewNotFoundError(models.EntityTicket, id)
		}
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	s.audit.Record(models.EntityTicket, id, models.OperationUpdate, actorID, changed)

	// Status may have moved concurrently; return what is stored.
	return s.GetTicket(id)
}

// checkRanking requires non-empty priority and resolution ids to name live rows
func (s *TicketService) checkRanking(priorityID, resolutionID string) error {
	if priorityID != "" {
		if _, err := s.priorities.FindActive(priorityID); err != nil {
			return err
		}
	}
	if resolutionID != "" {
		if _, err := s.resolutions.FindActive(resolutionID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTicket tombstones a ticket
func (s *TicketService) DeleteTicket(id, actorID string) error {
	if id == "" {
		return apierrors.NewValidationError(models.EntityTicket, "id", "must not be empty")
	}
	if _, err := s.tickets.SoftDelete(id); err != nil {
		return err
	}
	s.audit.Record(models.EntityTicket, id, models.OperationDelete, actorID, nil)
	s.log.Info().Str("ticket_id", id).Msg("ticket deleted")
	return nil
}

// AddRelationship links two tickets. Linking an existing edge is a no-op.
func (s *TicketService) AddRelationship(input RelationshipInput) (*models.TicketRelationship, error) {
	if err := requireIDs(models.EntityTicketRelationship, input.TicketID, input.ChildTicketID, input.TypeID); err != nil {
		return nil, err
	}
	// One writer per relationship type keeps the cycle check and insert atomic
	unlock := s.locks.Lock(relationshipLockKey(input.TypeID))
	defer unlock()

	rel, err := s.ticketRepo.CreateRelationship(&models.TicketRelationship{
		TicketID:                 input.TicketID,
		ChildTicketID:            input.ChildTicketID,
		TicketRelationshipTypeID: input.TypeID,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(models.EntityTicketRelationship, rel.ID, models.OperationLink, input.ActorID, map[string]string{
		"ticket_id":       input.TicketID,
		"child_ticket_id": input.ChildTicketID,
		"type":            input.TypeID,
	})
	return rel, nil
}

// RemoveRelationship tombstones the live edge between two tickets
func (s *TicketService) RemoveRelationship(input RelationshipInput) error {
	if err := requireIDs(models.EntityTicketRelationship, input.TicketID, input.ChildTicketID, input.TypeID); err != nil {
		return err
	}
	unlock := s.locks.Lock(relationshipLockKey(input.TypeID))
	defer unlock()

	n, err := s.ticketRepo.DeleteRelationship(input.TicketID, input.ChildTicketID, input.TypeID)
	if err != nil {
		return fmt.Errorf("failed to remove relationship: %w", err)
	}
	if n == 0 {
		return apierrors.NewNotFoundError(models.EntityTicketRelationship, input.TicketID+"->"+input.ChildTicketID)
	}
	s.audit.Record(models.EntityTicketRelationship, input.TicketID, models.OperationUnlink, input.ActorID, map[string]string{
		"child_ticket_id": input.ChildTicketID,
		"type":            input.TypeID,
	})
	return nil
}

func relationshipLockKey(typeID string) string {
	return models.EntityTicketRelationship + "|" + typeID
}

// ListRelationships lists the live edges touching a ticket
func (s *TicketService) ListRelationships(ticketID string) ([]models.TicketRelationship, error) {
	if _, err := s.GetTicket(ticketID); err != nil {
		return nil, err
	}
	rels, err := s.ticketRepo.ListRelationships(ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}

// Children lists the direct hierarchical children of a ticket
func (s *TicketService) Children(ticketID string) ([]string, error) {
	if _, err := s.GetTicket(ticketID); err != nil {
		return nil, err
	}
	ids, err := s.ticketRepo.ChildIDs(ticketID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GenerateTicketsInput represents input for AI ticket drafting
type GenerateTicketsInput struct {
	ProjectID string
	Text      string
}

// GenerateTickets drafts tickets from free text. Drafts are not persisted.
func (s *TicketService) GenerateTickets(ctx context.Context, input GenerateTicketsInput) ([]TicketDraft, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, apierrors.NewValidationError(models.EntityTicket, "text", "must not be empty")
	}
	if input.ProjectID != "" {
		if _, err := s.workflows.GraphForProject(input.ProjectID); err != nil {
			return nil, err
		}
	}

	drafts, err := s.aiService.DraftTicketsFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tickets: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTicketsGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTickets {
		return nil, fmt.Errorf("AI generated too many tickets (max %d)", constants.MaxAIGeneratedTickets)
	}

	valid := make([]TicketDraft, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}
		if draft.StoryPoints < 0 {
			draft.StoryPoints = 0
		}
		if draft.Estimation < 0 {
			draft.Estimation = 0
		}
		valid = append(valid, draft)
	}
	if len(valid) == 0 {
		return nil, ErrAINoValidTickets
	}
	return valid, nil
}

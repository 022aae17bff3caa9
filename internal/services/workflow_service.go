package services

import (
	"errors"
	"fmt"
	"sync"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// WorkflowService validates workflows and moves tickets along them.
type WorkflowService struct {
	workflowRepo repository.WorkflowRepository
	ticketRepo   repository.TicketRepository
	audit        *AuditService
	log          zerolog.Logger

	mu     sync.RWMutex
	graphs map[string]*WorkflowGraph
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(workflowRepo repository.WorkflowRepository, ticketRepo repository.TicketRepository, audit *AuditService, log zerolog.Logger) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		ticketRepo:   ticketRepo,
		audit:        audit,
		log:          log,
		graphs:       make(map[string]*WorkflowGraph),
	}
}

// StepInput describes one step of a new workflow
type StepInput struct {
	ID             string
	Title          string
	Description    string
	TicketStatusID string
	NextStepID     string
}

// CreateWorkflowInput represents input for creating a workflow.
// With Linear set, steps are chained in the given order and NextStepID is ignored.
type CreateWorkflowInput struct {
	ID          string
	Title       string
	Description string
	Steps       []StepInput
	Linear      bool
	ActorID     string
}

// CreateWorkflow validates the step graph and persists the workflow with its steps
func (s *WorkflowService) CreateWorkflow(input CreateWorkflowInput) (*models.Workflow, []models.WorkflowStep, error) {
	workflow := &models.Workflow{
		Base:        models.Base{ID: input.ID},
		Title:       input.Title,
		Description: input.Description,
	}
	workflow.EnsureID()

	steps := make([]*models.WorkflowStep, len(input.Steps))
	for i, in := range input.Steps {
		steps[i] = &models.WorkflowStep{
			Base:           models.Base{ID: in.ID},
			WorkflowID:     workflow.ID,
			Title:          in.Title,
			Description:    in.Description,
			TicketStatusID: in.TicketStatusID,
			WorkflowStepID: in.NextStepID,
		}
		steps[i].EnsureID()
	}
	if input.Linear {
		for i := range steps {
			steps[i].WorkflowStepID = ""
			if i+1 < len(steps) {
				steps[i].WorkflowStepID = steps[i+1].ID
			}
		}
	}

	known, err := s.knownStatuses(statusIDsOf(steps))
	if err != nil {
		return nil, nil, err
	}

	var graph *WorkflowGraph
	err = s.workflowRepo.CreateWithSteps(workflow, steps, func(candidate []models.WorkflowStep) error {
		g, err := BuildWorkflowGraph(workflow.ID, candidate, known)
		graph = g
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.storeGraph(graph)
	s.audit.Record(models.EntityWorkflow, workflow.ID, models.OperationCreate, input.ActorID, map[string]interface{}{
		"statuses": graph.Statuses(),
	})
	s.log.Info().Str("workflow_id", workflow.ID).Int("steps", len(steps)).Msg("workflow created")

	out := make([]models.WorkflowStep, len(steps))
	for i, step := range steps {
		out[i] = *step
	}
	return workflow, out, nil
}

// AddStepInput represents input for adding a step to an existing workflow
type AddStepInput struct {
	WorkflowID     string
	Title          string
	Description    string
	TicketStatusID string
	NextStepID     string
	AfterStepID    string
	ActorID        string
}

// AddStep inserts a step. The resulting graph must still be valid.
func (s *WorkflowService) AddStep(input AddStepInput) (*models.WorkflowStep, error) {
	if input.WorkflowID == "" {
		return nil, apierrors.NewValidationError(models.EntityWorkflowStep, "workflow_id", "must not be empty")
	}
	step := &models.WorkflowStep{
		WorkflowID:     input.WorkflowID,
		Title:          input.Title,
		Description:    input.Description,
		TicketStatusID: input.TicketStatusID,
		WorkflowStepID: input.NextStepID,
	}

	existing, err := s.workflowRepo.ListSteps(input.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow steps: %w", err)
	}
	ids := []string{input.TicketStatusID}
	for _, st := range existing {
		ids = append(ids, st.TicketStatusID)
	}
	known, err := s.knownStatuses(ids)
	if err != nil {
		return nil, err
	}

	var graph *WorkflowGraph
	err = s.workflowRepo.AddStep(step, input.AfterStepID, func(candidate []models.WorkflowStep) error {
		g, err := BuildWorkflowGraph(input.WorkflowID, candidate, known)
		graph = g
		return err
	})
	if err != nil {
		return nil, err
	}

	s.storeGraph(graph)
	s.audit.Record(models.EntityWorkflowStep, step.ID, models.OperationCreate, input.ActorID, map[string]string{
		"workflow_id":      input.WorkflowID,
		"ticket_status_id": step.TicketStatusID,
	})
	return step, nil
}

// Graph returns the validated adjacency of a workflow, loading it on first use.
func (s *WorkflowService) Graph(workflowID string) (*WorkflowGraph, error) {
	if workflowID == "" {
		return nil, apierrors.NewValidationError(models.EntityWorkflow, "id", "must not be empty")
	}

	s.mu.RLock()
	graph, ok := s.graphs[workflowID]
	s.mu.RUnlock()
	if ok {
		return graph, nil
	}

	if _, err := s.workflowRepo.FindByID(workflowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewNotFoundError(models.EntityWorkflow, workflowID)
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}
	steps, err := s.workflowRepo.ListSteps(workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow steps: %w", err)
	}
	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = step.TicketStatusID
	}
	known, err := s.knownStatuses(ids)
	if err != nil {
		return nil, err
	}

	graph, err = BuildWorkflowGraph(workflowID, steps, known)
	if err != nil {
		s.log.Warn().Err(err).Str("workflow_id", workflowID).Msg("rejecting malformed workflow")
		return nil, err
	}
	s.storeGraph(graph)
	return graph, nil
}

// Invalidate drops the cached graph of one workflow
func (s *WorkflowService) Invalidate(workflowID string) {
	s.mu.Lock()
	delete(s.graphs, workflowID)
	s.mu.Unlock()
}

// InvalidateAll drops every cached graph, e.g. after a status was deleted
func (s *WorkflowService) InvalidateAll() {
	s.mu.Lock()
	s.graphs = make(map[string]*WorkflowGraph)
	s.mu.Unlock()
}

// BindProject attaches a valid workflow to a project. The workflow must have a
// step for the status of every live ticket already in the project.
func (s *WorkflowService) BindProject(projectID, workflowID, actorID string) error {
	if projectID == "" {
		return apierrors.NewValidationError(models.EntityProject, "id", "must not be empty")
	}
	graph, err := s.Graph(workflowID)
	if err != nil {
		return err
	}
	if err := s.workflowRepo.BindProject(projectID, workflowID, graph.Contains); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NewNotFoundError(models.EntityProject, projectID)
		}
		return err
	}
	s.audit.Record(models.EntityProject, projectID, models.OperationUpdate, actorID, map[string]string{
		"workflow_id": workflowID,
	})
	return nil
}

// GraphForProject returns the graph of the workflow bound to a live project
func (s *WorkflowService) GraphForProject(projectID string) (*WorkflowGraph, error) {
	if projectID == "" {
		return nil, apierrors.NewValidationError(models.EntityProject, "id", "must not be empty")
	}
	project, err := s.workflowRepo.FindProject(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewNotFoundError(models.EntityProject, projectID)
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.WorkflowID == "" {
		return nil, apierrors.NewValidationError(models.EntityProject, "workflow_id", "project has no workflow")
	}
	return s.Graph(project.WorkflowID)
}

// EntryStatus is the status new tickets of the project start in
func (s *WorkflowService) EntryStatus(projectID string) (string, error) {
	graph, err := s.GraphForProject(projectID)
	if err != nil {
		return "", err
	}
	return graph.InitialStatus(), nil
}

// Successors lists the statuses the ticket may move to next
func (s *WorkflowService) Successors(ticket *models.Ticket) ([]string, error) {
	if ticket == nil {
		return nil, apierrors.NewValidationError(models.EntityTicket, "id", "must not be empty")
	}
	graph, err := s.GraphForProject(ticket.ProjectID)
	if err != nil {
		return nil, err
	}
	return graph.Successors(ticket.TicketStatusID), nil
}

// Transition moves the ticket one hop along its project's workflow.
// The status in the caller's snapshot is the expected predecessor; if the stored
// status has moved on in the meantime the call fails with a ConflictError.
func (s *WorkflowService) Transition(ticket *models.Ticket, targetStatusID, actorID string) (*models.Ticket, error) {
	if ticket == nil || ticket.ID == "" {
		return nil, apierrors.NewValidationError(models.EntityTicket, "id", "must not be empty")
	}
	if targetStatusID == "" {
		return nil, apierrors.NewValidationError(models.EntityTicket, "ticket_status_id", "must not be empty")
	}
	if ticket.Deleted {
		return nil, apierrors.NewNotFoundError(models.EntityTicket, ticket.ID)
	}

	graph, err := s.GraphForProject(ticket.ProjectID)
	if err != nil {
		return nil, err
	}
	from := ticket.TicketStatusID
	if !graph.CanTransition(from, targetStatusID) {
		return nil, &apierrors.IllegalTransitionError{TicketID: ticket.ID, From: from, To: targetStatusID}
	}

	modified := models.Now()
	if modified < ticket.Created {
		modified = ticket.Created
	}
	swapped, err := s.ticketRepo.CompareAndSwapStatus(ticket.ID, from, targetStatusID, modified)
	if err != nil {
		return nil, fmt.Errorf("failed to transition ticket: %w", err)
	}
	if !swapped {
		return nil, s.explainFailedSwap(ticket.ID, from)
	}

	updated := *ticket
	updated.TicketStatusID = targetStatusID
	if modified > updated.Modified {
		updated.Modified = modified
	}

	s.audit.Record(models.EntityTicket, ticket.ID, models.OperationTransition, actorID, map[string]string{
		"from": from,
		"to":   targetStatusID,
	})
	s.log.Info().
		Str("ticket_id", ticket.ID).
		Str("from", from).
		Str("to", targetStatusID).
		Msg("ticket transitioned")
	return &updated, nil
}

func (s *WorkflowService) explainFailedSwap(ticketID, expected string) error {
	current, err := s.ticketRepo.FindByID(ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NewNotFoundError(models.EntityTicket, ticketID)
		}
		return fmt.Errorf("failed to reload ticket: %w", err)
	}
	if current.Deleted {
		return apierrors.NewNotFoundError(models.EntityTicket, ticketID)
	}
	return &apierrors.ConflictError{
		Entity: models.EntityTicket,
		ID:     ticketID,
		Reason: fmt.Sprintf("expected status %q but found %q", expected, current.TicketStatusID),
	}
}

func (s *WorkflowService) storeGraph(graph *WorkflowGraph) {
	s.mu.Lock()
	s.graphs[graph.WorkflowID] = graph
	s.mu.Unlock()
}

func (s *WorkflowService) knownStatuses(ids []string) (map[string]bool, error) {
	known, err := s.workflowRepo.ActiveStatusIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket statuses: %w", err)
	}
	return known, nil
}

func statusIDsOf(steps []*models.WorkflowStep) []string {
	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = step.TicketStatusID
	}
	return ids
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/dto"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/services"
)

type WorkflowHandler struct {
	workflowService *services.WorkflowService
}

func NewWorkflowHandler(workflowService *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

type stepRequest struct {
	ID             string `json:"id"`
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	TicketStatusID string `json:"ticket_status_id" binding:"required"`
	NextStepID     string `json:"next_step_id"`
}

// CreateWorkflow validates and stores a workflow with all of its steps
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type CreateWorkflowRequest struct {
		ID          string        `json:"id"`
		Title       string        `json:"title" binding:"required"`
		Description string        `json:"description"`
		Linear      bool          `json:"linear"`
		Steps       []stepRequest `json:"steps" binding:"required,min=1,dive"`
	}

	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	steps := make([]services.StepInput, len(req.Steps))
	for i, s := range req.Steps {
		steps[i] = services.StepInput{
			ID:             s.ID,
			Title:          s.Title,
			Description:    s.Description,
			TicketStatusID: s.TicketStatusID,
			NextStepID:     s.NextStepID,
		}
	}

	workflow, created, err := h.workflowService.CreateWorkflow(services.CreateWorkflowInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Steps:       steps,
		Linear:      req.Linear,
		ActorID:     userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkflowDTO(*workflow, created))
}

// GetWorkflowGraph returns the validated transition graph of a workflow
func (h *WorkflowHandler) GetWorkflowGraph(c *gin.Context) {
	graph, err := h.workflowService.Graph(c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowGraphDTO(graph))
}

// AddStep inserts a step into an existing workflow
func (h *WorkflowHandler) AddStep(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type AddStepRequest struct {
		stepRequest
		AfterStepID string `json:"after_step_id"`
	}

	var req AddStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	step, err := h.workflowService.AddStep(services.AddStepInput{
		WorkflowID:     c.Param("id"),
		Title:          req.Title,
		Description:    req.Description,
		TicketStatusID: req.TicketStatusID,
		NextStepID:     req.NextStepID,
		AfterStepID:    req.AfterStepID,
		ActorID:        userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkflowStepDTO(*step))
}

// BindProject attaches a workflow to the project in the :id parameter
func (h *WorkflowHandler) BindProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	type BindRequest struct {
		WorkflowID string `json:"workflow_id" binding:"required"`
	}

	var req BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.workflowService.BindProject(c.Param("id"), req.WorkflowID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project_id":  c.Param("id"),
		"workflow_id": req.WorkflowID,
	})
}

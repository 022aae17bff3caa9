package dto

import (
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/services"
)

// WorkflowStepDTO represents a workflow step in API responses
type WorkflowStepDTO struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	TicketStatusID string `json:"ticket_status_id"`
	NextStepID     string `json:"next_step_id,omitempty"`
}

// WorkflowGraphDTO exposes the validated state machine of a workflow
type WorkflowGraphDTO struct {
	WorkflowID    string              `json:"workflow_id"`
	InitialStatus string              `json:"initial_status"`
	Statuses      []string            `json:"statuses"`
	Transitions   map[string][]string `json:"transitions"`
}

// WorkflowDTO represents a workflow together with its steps
type WorkflowDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Steps       []WorkflowStepDTO `json:"steps"`
}

// ToWorkflowStepDTO converts a WorkflowStep model to WorkflowStepDTO
func ToWorkflowStepDTO(step models.WorkflowStep) WorkflowStepDTO {
	return WorkflowStepDTO{
		ID:             step.ID,
		Title:          step.Title,
		TicketStatusID: step.TicketStatusID,
		NextStepID:     step.WorkflowStepID,
	}
}

// ToWorkflowDTO converts a workflow and its steps
func ToWorkflowDTO(workflow models.Workflow, steps []models.WorkflowStep) WorkflowDTO {
	out := WorkflowDTO{
		ID:          workflow.ID,
		Title:       workflow.Title,
		Description: workflow.Description,
		Steps:       make([]WorkflowStepDTO, len(steps)),
	}
	for i, step := range steps {
		out.Steps[i] = ToWorkflowStepDTO(step)
	}
	return out
}

// ToWorkflowGraphDTO converts a cached graph
func ToWorkflowGraphDTO(graph *services.WorkflowGraph) WorkflowGraphDTO {
	statuses := graph.Statuses()
	transitions := make(map[string][]string, len(statuses))
	for _, status := range statuses {
		transitions[status] = graph.Successors(status)
	}
	return WorkflowGraphDTO{
		WorkflowID:    graph.WorkflowID,
		InitialStatus: graph.InitialStatus(),
		Statuses:      statuses,
		Transitions:   transitions,
	}
}

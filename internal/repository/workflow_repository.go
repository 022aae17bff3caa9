package repository

import (
	"errors"
	"fmt"

	"github.com/helixtrack/core/internal/database"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"gorm.io/gorm"
)

// GormWorkflowRepository is a GORM implementation of WorkflowRepository
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// CreateWithSteps inserts a workflow and its steps atomically
func (r *GormWorkflowRepository) CreateWithSteps(workflow *models.Workflow, steps []*models.WorkflowStep, validate func([]models.WorkflowStep) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := models.Now()
		workflow.EnsureID()
		workflow.Stamp(now)
		if err := workflow.Validate(); err != nil {
			return err
		}

		candidate := make([]models.WorkflowStep, len(steps))
		for i, step := range steps {
			step.WorkflowID = workflow.ID
			step.EnsureID()
			step.Stamp(now)
			if err := step.Validate(); err != nil {
				return err
			}
			candidate[i] = *step
		}
		if validate != nil {
			if err := validate(candidate); err != nil {
				return err
			}
		}

		if err := tx.Create(workflow).Error; err != nil {
			return fmt.Errorf("failed to create workflow: %w", err)
		}
		for _, step := range steps {
			if err := tx.Create(step).Error; err != nil {
				return fmt.Errorf("failed to create workflow step: %w", err)
			}
		}
		return nil
	})
}

// FindByID finds a live workflow
func (r *GormWorkflowRepository) FindByID(id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := r.db.Where("id = ? AND deleted = ?", id, false).First(&workflow).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

// ListSteps lists the live steps of a workflow
func (r *GormWorkflowRepository) ListSteps(workflowID string) ([]models.WorkflowStep, error) {
	return listSteps(r.db, workflowID)
}

func listSteps(db *gorm.DB, workflowID string) ([]models.WorkflowStep, error) {
	steps := []models.WorkflowStep{}
	err := db.Where("workflow_id = ? AND deleted = ?", workflowID, false).
		Order("created ASC, id ASC").
		Find(&steps).Error
	return steps, err
}

// AddStep inserts a step, optionally splicing it after an existing one
func (r *GormWorkflowRepository) AddStep(step *models.WorkflowStep, afterStepID string, validate func([]models.WorkflowStep) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireLive(tx, &models.Workflow{}, models.EntityWorkflow, step.WorkflowID); err != nil {
			return err
		}
		steps, err := listSteps(tx, step.WorkflowID)
		if err != nil {
			return fmt.Errorf("failed to load workflow steps: %w", err)
		}

		step.EnsureID()
		step.Stamp(models.Now())

		var previous *models.WorkflowStep
		if afterStepID != "" {
			for i := range steps {
				if steps[i].ID == afterStepID {
					previous = &steps[i]
					break
				}
			}
			if previous == nil {
				return apierrors.NewNotFoundError(models.EntityWorkflowStep, afterStepID)
			}
			if step.WorkflowStepID == "" {
				step.WorkflowStepID = previous.WorkflowStepID
			}
			if err := previous.SetNextStepID(step.ID); err != nil {
				return err
			}
		}
		if err := step.Validate(); err != nil {
			return err
		}

		if validate != nil {
			if err := validate(append(steps, *step)); err != nil {
				return err
			}
		}

		if previous != nil {
			err := tx.Model(previous).
				Select("workflow_step_id", "modified").
				Updates(previous).Error
			if err != nil {
				return fmt.Errorf("failed to relink workflow step: %w", err)
			}
		}
		return tx.Create(step).Error
	})
}

// ActiveStatusIDs returns the subset of ids that are live ticket statuses
func (r *GormWorkflowRepository) ActiveStatusIDs(ids []string) (map[string]bool, error) {
	known := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}
	var found []string
	err := r.db.Model(&models.TicketStatus{}).
		Where("id IN ? AND deleted = ?", ids, false).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		known[id] = true
	}
	return known, nil
}

// FindProject finds a live project
func (r *GormWorkflowRepository) FindProject(id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("id = ? AND deleted = ?", id, false).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// BindProject points a live project at a workflow
func (r *GormWorkflowRepository) BindProject(projectID, workflowID string, covers func(statusID string) bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireLive(tx, &models.Workflow{}, models.EntityWorkflow, workflowID); err != nil {
			return err
		}

		var project models.Project
		err := tx.Scopes(database.ForUpdate).
			Where("id = ? AND deleted = ?", projectID, false).
			First(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NewNotFoundError(models.EntityProject, projectID)
		}
		if err != nil {
			return err
		}

		if covers != nil {
			var inUse []string
			err := tx.Model(&models.Ticket{}).
				Scopes(database.NotDeleted, database.Match("project_id", projectID)).
				Distinct("ticket_status_id").
				Order("ticket_status_id").
				Pluck("ticket_status_id", &inUse).Error
			if err != nil {
				return fmt.Errorf("failed to load ticket statuses of project: %w", err)
			}
			for _, status := range inUse {
				if !covers(status) {
					return &apierrors.ConflictError{
						Entity: models.EntityProject,
						ID:     projectID,
						Reason: fmt.Sprintf("live tickets in status %q have no step in workflow %q", status, workflowID),
					}
				}
			}
		}

		if err := project.SetWorkflowID(workflowID); err != nil {
			return err
		}
		return tx.Model(&project).
			Select("workflow_id", "modified").
			Updates(&project).Error
	})
}

package models

// Workflow is a named graph of WorkflowSteps that constrains ticket status changes.
type Workflow struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (w *Workflow) EntityName() string { return EntityWorkflow }

func (w *Workflow) Validate() error {
	if err := w.validateBase(EntityWorkflow); err != nil {
		return err
	}
	return requireText(EntityWorkflow, "title", w.Title)
}

// SetTitle renames the workflow
func (w *Workflow) SetTitle(title string) error {
	return w.mutate(EntityWorkflow, func() error {
		if err := requireText(EntityWorkflow, "title", title); err != nil {
			return err
		}
		w.Title = title
		return nil
	})
}

// WorkflowStep binds a TicketStatus into a workflow.
// WorkflowStepID points at the step that follows this one; empty marks a terminal step.
type WorkflowStep struct {
	Base
	WorkflowID     string `gorm:"type:varchar(64);not null;index" json:"workflow_id"`
	Title          string `gorm:"type:varchar(255);not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	TicketStatusID string `gorm:"type:varchar(64);not null;index" json:"ticket_status_id"`
	WorkflowStepID string `gorm:"type:varchar(64);index" json:"workflow_step_id"`
}

func (s *WorkflowStep) EntityName() string { return EntityWorkflowStep }

func (s *WorkflowStep) Validate() error {
	if err := s.validateBase(EntityWorkflowStep); err != nil {
		return err
	}
	if err := requireID(EntityWorkflowStep, "workflow_id", s.WorkflowID); err != nil {
		return err
	}
	if err := requireText(EntityWorkflowStep, "title", s.Title); err != nil {
		return err
	}
	if err := requireID(EntityWorkflowStep, "ticket_status_id", s.TicketStatusID); err != nil {
		return err
	}
	return optionalID(EntityWorkflowStep, "workflow_step_id", s.WorkflowStepID)
}

// SetTicketStatusID rebinds the step to another status
func (s *WorkflowStep) SetTicketStatusID(statusID string) error {
	return s.mutate(EntityWorkflowStep, func() error {
		if err := requireID(EntityWorkflowStep, "ticket_status_id", statusID); err != nil {
			return err
		}
		s.TicketStatusID = statusID
		return nil
	})
}

// SetNextStepID chains the step to its successor; empty makes it terminal
func (s *WorkflowStep) SetNextStepID(stepID string) error {
	return s.mutate(EntityWorkflowStep, func() error {
		if err := optionalID(EntityWorkflowStep, "workflow_step_id", stepID); err != nil {
			return err
		}
		s.WorkflowStepID = stepID
		return nil
	})
}

type TicketStatus struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (s *TicketStatus) EntityName() string { return EntityTicketStatus }

func (s *TicketStatus) Validate() error {
	if err := s.validateBase(EntityTicketStatus); err != nil {
		return err
	}
	return requireText(EntityTicketStatus, "title", s.Title)
}

type TicketType struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (t *TicketType) EntityName() string { return EntityTicketType }

func (t *TicketType) Validate() error {
	if err := t.validateBase(EntityTicketType); err != nil {
		return err
	}
	return requireText(EntityTicketType, "title", t.Title)
}

// TicketTypeProjectMapping enables a ticket type inside a project
type TicketTypeProjectMapping struct {
	Base
	TicketTypeID string `gorm:"type:varchar(64);not null;index" json:"ticket_type_id"`
	ProjectID    string `gorm:"type:varchar(64);not null;index" json:"project_id"`
}

func (m *TicketTypeProjectMapping) EntityName() string { return "ticket_type_project_mapping" }

func (m *TicketTypeProjectMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "ticket_type_id", m.TicketTypeID, "project_id", m.ProjectID)
}

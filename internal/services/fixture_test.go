package services

import (
	"testing"

	"github.com/helixtrack/core/internal/logger"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/helixtrack/core/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	statusA = "status-a"
	statusB = "status-b"
	statusC = "status-c"
)

// fixture wires every service against one in-memory database seeded with
// three statuses, a linear workflow A -> B -> C, a project bound to it,
// one ticket type and one user.
type fixture struct {
	db          *gorm.DB
	audit       *AuditService
	relations   *RelationService
	workflows   *WorkflowService
	tickets     *TicketService
	permissions *PermissionService
	ticketRepo  repository.TicketRepository

	workflow *models.Workflow
	project  *models.Project
	user     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	log := logger.Nop()

	f := &fixture{db: db}
	f.ticketRepo = repository.NewTicketRepository(db)
	f.audit = NewAuditService(repository.NewAuditRepository(db), log)
	f.relations = NewRelationService(db, f.audit, log)
	f.workflows = NewWorkflowService(repository.NewWorkflowRepository(db), f.ticketRepo, f.audit, log)
	f.tickets = NewTicketService(db, f.ticketRepo, f.workflows, f.relations, f.audit, nil, log)
	f.permissions = NewPermissionService(db, repository.NewPermissionRepository(db), f.audit, log)

	for _, id := range []string{statusA, statusB, statusC} {
		require.NoError(t, repository.NewStore[models.TicketStatus](db).Create(&models.TicketStatus{
			Base:  models.Base{ID: id},
			Title: id,
		}))
	}
	require.NoError(t, repository.NewStore[models.TicketType](db).Create(&models.TicketType{
		Base:  models.Base{ID: "bug"},
		Title: "Bug",
	}))

	workflow, _, err := f.workflows.CreateWorkflow(CreateWorkflowInput{
		Title:  "Linear",
		Linear: true,
		Steps: []StepInput{
			{Title: "A", TicketStatusID: statusA},
			{Title: "B", TicketStatusID: statusB},
			{Title: "C", TicketStatusID: statusC},
		},
	})
	require.NoError(t, err)
	f.workflow = workflow

	f.project = &models.Project{Identifier: "HT", Title: "Helix"}
	require.NoError(t, repository.NewStore[models.Project](db).Create(f.project))
	require.NoError(t, f.workflows.BindProject(f.project.ID, workflow.ID, ""))

	f.user = &models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, repository.NewStore[models.User](db).Create(f.user))

	return f
}

func (f *fixture) createTicket(t *testing.T, title string) *models.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    f.project.ID,
		Title:        title,
		TicketTypeID: "bug",
		CreatorID:    f.user.ID,
	})
	require.NoError(t, err)
	return ticket
}

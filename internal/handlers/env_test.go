package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/constants"
	"github.com/helixtrack/core/internal/logger"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/helixtrack/core/internal/services"
	"github.com/helixtrack/core/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	statusOpen   = "open"
	statusDoing  = "doing"
	statusClosed = "closed"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	deps   Dependencies

	workflow *models.Workflow
	project  *models.Project
	user     *models.User
	token    string
}

// newTestEnv builds the full router over an in-memory database seeded with a
// linear open -> doing -> closed workflow bound to project HT.
func newTestEnv(t *testing.T, enforcePermissions bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	log := logger.Nop()

	ticketRepo := repository.NewTicketRepository(db)
	audit := services.NewAuditService(repository.NewAuditRepository(db), log)
	relations := services.NewRelationService(db, audit, log)
	workflows := services.NewWorkflowService(repository.NewWorkflowRepository(db), ticketRepo, audit, log)
	permissions := services.NewPermissionService(db, repository.NewPermissionRepository(db), audit, log)

	deps := Dependencies{
		DB:          db,
		Auth:        services.NewAuthService(repository.NewUserRepository(db), audit, log),
		Tokens:      services.NewTokenService("test-secret", time.Hour),
		Tickets:     services.NewTicketService(db, ticketRepo, workflows, relations, audit, nil, log),
		Workflows:   workflows,
		Relations:   relations,
		Permissions: permissions,
		Audit:       audit,
		Guard:       middleware.NewPermissionGuard(permissions, enforcePermissions, log),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, deps)

	env := &testEnv{db: db, router: r, deps: deps}

	for _, id := range []string{statusOpen, statusDoing, statusClosed} {
		require.NoError(t, repository.NewStore[models.TicketStatus](db).Create(&models.TicketStatus{
			Base:  models.Base{ID: id},
			Title: id,
		}))
	}
	require.NoError(t, repository.NewStore[models.TicketType](db).Create(&models.TicketType{
		Base:  models.Base{ID: "bug"},
		Title: "Bug",
	}))
	require.NoError(t, repository.NewStore[models.TicketRelationshipType](db).Create(&models.TicketRelationshipType{
		Base:         models.Base{ID: models.RelationshipTypeParentChild},
		Title:        "Parent",
		Hierarchical: true,
	}))

	workflow, _, err := workflows.CreateWorkflow(services.CreateWorkflowInput{
		Title:  "Default",
		Linear: true,
		Steps: []services.StepInput{
			{Title: "Open", TicketStatusID: statusOpen},
			{Title: "Doing", TicketStatusID: statusDoing},
			{Title: "Closed", TicketStatusID: statusClosed},
		},
	})
	require.NoError(t, err)
	env.workflow = workflow

	env.project = &models.Project{Identifier: "HT", Title: "Helix"}
	require.NoError(t, repository.NewStore[models.Project](db).Create(env.project))
	require.NoError(t, workflows.BindProject(env.project.ID, workflow.ID, ""))

	env.user, err = deps.Auth.Signup(services.SignupInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)
	env.token, _, err = deps.Tokens.Issue(env.user.ID)
	require.NoError(t, err)

	return env
}

// do sends an authenticated JSON request through the router
func (env *testEnv) do(t *testing.T, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if env.token != "" {
		req.Header.Set("Authorization", constants.BearerPrefix+env.token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// grantLevel gives the test user a permission of level in the project
func (env *testEnv) grantLevel(t *testing.T, level int) {
	t.Helper()
	env.grantIn(t, env.project.ID, level)
}

func (env *testEnv) grantIn(t *testing.T, contextID string, level int) {
	t.Helper()
	perm := &models.Permission{Title: "level", Value: level}
	require.NoError(t, repository.NewStore[models.Permission](env.db).Create(perm))
	_, err := env.deps.Permissions.GrantUser(perm.ID, env.user.ID, contextID, "")
	require.NoError(t, err)
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/helixtrack/core/internal/constants"
	"github.com/helixtrack/core/internal/dto"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/helixtrack/core/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_TeamLifecycle(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/catalog/teams", map[string]string{"title": "Core"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var team models.Team
	decode(t, w, &team)
	require.NotEmpty(t, team.ID)
	assert.NotZero(t, team.Created)

	w = env.do(t, http.MethodPut, "/api/catalog/teams/"+team.ID, map[string]string{"title": "Platform"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var renamed models.Team
	decode(t, w, &renamed)
	assert.Equal(t, "Platform", renamed.Title)
	assert.Equal(t, team.Created, renamed.Created)

	w = env.do(t, http.MethodGet, "/api/catalog/teams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.CatalogListResponse[models.Team]
	decode(t, w, &list)
	require.Len(t, list.Items, 1)
	assert.EqualValues(t, 1, list.Pagination.Total)

	w = env.do(t, http.MethodDelete, "/api/catalog/teams/"+team.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/catalog/teams/"+team.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPut, "/api/catalog/teams/"+team.ID, map[string]string{"title": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/catalog/teams/"+team.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tomb models.Team
	decode(t, w, &tomb)
	assert.True(t, tomb.Deleted)

	w = env.do(t, http.MethodGet, "/api/audit/"+models.EntityTeam+"/"+team.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Records []models.Audit `json:"records"`
	}
	decode(t, w, &history)
	assert.Len(t, history.Records, 3)
}

func TestCatalogHandler_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/catalog/labels", map[string]string{"title": "Red", "color": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/catalog/permissions", map[string]interface{}{"title": "odd", "value": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/catalog/teams", map[string]string{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_ProjectWorkflowMustBeValid(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/catalog/projects", map[string]string{
		"identifier":  "BAD",
		"title":       "Broken",
		"workflow_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/catalog/projects", map[string]string{
		"identifier":  "OK",
		"title":       "Fine",
		"workflow_id": env.workflow.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestWorkflowHandler_CreateAndInspect(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/workflows", map[string]interface{}{
		"title":  "Short",
		"linear": true,
		"steps": []map[string]string{
			{"title": "Open", "ticket_status_id": statusOpen},
			{"title": "Closed", "ticket_status_id": statusClosed},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var workflow dto.WorkflowDTO
	decode(t, w, &workflow)
	require.Len(t, workflow.Steps, 2)

	w = env.do(t, http.MethodGet, "/api/workflows/"+workflow.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var graph dto.WorkflowGraphDTO
	decode(t, w, &graph)
	assert.Equal(t, statusOpen, graph.InitialStatus)
	assert.Equal(t, []string{statusClosed}, graph.Transitions[statusOpen])

	w = env.do(t, http.MethodPost, "/api/workflows/"+workflow.ID+"/steps", map[string]string{
		"title":            "Doing",
		"ticket_status_id": statusDoing,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/workflows/"+workflow.ID, nil)
	decode(t, w, &graph)
	assert.Equal(t, []string{statusDoing}, graph.Transitions[statusClosed])

	w = env.do(t, http.MethodGet, "/api/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkflowHandler_RejectsCycle(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/workflows", map[string]interface{}{
		"title": "Loop",
		"steps": []map[string]string{
			{"id": "s1", "title": "One", "ticket_status_id": statusOpen, "next_step_id": "s2"},
			{"id": "s2", "title": "Two", "ticket_status_id": statusDoing, "next_step_id": "s1"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	assert.Equal(t, apierrors.ErrCodeWorkflowConfig, apiErr.Code)

	w = env.do(t, http.MethodPost, "/api/workflows", map[string]interface{}{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkflowHandler_BindProject(t *testing.T) {
	env := newTestEnv(t, false)

	workflow, _, err := env.deps.Workflows.CreateWorkflow(services.CreateWorkflowInput{
		Title:  "Quick",
		Linear: true,
		Steps: []services.StepInput{
			{Title: "Doing", TicketStatusID: statusDoing},
			{Title: "Closed", TicketStatusID: statusClosed},
		},
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodPut, "/api/projects/"+env.project.ID+"/workflow", map[string]string{"workflow_id": workflow.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/tickets", map[string]interface{}{
		"project_id":     env.project.ID,
		"title":          "Rebound",
		"ticket_type_id": "bug",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ticket dto.TicketDTO
	decode(t, w, &ticket)
	assert.Equal(t, statusDoing, ticket.TicketStatusID)

	w = env.do(t, http.MethodPut, "/api/projects/"+env.project.ID+"/workflow", map[string]string{"workflow_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	closedOnly, _, err := env.deps.Workflows.CreateWorkflow(services.CreateWorkflowInput{
		Title: "Closed only",
		Steps: []services.StepInput{{Title: "Closed", TicketStatusID: statusClosed}},
	})
	require.NoError(t, err)

	// The ticket in "doing" would have no step in the new workflow
	w = env.do(t, http.MethodPut, "/api/projects/"+env.project.ID+"/workflow", map[string]string{"workflow_id": closedOnly.ID})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/catalog/projects/"+env.project.ID, map[string]string{"workflow_id": env.workflow.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/catalog/projects/"+env.project.ID, map[string]string{"title": "Helix Core"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var project models.Project
	decode(t, w, &project)
	assert.Equal(t, "Helix Core", project.Title)
	assert.Equal(t, workflow.ID, project.WorkflowID)
}

func TestRelationHandler_LinkUnlink(t *testing.T) {
	env := newTestEnv(t, false)

	team := &models.Team{Title: "Core"}
	require.NoError(t, env.db.Create(team).Error)

	w := env.do(t, http.MethodGet, "/api/relations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kinds struct {
		Kinds []string `json:"kinds"`
	}
	decode(t, w, &kinds)
	assert.Contains(t, kinds.Kinds, services.KindUserTeams)

	body := map[string]string{"source_id": env.user.ID, "target_id": team.ID}
	w = env.do(t, http.MethodPost, "/api/relations/"+services.KindUserTeams, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/api/relations/"+services.KindUserTeams, body)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/relations/"+services.KindUserTeams+"/"+env.user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var linked struct {
		Targets []string `json:"targets"`
	}
	decode(t, w, &linked)
	assert.Equal(t, []string{team.ID}, linked.Targets)

	w = env.do(t, http.MethodDelete, "/api/relations/"+services.KindUserTeams, body)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/relations/"+services.KindUserTeams, body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/relations/no_such_kind", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/relations/"+services.KindUserTeams, map[string]string{
		"source_id": env.user.ID,
		"target_id": "missing-team",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPermissionHandler_GrantCheckRevoke(t *testing.T) {
	env := newTestEnv(t, false)

	perm := &models.Permission{Title: "edit", Value: models.PermissionUpdate}
	require.NoError(t, env.db.Create(perm).Error)

	grant := map[string]string{
		"permission_id": perm.ID,
		"holder_id":     env.user.ID,
		"context_id":    env.project.ID,
	}
	w := env.do(t, http.MethodPost, "/api/permissions/grants/users", grant)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/permissions/effective?context_id="+env.project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var effective struct {
		Permissions []string `json:"permissions"`
	}
	decode(t, w, &effective)
	assert.Equal(t, []string{perm.ID}, effective.Permissions)

	w = env.do(t, http.MethodGet, "/api/permissions/check?context_id="+env.project.ID+"&permission_id="+perm.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var check struct {
		Allowed bool `json:"allowed"`
	}
	decode(t, w, &check)
	assert.True(t, check.Allowed)

	w = env.do(t, http.MethodDelete, "/api/permissions/grants/users", grant)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/permissions/grants/users", grant)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/permissions/effective", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPermissionHandler_GrantsNeedAdministration(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/api/catalog/permissions", map[string]interface{}{"title": "Root", "value": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	perm := &models.Permission{Title: "Root", Value: models.PermissionDelete}
	require.NoError(t, env.db.Create(perm).Error)
	selfGrant := map[string]string{
		"permission_id": perm.ID,
		"holder_id":     env.user.ID,
		"context_id":    env.project.ID,
	}

	w = env.do(t, http.MethodPost, "/api/permissions/grants/users", selfGrant)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/api/permissions/grants/users", map[string]string{
		"permission_id": perm.ID,
		"holder_id":     env.user.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/permissions/effective?context_id="+env.project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var effective struct {
		Permissions []string `json:"permissions"`
	}
	decode(t, w, &effective)
	assert.Empty(t, effective.Permissions)

	team := &models.Team{Title: "Admins"}
	require.NoError(t, env.db.Create(team).Error)
	w = env.do(t, http.MethodPost, "/api/relations/"+services.KindUserTeams, map[string]string{
		"source_id": env.user.ID,
		"target_id": team.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/catalog/projects", map[string]string{"identifier": "NEW", "title": "New"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Updating the project is not enough to hand out access in it
	env.grantLevel(t, models.PermissionUpdate)
	w = env.do(t, http.MethodPost, "/api/permissions/grants/users", selfGrant)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodPut, "/api/catalog/projects/"+env.project.ID, map[string]string{"title": "Renamed"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env.grantIn(t, constants.NodeContextID, models.PermissionDelete)
	w = env.do(t, http.MethodPost, "/api/permissions/grants/users", selfGrant)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/api/catalog/permissions", map[string]interface{}{"title": "Root", "value": 5})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPermissionHandler_ProjectRoles(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodPost, "/api/catalog/project_roles", map[string]string{"title": "Developer", "permission_id": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	edit := &models.Permission{Title: "Edit", Value: models.PermissionUpdate}
	require.NoError(t, env.db.Create(edit).Error)
	role := &models.ProjectRole{Title: "Developer", PermissionID: edit.ID}
	require.NoError(t, repository.NewStore[models.ProjectRole](env.db).Create(role))
	assignment := map[string]string{
		"project_role_id": role.ID,
		"project_id":      env.project.ID,
		"user_id":         env.user.ID,
	}

	w = env.do(t, http.MethodPost, "/api/permissions/roles", assignment)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	env.grantLevel(t, models.PermissionDelete)
	w = env.do(t, http.MethodPost, "/api/permissions/roles", assignment)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/permissions/effective?context_id="+env.project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var effective struct {
		Permissions []string `json:"permissions"`
	}
	decode(t, w, &effective)
	assert.Contains(t, effective.Permissions, edit.ID)

	w = env.do(t, http.MethodDelete, "/api/permissions/roles", assignment)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodDelete, "/api/permissions/roles", assignment)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_PrioritiesAndResolutions(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/catalog/priorities", map[string]interface{}{"title": "Urgent", "level": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/catalog/priorities", map[string]interface{}{
		"title": "Urgent",
		"level": 5,
		"color": "#ef4444",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var priority models.Priority
	decode(t, w, &priority)
	assert.Equal(t, 5, priority.Level)

	w = env.do(t, http.MethodPost, "/api/catalog/resolutions", map[string]string{"title": "Won't fix"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

package services

import (
	"sync"
	"testing"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestEffectivePermissions_Snapshot(t *testing.T) {
	snap := PermissionSnapshot{
		UserGrants: []models.PermissionUserMapping{
			{PermissionID: "read", UserID: "u1", PermissionContextID: "proj-1"},
			{PermissionID: "admin", UserID: "u1", PermissionContextID: "proj-2"},
			{Base: models.Base{Deleted: true}, PermissionID: "delete", UserID: "u1", PermissionContextID: "proj-1"},
		},
		Memberships: []models.UserTeamMapping{
			{UserID: "u1", TeamID: "t1"},
			{Base: models.Base{Deleted: true}, UserID: "u1", TeamID: "t2"},
		},
		TeamGrants: []models.PermissionTeamMapping{
			{PermissionID: "edit", TeamID: "t1", PermissionContextID: "proj-1"},
			{PermissionID: "read", TeamID: "t1", PermissionContextID: "proj-1"},
			{PermissionID: "owner", TeamID: "t2", PermissionContextID: "proj-1"},
		},
	}

	assert.Equal(t, []string{"edit", "read"}, EffectivePermissions(snap, "u1", "proj-1"))
	assert.Equal(t, []string{"admin"}, EffectivePermissions(snap, "u1", "proj-2"))
	assert.Empty(t, EffectivePermissions(snap, "u2", "proj-1"))
}

func TestEffectivePermissions_ProjectRoles(t *testing.T) {
	snap := PermissionSnapshot{
		UserGrants: []models.PermissionUserMapping{
			{PermissionID: "read", UserID: "u1", PermissionContextID: "proj-1"},
		},
		RoleAssignments: []models.ProjectRoleUserMapping{
			{ProjectRoleID: "developer", ProjectID: "proj-1", UserID: "u1"},
			{ProjectRoleID: "lead", ProjectID: "proj-1", UserID: "u1"},
			{ProjectRoleID: "foreign", ProjectID: "proj-1", UserID: "u1"},
			{ProjectRoleID: "retired", ProjectID: "proj-1", UserID: "u1"},
			{Base: models.Base{Deleted: true}, ProjectRoleID: "admin", ProjectID: "proj-1", UserID: "u1"},
			{ProjectRoleID: "admin", ProjectID: "proj-2", UserID: "u1"},
		},
		Roles: []models.ProjectRole{
			{Base: models.Base{ID: "developer"}, PermissionID: "edit"},
			{Base: models.Base{ID: "lead"}, ProjectID: "proj-1", PermissionID: "read"},
			{Base: models.Base{ID: "foreign"}, ProjectID: "proj-9", PermissionID: "owner"},
			{Base: models.Base{ID: "retired", Deleted: true}, PermissionID: "owner"},
			{Base: models.Base{ID: "admin"}, PermissionID: "delete"},
		},
	}

	assert.Equal(t, []string{"edit", "read"}, EffectivePermissions(snap, "u1", "proj-1"))
	assert.Equal(t, []string{"delete"}, EffectivePermissions(snap, "u1", "proj-2"))
	assert.Empty(t, EffectivePermissions(snap, "u2", "proj-1"))
}

type PermissionServiceTestSuite struct {
	suite.Suite
	f    *fixture
	team *models.Team
}

func (suite *PermissionServiceTestSuite) SetupTest() {
	suite.f = newFixture(suite.T())

	for _, p := range []*models.Permission{
		{Base: models.Base{ID: "read"}, Title: "Read", Value: models.PermissionRead},
		{Base: models.Base{ID: "edit"}, Title: "Edit", Value: models.PermissionUpdate},
	} {
		suite.Require().NoError(repository.NewStore[models.Permission](suite.f.db).Create(p))
	}

	suite.team = &models.Team{Title: "Core"}
	suite.Require().NoError(repository.NewStore[models.Team](suite.f.db).Create(suite.team))
	_, _, err := suite.f.relations.Link(KindUserTeams, suite.f.user.ID, suite.team.ID, "")
	suite.Require().NoError(err)
}

func (suite *PermissionServiceTestSuite) TestTeamGrantIsScopedToContext() {
	_, err := suite.f.permissions.GrantTeam("edit", suite.team.ID, "proj-1", "")
	suite.Require().NoError(err)

	granted, err := suite.f.permissions.EffectivePermissions(suite.f.user.ID, "proj-1")
	suite.Require().NoError(err)
	suite.Equal([]string{"edit"}, granted)

	granted, err = suite.f.permissions.EffectivePermissions(suite.f.user.ID, "proj-2")
	suite.Require().NoError(err)
	suite.Empty(granted)

	ok, err := suite.f.permissions.HasPermission(suite.f.user.ID, "proj-1", "edit")
	suite.Require().NoError(err)
	suite.True(ok)

	ok, err = suite.f.permissions.HasPermission(suite.f.user.ID, "proj-2", "edit")
	suite.Require().NoError(err)
	suite.False(ok)
}

func (suite *PermissionServiceTestSuite) TestLeavingTeamDropsItsGrants() {
	_, err := suite.f.permissions.GrantTeam("edit", suite.team.ID, "proj-1", "")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.f.relations.Unlink(KindUserTeams, suite.f.user.ID, suite.team.ID, ""))

	granted, err := suite.f.permissions.EffectivePermissions(suite.f.user.ID, "proj-1")
	suite.Require().NoError(err)
	suite.Empty(granted)
}

func (suite *PermissionServiceTestSuite) TestUserGrantAndRevoke() {
	first, err := suite.f.permissions.GrantUser("read", suite.f.user.ID, "proj-1", "")
	suite.Require().NoError(err)
	again, err := suite.f.permissions.GrantUser("read", suite.f.user.ID, "proj-1", "")
	suite.Require().NoError(err)
	suite.Equal(first.ID, again.ID)

	suite.Require().NoError(suite.f.permissions.RevokeUser("read", suite.f.user.ID, "proj-1", ""))
	err = suite.f.permissions.RevokeUser("read", suite.f.user.ID, "proj-1", "")
	suite.True(apierrors.IsNotFound(err), "got %v", err)

	granted, err := suite.f.permissions.EffectivePermissions(suite.f.user.ID, "proj-1")
	suite.Require().NoError(err)
	suite.Empty(granted)
}

func (suite *PermissionServiceTestSuite) TestGrantRequiresLiveRows() {
	_, err := suite.f.permissions.GrantUser("missing", suite.f.user.ID, "proj-1", "")
	suite.True(apierrors.IsNotFound(err), "got %v", err)

	_, err = suite.f.permissions.GrantTeam("edit", "no-team", "proj-1", "")
	suite.True(apierrors.IsNotFound(err), "got %v", err)

	_, err = suite.f.permissions.GrantTeam("edit", suite.team.ID, "", "")
	suite.True(apierrors.IsValidation(err), "got %v", err)
}

func (suite *PermissionServiceTestSuite) TestHasAccessLevel() {
	_, err := suite.f.permissions.GrantUser("read", suite.f.user.ID, "proj-1", "")
	suite.Require().NoError(err)

	ok, err := suite.f.permissions.HasAccessLevel(suite.f.user.ID, "proj-1", models.PermissionRead)
	suite.Require().NoError(err)
	suite.True(ok)

	ok, err = suite.f.permissions.HasAccessLevel(suite.f.user.ID, "proj-1", models.PermissionUpdate)
	suite.Require().NoError(err)
	suite.False(ok)

	_, err = suite.f.permissions.GrantTeam("edit", suite.team.ID, "proj-1", "")
	suite.Require().NoError(err)
	ok, err = suite.f.permissions.HasAccessLevel(suite.f.user.ID, "proj-1", models.PermissionUpdate)
	suite.Require().NoError(err)
	suite.True(ok)

	_, err = suite.f.permissions.HasAccessLevel(suite.f.user.ID, "proj-1", 4)
	suite.True(apierrors.IsValidation(err))
}

func (suite *PermissionServiceTestSuite) TestEmptyScopeRejected() {
	_, err := suite.f.permissions.EffectivePermissions("", "proj-1")
	suite.True(apierrors.IsValidation(err))
	_, err = suite.f.permissions.EffectivePermissions(suite.f.user.ID, "")
	suite.True(apierrors.IsValidation(err))
}

func (suite *PermissionServiceTestSuite) TestConcurrentGrantsShareOneRow() {
	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  = map[string]bool{}
		errs []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grant, err := suite.f.permissions.GrantUser("edit", suite.f.user.ID, "proj-1", "")

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids[grant.ID] = true
		}()
	}
	wg.Wait()

	suite.Empty(errs)
	suite.Len(ids, 1)

	var live int64
	suite.Require().NoError(suite.f.db.Model(&models.PermissionUserMapping{}).
		Where("user_id = ? AND deleted = ?", suite.f.user.ID, false).
		Count(&live).Error)
	suite.EqualValues(1, live)
}

func (suite *PermissionServiceTestSuite) TestRoleAssignmentGrantsInProjectOnly() {
	roles := repository.NewStore[models.ProjectRole](suite.f.db)
	developer := &models.ProjectRole{Title: "Developer", PermissionID: "edit"}
	suite.Require().NoError(roles.Create(developer))

	other := &models.Project{Identifier: "OT", Title: "Other"}
	suite.Require().NoError(repository.NewStore[models.Project](suite.f.db).Create(other))

	first, err := suite.f.permissions.AssignRole(developer.ID, suite.f.project.ID, suite.f.user.ID, "")
	suite.Require().NoError(err)
	again, err := suite.f.permissions.AssignRole(developer.ID, suite.f.project.ID, suite.f.user.ID, "")
	suite.Require().NoError(err)
	suite.Equal(first.ID, again.ID)

	granted, err := suite.f.permissions.EffectivePermissions(suite.f.user.ID, suite.f.project.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{"edit"}, granted)

	ok, err := suite.f.permissions.HasAccessLevel(suite.f.user.ID, suite.f.project.ID, models.PermissionUpdate)
	suite.Require().NoError(err)
	suite.True(ok)

	granted, err = suite.f.permissions.EffectivePermissions(suite.f.user.ID, other.ID)
	suite.Require().NoError(err)
	suite.Empty(granted)

	suite.Require().NoError(suite.f.permissions.UnassignRole(developer.ID, suite.f.project.ID, suite.f.user.ID, ""))
	err = suite.f.permissions.UnassignRole(developer.ID, suite.f.project.ID, suite.f.user.ID, "")
	suite.True(apierrors.IsNotFound(err), "got %v", err)

	granted, err = suite.f.permissions.EffectivePermissions(suite.f.user.ID, suite.f.project.ID)
	suite.Require().NoError(err)
	suite.Empty(granted)
}

func (suite *PermissionServiceTestSuite) TestProjectBoundRoleStaysInItsProject() {
	other := &models.Project{Identifier: "OT", Title: "Other"}
	suite.Require().NoError(repository.NewStore[models.Project](suite.f.db).Create(other))

	lead := &models.ProjectRole{Title: "Lead", ProjectID: other.ID, PermissionID: "edit"}
	suite.Require().NoError(repository.NewStore[models.ProjectRole](suite.f.db).Create(lead))

	_, err := suite.f.permissions.AssignRole(lead.ID, suite.f.project.ID, suite.f.user.ID, "")
	suite.True(apierrors.IsConflict(err), "got %v", err)

	_, err = suite.f.permissions.AssignRole(lead.ID, other.ID, suite.f.user.ID, "")
	suite.Require().NoError(err)

	_, err = suite.f.permissions.AssignRole("missing", other.ID, suite.f.user.ID, "")
	suite.True(apierrors.IsNotFound(err), "got %v", err)

	_, err = suite.f.permissions.AssignRole(lead.ID, "", suite.f.user.ID, "")
	suite.True(apierrors.IsValidation(err), "got %v", err)
}

func TestPermissionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionServiceTestSuite))
}

func TestPermissionService_GrantIsAudited(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, repository.NewStore[models.Permission](f.db).Create(&models.Permission{
		Base: models.Base{ID: "read"}, Title: "Read", Value: models.PermissionRead,
	}))

	grant, err := f.permissions.GrantUser("read", f.user.ID, "proj-1", f.user.ID)
	require.NoError(t, err)

	history, err := f.audit.ListForEntity(models.EntityPermissionUserMapping, grant.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.OperationGrant, history[0].Operation)
	assert.Equal(t, f.user.ID, history[0].UserID)
}

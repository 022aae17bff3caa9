package services

import (
	"sync"
	"testing"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLinked(t *testing.T) {
	rows := []*models.UserTeamMapping{
		{UserID: "u1", TeamID: "t2"},
		{UserID: "u1", TeamID: "t1"},
		{UserID: "u1", TeamID: "t2"},
		{UserID: "u2", TeamID: "t3"},
		{Base: models.Base{Deleted: true}, UserID: "u1", TeamID: "t4"},
	}
	endpoints := func(m *models.UserTeamMapping) (string, string) { return m.UserID, m.TeamID }

	assert.Equal(t, []string{"t2", "t1"}, ResolveLinked(rows, "u1", endpoints))
	assert.Empty(t, ResolveLinked(rows, "nobody", endpoints))
}

func TestRelationService_LinkUnlink(t *testing.T) {
	f := newFixture(t)
	team := &models.Team{Title: "Core"}
	require.NoError(t, repository.NewStore[models.Team](f.db).Create(team))

	_, created, err := f.relations.Link(KindUserTeams, f.user.ID, team.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = f.relations.Link(KindUserTeams, f.user.ID, team.ID, f.user.ID)
	require.NoError(t, err)
	assert.False(t, created, "linking twice is a no-op")

	// Reverse direction shares the same rows
	_, created, err = f.relations.Link(KindTeamUsers, team.ID, f.user.ID, f.user.ID)
	require.NoError(t, err)
	assert.False(t, created)

	teams, err := f.relations.Linked(KindUserTeams, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, teams)

	users, err := f.relations.Linked(KindTeamUsers, team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.user.ID}, users)

	require.NoError(t, f.relations.Unlink(KindUserTeams, f.user.ID, team.ID, f.user.ID))
	err = f.relations.Unlink(KindUserTeams, f.user.ID, team.ID, f.user.ID)
	assert.True(t, apierrors.IsNotFound(err), "got %v", err)

	teams, err = f.relations.Linked(KindUserTeams, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)

	// Relinking after unlink creates a fresh row
	_, created, err = f.relations.Link(KindUserTeams, f.user.ID, team.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestRelationService_RequiresLiveParents(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.relations.Link(KindUserTeams, f.user.ID, "no-team", "")
	assert.True(t, apierrors.IsNotFound(err), "got %v", err)

	_, _, err = f.relations.Link(KindUserTeams, "", "no-team", "")
	assert.True(t, apierrors.IsValidation(err), "got %v", err)

	_, _, err = f.relations.Link("no_such_kind", "a", "b", "")
	assert.True(t, apierrors.IsNotFound(err), "got %v", err)
}

func TestRelationService_Kinds(t *testing.T) {
	f := newFixture(t)
	kinds := f.relations.Kinds()

	assert.Contains(t, kinds, KindUserTeams)
	assert.Contains(t, kinds, KindTeamUsers)
	assert.Contains(t, kinds, KindProjectTicketTypes)
	assert.IsIncreasing(t, kinds)

	linker, err := f.relations.Kind(KindTicketLabels)
	require.NoError(t, err)
	assert.Equal(t, models.EntityTicket, linker.SourceEntity())
	assert.Equal(t, models.EntityLabel, linker.TargetEntity())
}

func TestRelationService_DuplicateKindPanics(t *testing.T) {
	f := newFixture(t)
	assert.Panics(t, func() {
		Register(f.relations, repository.LinkKind[models.UserTeamMapping, *models.UserTeamMapping]{
			Name: KindUserTeams,
		})
	})
}

func TestRelationService_ConcurrentLinkUnlinkOnOnePair(t *testing.T) {
	f := newFixture(t)
	team := &models.Team{Title: "Core"}
	require.NoError(t, repository.NewStore[models.Team](f.db).Create(team))

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half the callers come in from the team side of the same rows
			var ok bool
			var err error
			if i%2 == 0 {
				_, ok, err = f.relations.Link(KindUserTeams, f.user.ID, team.ID, "")
			} else {
				_, ok, err = f.relations.Link(KindTeamUsers, team.ID, f.user.ID, "")
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				created++
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, created)

	var live int64
	require.NoError(t, f.db.Model(&models.UserTeamMapping{}).Where("deleted = ?", false).Count(&live).Error)
	assert.EqualValues(t, 1, live)

	var (
		removed  int
		notFound int
	)
	errs = nil
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.relations.Unlink(KindUserTeams, f.user.ID, team.ID, "")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				removed++
			case apierrors.IsNotFound(err):
				notFound++
			default:
				errs = append(errs, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, removed)
	assert.Equal(t, callers-1, notFound)
}

package services

import (
	"context"
	"sync"
	"testing"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/stretchr/testify/suite"
)

type TicketServiceTestSuite struct {
	suite.Suite
	f *fixture
}

func (suite *TicketServiceTestSuite) SetupTest() {
	suite.f = newFixture(suite.T())
	for _, rt := range []*models.TicketRelationshipType{
		{Base: models.Base{ID: models.RelationshipTypeParentChild}, Title: "Parent", Hierarchical: true},
		{Base: models.Base{ID: models.RelationshipTypeBlocks}, Title: "Blocks"},
	} {
		suite.Require().NoError(repository.NewStore[models.TicketRelationshipType](suite.f.db).Create(rt))
	}
}

func (suite *TicketServiceTestSuite) TestCreateTicket_ValidatesInput() {
	_, err := suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    suite.f.project.ID,
		Title:        "  ",
		TicketTypeID: "bug",
		CreatorID:    suite.f.user.ID,
	})
	suite.True(apierrors.IsValidation(err))

	_, err = suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    suite.f.project.ID,
		Title:        "typed",
		TicketTypeID: "no-such-type",
		CreatorID:    suite.f.user.ID,
	})
	suite.True(apierrors.IsNotFound(err), "got %v", err)

	_, err = suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:      suite.f.project.ID,
		Title:          "off workflow",
		TicketTypeID:   "bug",
		TicketStatusID: "elsewhere",
		CreatorID:      suite.f.user.ID,
	})
	suite.True(apierrors.IsValidation(err))

	_, err = suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    "missing",
		Title:        "homeless",
		TicketTypeID: "bug",
		CreatorID:    suite.f.user.ID,
	})
	suite.True(apierrors.IsNotFound(err))
}

func (suite *TicketServiceTestSuite) TestCreateTicket_ExplicitStatusInWorkflow() {
	ticket, err := suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:      suite.f.project.ID,
		Title:          "imported",
		TicketTypeID:   "bug",
		TicketStatusID: statusC,
		CreatorID:      suite.f.user.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(statusC, ticket.TicketStatusID)
}

func (suite *TicketServiceTestSuite) TestCreateTicket_ProjectTicketTypes() {
	suite.Require().NoError(repository.NewStore[models.TicketType](suite.f.db).Create(&models.TicketType{
		Base:  models.Base{ID: "story"},
		Title: "Story",
	}))
	_, _, err := suite.f.relations.Link(KindProjectTicketTypes, suite.f.project.ID, "story", "")
	suite.Require().NoError(err)

	_, err = suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    suite.f.project.ID,
		Title:        "not enabled",
		TicketTypeID: "bug",
		CreatorID:    suite.f.user.ID,
	})
	suite.True(apierrors.IsValidation(err), "got %v", err)

	ticket, err := suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    suite.f.project.ID,
		Title:        "enabled",
		TicketTypeID: "story",
		CreatorID:    suite.f.user.ID,
	})
	suite.Require().NoError(err)
	suite.Equal("story", ticket.TicketTypeID)
}

func (suite *TicketServiceTestSuite) TestUpdateTicket() {
	ticket := suite.f.createTicket(suite.T(), "before")
	title := "after"
	points := 5
	assignee := suite.f.user.ID

	updated, err := suite.f.tickets.UpdateTicket(ticket.ID, UpdateTicketInput{
		Title:       &title,
		StoryPoints: &points,
		AssigneeID:  &assignee,
	}, suite.f.user.ID)
	suite.Require().NoError(err)
	suite.Equal("after", updated.Title)
	suite.Equal(5, updated.StoryPoints)
	suite.Equal(suite.f.user.ID, updated.UserID)
	suite.Equal(statusA, updated.TicketStatusID)
	suite.GreaterOrEqual(updated.Modified, updated.Created)

	negative := -1
	_, err = suite.f.tickets.UpdateTicket(ticket.ID, UpdateTicketInput{StoryPoints: &negative}, "")
	suite.True(apierrors.IsValidation(err))

	stranger := "nobody"
	_, err = suite.f.tickets.UpdateTicket(ticket.ID, UpdateTicketInput{AssigneeID: &stranger}, "")
	suite.True(apierrors.IsNotFound(err))
}

func (suite *TicketServiceTestSuite) TestPriorityAndResolutionMustBeLive() {
	suite.Require().NoError(repository.NewStore[models.Priority](suite.f.db).Create(&models.Priority{
		Base: models.Base{ID: "priority-high"}, Title: "High", Level: 4,
	}))
	suite.Require().NoError(repository.NewStore[models.Resolution](suite.f.db).Create(&models.Resolution{
		Base: models.Base{ID: "resolution-fixed"}, Title: "Fixed",
	}))

	_, err := suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    suite.f.project.ID,
		Title:        "ranked",
		TicketTypeID: "bug",
		CreatorID:    suite.f.user.ID,
		PriorityID:   "priority-none",
	})
	suite.True(apierrors.IsNotFound(err), "got %v", err)

	ticket, err := suite.f.tickets.CreateTicket(CreateTicketInput{
		ProjectID:    suite.f.project.ID,
		Title:        "ranked",
		TicketTypeID: "bug",
		CreatorID:    suite.f.user.ID,
		PriorityID:   "priority-high",
	})
	suite.Require().NoError(err)
	suite.Equal("priority-high", ticket.PriorityID)

	resolution := "resolution-fixed"
	cleared := ""
	updated, err := suite.f.tickets.UpdateTicket(ticket.ID, UpdateTicketInput{
		ResolutionID: &resolution,
		PriorityID:   &cleared,
	}, "")
	suite.Require().NoError(err)
	suite.Equal("resolution-fixed", updated.ResolutionID)
	suite.Empty(updated.PriorityID)

	unknown := "resolution-unknown"
	_, err = suite.f.tickets.UpdateTicket(ticket.ID, UpdateTicketInput{ResolutionID: &unknown}, "")
	suite.True(apierrors.IsNotFound(err), "got %v", err)
}

func (suite *TicketServiceTestSuite) TestUpdateTicket_KeepsConcurrentTransition() {
	ticket := suite.f.createTicket(suite.T(), "race")
	_, err := suite.f.workflows.Transition(ticket, statusB, "")
	suite.Require().NoError(err)

	title := "renamed from a stale read"
	updated, err := suite.f.tickets.UpdateTicket(ticket.ID, UpdateTicketInput{Title: &title}, "")
	suite.Require().NoError(err)
	suite.Equal(statusB, updated.TicketStatusID)
}

func (suite *TicketServiceTestSuite) TestDeleteTicket() {
	ticket := suite.f.createTicket(suite.T(), "doomed")

	suite.Require().NoError(suite.f.tickets.DeleteTicket(ticket.ID, ""))
	suite.True(apierrors.IsNotFound(suite.f.tickets.DeleteTicket(ticket.ID, "")))

	stored, err := suite.f.tickets.GetTicket(ticket.ID)
	suite.Require().NoError(err)
	suite.True(stored.Deleted)

	title := "zombie"
	_, err = suite.f.tickets.UpdateTicket(ticket.ID, UpdateTicketInput{Title: &title}, "")
	suite.True(apierrors.IsNotFound(err))

	tickets, total, err := suite.f.tickets.ListTickets(ListTicketsInput{ProjectID: suite.f.project.ID})
	suite.Require().NoError(err)
	suite.Empty(tickets)
	suite.Zero(total)
}

func (suite *TicketServiceTestSuite) TestRelationships() {
	parent := suite.f.createTicket(suite.T(), "epic")
	child := suite.f.createTicket(suite.T(), "story")
	grandchild := suite.f.createTicket(suite.T(), "task")

	edge := RelationshipInput{TicketID: parent.ID, ChildTicketID: child.ID, TypeID: models.RelationshipTypeParentChild}
	first, err := suite.f.tickets.AddRelationship(edge)
	suite.Require().NoError(err)
	again, err := suite.f.tickets.AddRelationship(edge)
	suite.Require().NoError(err)
	suite.Equal(first.ID, again.ID)

	_, err = suite.f.tickets.AddRelationship(RelationshipInput{
		TicketID: child.ID, ChildTicketID: grandchild.ID, TypeID: models.RelationshipTypeParentChild,
	})
	suite.Require().NoError(err)

	// grandchild -> epic would close a loop
	_, err = suite.f.tickets.AddRelationship(RelationshipInput{
		TicketID: grandchild.ID, ChildTicketID: parent.ID, TypeID: models.RelationshipTypeParentChild,
	})
	suite.True(apierrors.IsValidation(err), "got %v", err)

	// non-hierarchical edges may point backwards
	_, err = suite.f.tickets.AddRelationship(RelationshipInput{
		TicketID: grandchild.ID, ChildTicketID: parent.ID, TypeID: models.RelationshipTypeBlocks,
	})
	suite.Require().NoError(err)

	children, err := suite.f.tickets.Children(parent.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{child.ID}, children)

	rels, err := suite.f.tickets.ListRelationships(parent.ID)
	suite.Require().NoError(err)
	suite.Len(rels, 2)

	suite.Require().NoError(suite.f.tickets.RemoveRelationship(edge))
	suite.True(apierrors.IsNotFound(suite.f.tickets.RemoveRelationship(edge)))

	children, err = suite.f.tickets.Children(parent.ID)
	suite.Require().NoError(err)
	suite.Empty(children)
}

func (suite *TicketServiceTestSuite) TestRelationships_ConcurrentInverseEdgesStayAcyclic() {
	a := suite.f.createTicket(suite.T(), "a")
	b := suite.f.createTicket(suite.T(), "b")

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		parents = map[string]bool{}
		cycles  int
		errs    []error
	)
	for i := 0; i < callers; i++ {
		edge := RelationshipInput{TicketID: a.ID, ChildTicketID: b.ID, TypeID: models.RelationshipTypeParentChild}
		if i%2 == 1 {
			edge.TicketID, edge.ChildTicketID = b.ID, a.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			rel, err := suite.f.tickets.AddRelationship(edge)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				parents[rel.TicketID] = true
			case apierrors.IsValidation(err):
				cycles++
			default:
				errs = append(errs, err)
			}
		}()
	}
	wg.Wait()

	suite.Empty(errs)
	suite.Len(parents, 1, "only one direction may win")
	suite.Equal(callers/2, cycles)

	var live int64
	suite.Require().NoError(suite.f.db.Model(&models.TicketRelationship{}).Where("deleted = ?", false).Count(&live).Error)
	suite.EqualValues(1, live)
}

func (suite *TicketServiceTestSuite) TestGenerateTickets_NotConfigured() {
	_, err := suite.f.tickets.GenerateTickets(context.Background(), GenerateTicketsInput{Text: "anything"})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)
}

func TestTicketServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TicketServiceTestSuite))
}

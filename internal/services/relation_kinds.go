package services

import (
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
)

// Relation kind names exposed through /api/relations/:kind
const (
	KindUserTeams            = "user_teams"
	KindTeamUsers            = "team_users"
	KindTeamProjects         = "team_projects"
	KindProjectTeams         = "project_teams"
	KindTeamOrganizations    = "team_organizations"
	KindOrganizationTeams    = "organization_teams"
	KindUserOrganizations    = "user_organizations"
	KindOrganizationUsers    = "organization_users"
	KindTicketCycles         = "ticket_cycles"
	KindCycleTickets         = "cycle_tickets"
	KindCycleProjects        = "cycle_projects"
	KindProjectCycles        = "project_cycles"
	KindTicketLabels         = "ticket_labels"
	KindLabelTickets         = "label_tickets"
	KindProjectLabels        = "project_labels"
	KindTeamLabels           = "team_labels"
	KindLabelCategories      = "label_categories"
	KindTicketAssets         = "ticket_assets"
	KindProjectAssets        = "project_assets"
	KindTeamAssets           = "team_assets"
	KindCommentAssets        = "comment_assets"
	KindTicketComments       = "ticket_comments"
	KindTicketDocuments      = "ticket_documents"
	KindProjectDocuments     = "project_documents"
	KindRepositoryProjects   = "repository_projects"
	KindProjectRepositories  = "project_repositories"
	KindProjectTicketTypes   = "project_ticket_types"
	KindOrganizationAccounts = "organization_accounts"
)

func registerDefaultKinds(s *RelationService) {
	userTeams := repository.LinkKind[models.UserTeamMapping, *models.UserTeamMapping]{
		Name: KindUserTeams, SourceEntity: models.EntityUser, TargetEntity: models.EntityTeam,
		SourceColumn: "user_id", TargetColumn: "team_id",
		SourceModel: &models.User{}, TargetModel: &models.Team{},
		New: func(userID, teamID string) *models.UserTeamMapping {
			return &models.UserTeamMapping{UserID: userID, TeamID: teamID}
		},
		Endpoints: func(m *models.UserTeamMapping) (string, string) { return m.UserID, m.TeamID },
	}
	Register(s, userTeams)
	Register(s, userTeams.Reverse(KindTeamUsers))

	teamProjects := repository.LinkKind[models.TeamProjectMapping, *models.TeamProjectMapping]{
		Name: KindTeamProjects, SourceEntity: models.EntityTeam, TargetEntity: models.EntityProject,
		SourceColumn: "team_id", TargetColumn: "project_id",
		SourceModel: &models.Team{}, TargetModel: &models.Project{},
		New: func(teamID, projectID string) *models.TeamProjectMapping {
			return &models.TeamProjectMapping{TeamID: teamID, ProjectID: projectID}
		},
		Endpoints: func(m *models.TeamProjectMapping) (string, string) { return m.TeamID, m.ProjectID },
	}
	Register(s, teamProjects)
	Register(s, teamProjects.Reverse(KindProjectTeams))

	teamOrgs := repository.LinkKind[models.TeamOrganizationMapping, *models.TeamOrganizationMapping]{
		Name: KindTeamOrganizations, SourceEntity: models.EntityTeam, TargetEntity: models.EntityOrganization,
		SourceColumn: "team_id", TargetColumn: "organization_id",
		SourceModel: &models.Team{}, TargetModel: &models.Organization{},
		New: func(teamID, orgID string) *models.TeamOrganizationMapping {
			return &models.TeamOrganizationMapping{TeamID: teamID, OrganizationID: orgID}
		},
		Endpoints: func(m *models.TeamOrganizationMapping) (string, string) { return m.TeamID, m.OrganizationID },
	}
	Register(s, teamOrgs)
	Register(s, teamOrgs.Reverse(KindOrganizationTeams))

	userOrgs := repository.LinkKind[models.UserOrganizationMapping, *models.UserOrganizationMapping]{
		Name: KindUserOrganizations, SourceEntity: models.EntityUser, TargetEntity: models.EntityOrganization,
		SourceColumn: "user_id", TargetColumn: "organization_id",
		SourceModel: &models.User{}, TargetModel: &models.Organization{},
		New: func(userID, orgID string) *models.UserOrganizationMapping {
			return &models.UserOrganizationMapping{UserID: userID, OrganizationID: orgID}
		},
		Endpoints: func(m *models.UserOrganizationMapping) (string, string) { return m.UserID, m.OrganizationID },
	}
	Register(s, userOrgs)
	Register(s, userOrgs.Reverse(KindOrganizationUsers))

	Register(s, repository.LinkKind[models.OrganizationAccountMapping, *models.OrganizationAccountMapping]{
		Name: KindOrganizationAccounts, SourceEntity: models.EntityOrganization, TargetEntity: models.EntityAccount,
		SourceColumn: "organization_id", TargetColumn: "account_id",
		SourceModel: &models.Organization{}, TargetModel: &models.Account{},
		New: func(orgID, accountID string) *models.OrganizationAccountMapping {
			return &models.OrganizationAccountMapping{OrganizationID: orgID, AccountID: accountID}
		},
		Endpoints: func(m *models.OrganizationAccountMapping) (string, string) { return m.OrganizationID, m.AccountID },
	})

	ticketCycles := repository.LinkKind[models.TicketCycleMapping, *models.TicketCycleMapping]{
		Name: KindTicketCycles, SourceEntity: models.EntityTicket, TargetEntity: models.EntityCycle,
		SourceColumn: "ticket_id", TargetColumn: "cycle_id",
		SourceModel: &models.Ticket{}, TargetModel: &models.Cycle{},
		New: func(ticketID, cycleID string) *models.TicketCycleMapping {
			return &models.TicketCycleMapping{TicketID: ticketID, CycleID: cycleID}
		},
		Endpoints: func(m *models.TicketCycleMapping) (string, string) { return m.TicketID, m.CycleID },
	}
	Register(s, ticketCycles)
	Register(s, ticketCycles.Reverse(KindCycleTickets))

	cycleProjects := repository.LinkKind[models.CycleProjectMapping, *models.CycleProjectMapping]{
		Name: KindCycleProjects, SourceEntity: models.EntityCycle, TargetEntity: models.EntityProject,
		SourceColumn: "cycle_id", TargetColumn: "project_id",
		SourceModel: &models.Cycle{}, TargetModel: &models.Project{},
		New: func(cycleID, projectID string) *models.CycleProjectMapping {
			return &models.CycleProjectMapping{CycleID: cycleID, ProjectID: projectID}
		},
		Endpoints: func(m *models.CycleProjectMapping) (string, string) { return m.CycleID, m.ProjectID },
	}
	Register(s, cycleProjects)
	Register(s, cycleProjects.Reverse(KindProjectCycles))

	ticketLabels := repository.LinkKind[models.LabelTicketMapping, *models.LabelTicketMapping]{
		Name: KindTicketLabels, SourceEntity: models.EntityTicket, TargetEntity: models.EntityLabel,
		SourceColumn: "ticket_id", TargetColumn: "label_id",
		SourceModel: &models.Ticket{}, TargetModel: &models.Label{},
		New: func(ticketID, labelID string) *models.LabelTicketMapping {
			return &models.LabelTicketMapping{TicketID: ticketID, LabelID: labelID}
		},
		Endpoints: func(m *models.LabelTicketMapping) (string, string) { return m.TicketID, m.LabelID },
	}
	Register(s, ticketLabels)
	Register(s, ticketLabels.Reverse(KindLabelTickets))

	Register(s, repository.LinkKind[models.LabelProjectMapping, *models.LabelProjectMapping]{
		Name: KindProjectLabels, SourceEntity: models.EntityProject, TargetEntity: models.EntityLabel,
		SourceColumn: "project_id", TargetColumn: "label_id",
		SourceModel: &models.Project{}, TargetModel: &models.Label{},
		New: func(projectID, labelID string) *models.LabelProjectMapping {
			return &models.LabelProjectMapping{ProjectID: projectID, LabelID: labelID}
		},
		Endpoints: func(m *models.LabelProjectMapping) (string, string) { return m.ProjectID, m.LabelID },
	})

	Register(s, repository.LinkKind[models.LabelTeamMapping, *models.LabelTeamMapping]{
		Name: KindTeamLabels, SourceEntity: models.EntityTeam, TargetEntity: models.EntityLabel,
		SourceColumn: "team_id", TargetColumn: "label_id",
		SourceModel: &models.Team{}, TargetModel: &models.Label{},
		New: func(teamID, labelID string) *models.LabelTeamMapping {
			return &models.LabelTeamMapping{TeamID: teamID, LabelID: labelID}
		},
		Endpoints: func(m *models.LabelTeamMapping) (string, string) { return m.TeamID, m.LabelID },
	})

	Register(s, repository.LinkKind[models.LabelLabelCategoryMapping, *models.LabelLabelCategoryMapping]{
		Name: KindLabelCategories, SourceEntity: models.EntityLabel, TargetEntity: models.EntityLabelCategory,
		SourceColumn: "label_id", TargetColumn: "label_category_id",
		SourceModel: &models.Label{}, TargetModel: &models.LabelCategory{},
		New: func(labelID, categoryID string) *models.LabelLabelCategoryMapping {
			return &models.LabelLabelCategoryMapping{LabelID: labelID, LabelCategoryID: categoryID}
		},
		Endpoints: func(m *models.LabelLabelCategoryMapping) (string, string) { return m.LabelID, m.LabelCategoryID },
	})

	Register(s, repository.LinkKind[models.AssetTicketMapping, *models.AssetTicketMapping]{
		Name: KindTicketAssets, SourceEntity: models.EntityTicket, TargetEntity: models.EntityAsset,
		SourceColumn: "ticket_id", TargetColumn: "asset_id",
		SourceModel: &models.Ticket{}, TargetModel: &models.Asset{},
		New: func(ticketID, assetID string) *models.AssetTicketMapping {
			return &models.AssetTicketMapping{TicketID: ticketID, AssetID: assetID}
		},
		Endpoints: func(m *models.AssetTicketMapping) (string, string) { return m.TicketID, m.AssetID },
	})

	Register(s, repository.LinkKind[models.AssetProjectMapping, *models.AssetProjectMapping]{
		Name: KindProjectAssets, SourceEntity: models.EntityProject, TargetEntity: models.EntityAsset,
		SourceColumn: "project_id", TargetColumn: "asset_id",
		SourceModel: &models.Project{}, TargetModel: &models.Asset{},
		New: func(projectID, assetID string) *models.AssetProjectMapping {
			return &models.AssetProjectMapping{ProjectID: projectID, AssetID: assetID}
		},
		Endpoints: func(m *models.AssetProjectMapping) (string, string) { return m.ProjectID, m.AssetID },
	})

	Register(s, repository.LinkKind[models.AssetTeamMapping, *models.AssetTeamMapping]{
		Name: KindTeamAssets, SourceEntity: models.EntityTeam, TargetEntity: models.EntityAsset,
		SourceColumn: "team_id", TargetColumn: "asset_id",
		SourceModel: &models.Team{}, TargetModel: &models.Asset{},
		New: func(teamID, assetID string) *models.AssetTeamMapping {
			return &models.AssetTeamMapping{TeamID: teamID, AssetID: assetID}
		},
		Endpoints: func(m *models.AssetTeamMapping) (string, string) { return m.TeamID, m.AssetID },
	})

	Register(s, repository.LinkKind[models.AssetCommentMapping, *models.AssetCommentMapping]{
		Name: KindCommentAssets, SourceEntity: models.EntityComment, TargetEntity: models.EntityAsset,
		SourceColumn: "comment_id", TargetColumn: "asset_id",
		SourceModel: &models.Comment{}, TargetModel: &models.Asset{},
		New: func(commentID, assetID string) *models.AssetCommentMapping {
			return &models.AssetCommentMapping{CommentID: commentID, AssetID: assetID}
		},
		Endpoints: func(m *models.AssetCommentMapping) (string, string) { return m.CommentID, m.AssetID },
	})

	Register(s, repository.LinkKind[models.CommentTicketMapping, *models.CommentTicketMapping]{
		Name: KindTicketComments, SourceEntity: models.EntityTicket, TargetEntity: models.EntityComment,
		SourceColumn: "ticket_id", TargetColumn: "comment_id",
		SourceModel: &models.Ticket{}, TargetModel: &models.Comment{},
		New: func(ticketID, commentID string) *models.CommentTicketMapping {
			return &models.CommentTicketMapping{TicketID: ticketID, CommentID: commentID}
		},
		Endpoints: func(m *models.CommentTicketMapping) (string, string) { return m.TicketID, m.CommentID },
	})

	Register(s, repository.LinkKind[models.DocumentTicketMapping, *models.DocumentTicketMapping]{
		Name: KindTicketDocuments, SourceEntity: models.EntityTicket, TargetEntity: models.EntityDocument,
		SourceColumn: "ticket_id", TargetColumn: "document_id",
		SourceModel: &models.Ticket{}, TargetModel: &models.Document{},
		New: func(ticketID, documentID string) *models.DocumentTicketMapping {
			return &models.DocumentTicketMapping{TicketID: ticketID, DocumentID: documentID}
		},
		Endpoints: func(m *models.DocumentTicketMapping) (string, string) { return m.TicketID, m.DocumentID },
	})

	Register(s, repository.LinkKind[models.DocumentProjectMapping, *models.DocumentProjectMapping]{
		Name: KindProjectDocuments, SourceEntity: models.EntityProject, TargetEntity: models.EntityDocument,
		SourceColumn: "project_id", TargetColumn: "document_id",
		SourceModel: &models.Project{}, TargetModel: &models.Document{},
		New: func(projectID, documentID string) *models.DocumentProjectMapping {
			return &models.DocumentProjectMapping{ProjectID: projectID, DocumentID: documentID}
		},
		Endpoints: func(m *models.DocumentProjectMapping) (string, string) { return m.ProjectID, m.DocumentID },
	})

	repoProjects := repository.LinkKind[models.RepositoryProjectMapping, *models.RepositoryProjectMapping]{
		Name: KindRepositoryProjects, SourceEntity: models.EntityRepository, TargetEntity: models.EntityProject,
		SourceColumn: "repository_id", TargetColumn: "project_id",
		SourceModel: &models.Repository{}, TargetModel: &models.Project{},
		New: func(repositoryID, projectID string) *models.RepositoryProjectMapping {
			return &models.RepositoryProjectMapping{RepositoryID: repositoryID, ProjectID: projectID}
		},
		Endpoints: func(m *models.RepositoryProjectMapping) (string, string) { return m.RepositoryID, m.ProjectID },
	}
	Register(s, repoProjects)
	Register(s, repoProjects.Reverse(KindProjectRepositories))

	Register(s, repository.LinkKind[models.TicketTypeProjectMapping, *models.TicketTypeProjectMapping]{
		Name: KindProjectTicketTypes, SourceEntity: models.EntityProject, TargetEntity: models.EntityTicketType,
		SourceColumn: "project_id", TargetColumn: "ticket_type_id",
		SourceModel: &models.Project{}, TargetModel: &models.TicketType{},
		New: func(projectID, typeID string) *models.TicketTypeProjectMapping {
			return &models.TicketTypeProjectMapping{ProjectID: projectID, TicketTypeID: typeID}
		},
		Endpoints: func(m *models.TicketTypeProjectMapping) (string, string) { return m.ProjectID, m.TicketTypeID },
	})
}

package repository

import (
	"github.com/helixtrack/core/internal/models"
)

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// Create assigns the next per-project ticket number and inserts the ticket
	Create(ticket *models.Ticket) error

	// FindByID finds a ticket by ID, tombstones included
	FindByID(id string) (*models.Ticket, error)

	// List retrieves live tickets with filtering and pagination
	List(filter TicketFilter) ([]models.Ticket, int64, error)

	// Update writes back the editable fields. Status, number and project are never touched.
	Update(ticket *models.Ticket) error

	// CompareAndSwapStatus moves a live ticket from expected to target.
	// It reports false when the ticket is no longer in expected.
	CompareAndSwapStatus(id, expected, target string, modified int64) (bool, error)

	// CreateRelationship inserts an edge unless a live identical one exists.
	// Hierarchical edges are rejected when they would close a cycle.
	CreateRelationship(rel *models.TicketRelationship) (*models.TicketRelationship, error)

	// DeleteRelationship tombstones the live edges between two tickets of one type
	DeleteRelationship(ticketID, childTicketID, typeID string) (int64, error)

	// ListRelationships lists live edges touching the ticket in either direction
	ListRelationships(ticketID string) ([]models.TicketRelationship, error)

	// ChildIDs lists the direct children of a ticket under hierarchical relationship types
	ChildIDs(ticketID string) ([]string, error)
}

// TicketFilter holds filtering options for listing tickets
type TicketFilter struct {
	ProjectID  string
	StatusID   string
	AssigneeID string
	Page       int
	PageSize   int
}

// WorkflowRepository defines the interface for workflow data access
type WorkflowRepository interface {
	// CreateWithSteps inserts a workflow and its steps atomically.
	// validate runs inside the transaction before anything is written.
	CreateWithSteps(workflow *models.Workflow, steps []*models.WorkflowStep, validate func([]models.WorkflowStep) error) error

	// FindByID finds a live workflow
	FindByID(id string) (*models.Workflow, error)

	// ListSteps lists the live steps of a workflow
	ListSteps(workflowID string) ([]models.WorkflowStep, error)

	// AddStep inserts a step, optionally splicing it after an existing one.
	// validate sees the resulting step set before the transaction commits.
	AddStep(step *models.WorkflowStep, afterStepID string, validate func([]models.WorkflowStep) error) error

	// ActiveStatusIDs returns the subset of ids that are live ticket statuses
	ActiveStatusIDs(ids []string) (map[string]bool, error)

	// FindProject finds a live project
	FindProject(id string) (*models.Project, error)

	// BindProject points a live project at a workflow. covers is asked about the
	// status of every live ticket in the project; any status it rejects aborts the bind.
	BindProject(projectID, workflowID string, covers func(statusID string) bool) error
}

// PermissionRepository defines the interface for permission data access
type PermissionRepository interface {
	// UserGrants lists live grants of the user inside the context
	UserGrants(userID, contextID string) ([]models.PermissionUserMapping, error)

	// Memberships lists live team memberships of the user
	Memberships(userID string) ([]models.UserTeamMapping, error)

	// TeamGrants lists live grants of the teams inside the context
	TeamGrants(teamIDs []string, contextID string) ([]models.PermissionTeamMapping, error)

	// GrantUser inserts a user grant unless a live one exists
	GrantUser(permissionID, userID, contextID string) (*models.PermissionUserMapping, bool, error)

	// RevokeUser tombstones a live user grant
	RevokeUser(permissionID, userID, contextID string) (int64, error)

	// GrantTeam inserts a team grant unless a live one exists
	GrantTeam(permissionID, teamID, contextID string) (*models.PermissionTeamMapping, bool, error)

	// RevokeTeam tombstones a live team grant
	RevokeTeam(permissionID, teamID, contextID string) (int64, error)

	// RoleAssignments lists live role assignments of the user inside the project
	RoleAssignments(userID, projectID string) ([]models.ProjectRoleUserMapping, error)

	// Roles loads live roles by id
	Roles(roleIDs []string) ([]models.ProjectRole, error)

	// AssignRole inserts a role assignment unless a live one exists
	AssignRole(roleID, projectID, userID string) (*models.ProjectRoleUserMapping, bool, error)

	// UnassignRole tombstones a live role assignment
	UnassignRole(roleID, projectID, userID string) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithPersonalOrganization creates a user, their personal organization,
	// and corresponding membership within a single transaction.
	CreateWithPersonalOrganization(user *models.User, org *models.Organization, member *models.UserOrganizationMapping) error

	// FindByID finds a live user by ID
	FindByID(id string) (*models.User, error)

	// FindByUsername finds a live user by username
	FindByUsername(username string) (*models.User, error)

	// Update writes back password hash, email and name of a live user
	Update(user *models.User) error
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	// Create appends a record
	Create(record *models.Audit) error

	// ListForEntity lists records of one entity, oldest first
	ListForEntity(entity, entityID string) ([]models.Audit, error)
}

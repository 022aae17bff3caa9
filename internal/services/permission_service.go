package services

import (
	"fmt"
	"sort"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// PermissionSnapshot holds the mapping rows that decide one user's permissions.
type PermissionSnapshot struct {
	UserGrants      []models.PermissionUserMapping
	Memberships     []models.UserTeamMapping
	TeamGrants      []models.PermissionTeamMapping
	RoleAssignments []models.ProjectRoleUserMapping
	Roles           []models.ProjectRole
}

// EffectivePermissions is the sorted union of the user's direct grants in the context,
// the grants of every team the user belongs to and the permissions of the project
// roles the user holds there. Tombstoned rows never count.
func EffectivePermissions(snapshot PermissionSnapshot, userID, contextID string) []string {
	granted := make(map[string]bool)

	for _, g := range snapshot.UserGrants {
		if !g.Deleted && g.UserID == userID && g.PermissionContextID == contextID {
			granted[g.PermissionID] = true
		}
	}

	teams := make(map[string]bool)
	for _, m := range snapshot.Memberships {
		if !m.Deleted && m.UserID == userID {
			teams[m.TeamID] = true
		}
	}
	for _, g := range snapshot.TeamGrants {
		if !g.Deleted && teams[g.TeamID] && g.PermissionContextID == contextID {
			granted[g.PermissionID] = true
		}
	}

	roles := make(map[string]models.ProjectRole, len(snapshot.Roles))
	for _, r := range snapshot.Roles {
		if !r.Deleted {
			roles[r.ID] = r
		}
	}
	for _, a := range snapshot.RoleAssignments {
		if a.Deleted || a.UserID != userID || a.ProjectID != contextID {
			continue
		}
		if role, ok := roles[a.ProjectRoleID]; ok && role.AppliesTo(contextID) {
			granted[role.PermissionID] = true
		}
	}

	out := make([]string, 0, len(granted))
	for id := range granted {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PermissionService resolves and edits context-scoped grants.
type PermissionService struct {
	permissionRepo repository.PermissionRepository
	permissions    *repository.Store[models.Permission, *models.Permission]
	audit          *AuditService
	locks          *keyedMutex
	log            zerolog.Logger
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(db *gorm.DB, permissionRepo repository.PermissionRepository, audit *AuditService, log zerolog.Logger) *PermissionService {
	return &PermissionService{
		permissionRepo: permissionRepo,
		permissions:    repository.NewStore[models.Permission](db),
		audit:          audit,
		locks:          newKeyedMutex(),
		log:            log,
	}
}

// Snapshot loads the rows EffectivePermissions needs for the user in the context
func (s *PermissionService) Snapshot(userID, contextID string) (PermissionSnapshot, error) {
	var snap PermissionSnapshot
	var err error

	if snap.UserGrants, err = s.permissionRepo.UserGrants(userID, contextID); err != nil {
		return snap, fmt.Errorf("failed to load user grants: %w", err)
	}
	if snap.Memberships, err = s.permissionRepo.Memberships(userID); err != nil {
		return snap, fmt.Errorf("failed to load team memberships: %w", err)
	}
	teamIDs := make([]string, 0, len(snap.Memberships))
	for _, m := range snap.Memberships {
		teamIDs = append(teamIDs, m.TeamID)
	}
	if snap.TeamGrants, err = s.permissionRepo.TeamGrants(teamIDs, contextID); err != nil {
		return snap, fmt.Errorf("failed to load team grants: %w", err)
	}
	if snap.RoleAssignments, err = s.permissionRepo.RoleAssignments(userID, contextID); err != nil {
		return snap, fmt.Errorf("failed to load role assignments: %w", err)
	}
	roleIDs := make([]string, 0, len(snap.RoleAssignments))
	for _, a := range snap.RoleAssignments {
		roleIDs = append(roleIDs, a.ProjectRoleID)
	}
	if snap.Roles, err = s.permissionRepo.Roles(roleIDs); err != nil {
		return snap, fmt.Errorf("failed to load project roles: %w", err)
	}
	return snap, nil
}

// EffectivePermissions returns the permission ids the user holds in the context
func (s *PermissionService) EffectivePermissions(userID, contextID string) ([]string, error) {
	if err := validateScope(userID, contextID); err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(userID, contextID)
	if err != nil {
		return nil, err
	}
	return EffectivePermissions(snap, userID, contextID), nil
}

// HasPermission reports whether the user holds permissionID in the context
func (s *PermissionService) HasPermission(userID, contextID, permissionID string) (bool, error) {
	if permissionID == "" {
		return false, apierrors.NewValidationError(models.EntityPermission, "permission_id", "must not be empty")
	}
	granted, err := s.EffectivePermissions(userID, contextID)
	if err != nil {
		return false, err
	}
	for _, id := range granted {
		if id == permissionID {
			return true, nil
		}
	}
	return false, nil
}

// HasAccessLevel reports whether any permission the user holds in the context
// carries a value of at least level (read 1, create 2, update 3, delete 5).
func (s *PermissionService) HasAccessLevel(userID, contextID string, level int) (bool, error) {
	if !models.IsValidPermissionValue(level) {
		return false, apierrors.NewValidationError(models.EntityPermission, "value", "unknown access level")
	}
	granted, err := s.EffectivePermissions(userID, contextID)
	if err != nil {
		return false, err
	}
	for _, id := range granted {
		perm, err := s.permissions.FindActive(id)
		if apierrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return false, err
		}
		if perm.Value >= level {
			return true, nil
		}
	}
	return false, nil
}

// GrantUser gives the user permissionID in the context. Granting twice is a no-op.
func (s *PermissionService) GrantUser(permissionID, userID, contextID, actorID string) (*models.PermissionUserMapping, error) {
	if err := validateGrant(permissionID, userID, contextID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(grantLockKey(models.EntityUser, permissionID, userID, contextID))
	defer unlock()

	grant, created, err := s.permissionRepo.GrantUser(permissionID, userID, contextID)
	if err != nil {
		return nil, err
	}
	if created {
		s.audit.Record(models.EntityPermissionUserMapping, grant.ID, models.OperationGrant, actorID, grant)
	}
	return grant, nil
}

// RevokeUser removes the user's grant of permissionID in the context
func (s *PermissionService) RevokeUser(permissionID, userID, contextID, actorID string) error {
	if err := validateGrant(permissionID, userID, contextID); err != nil {
		return err
	}
	unlock := s.locks.Lock(grantLockKey(models.EntityUser, permissionID, userID, contextID))
	defer unlock()

	if _, err := s.permissionRepo.RevokeUser(permissionID, userID, contextID); err != nil {
		return err
	}
	s.audit.Record(models.EntityPermissionUserMapping, userID, models.OperationRevoke, actorID, map[string]string{
		"permission_id": permissionID,
		"context_id":    contextID,
	})
	return nil
}

// GrantTeam gives every member of the team permissionID in the context
func (s *PermissionService) GrantTeam(permissionID, teamID, contextID, actorID string) (*models.PermissionTeamMapping, error) {
	if err := validateGrant(permissionID, teamID, contextID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(grantLockKey(models.EntityTeam, permissionID, teamID, contextID))
	defer unlock()

	grant, created, err := s.permissionRepo.GrantTeam(permissionID, teamID, contextID)
	if err != nil {
		return nil, err
	}
	if created {
		s.audit.Record(models.EntityPermissionTeamMapping, grant.ID, models.OperationGrant, actorID, grant)
	}
	return grant, nil
}

// RevokeTeam removes the team's grant of permissionID in the context
func (s *PermissionService) RevokeTeam(permissionID, teamID, contextID, actorID string) error {
	if err := validateGrant(permissionID, teamID, contextID); err != nil {
		return err
	}
	unlock := s.locks.Lock(grantLockKey(models.EntityTeam, permissionID, teamID, contextID))
	defer unlock()

	if _, err := s.permissionRepo.RevokeTeam(permissionID, teamID, contextID); err != nil {
		return err
	}
	s.audit.Record(models.EntityPermissionTeamMapping, teamID, models.OperationRevoke, actorID, map[string]string{
		"permission_id": permissionID,
		"context_id":    contextID,
	})
	return nil
}

// AssignRole gives the user roleID inside the project. Assigning twice is a no-op.
func (s *PermissionService) AssignRole(roleID, projectID, userID, actorID string) (*models.ProjectRoleUserMapping, error) {
	if err := validateAssignment(roleID, projectID, userID); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(grantLockKey(models.EntityProjectRole, roleID, userID, projectID))
	defer unlock()

	assignment, created, err := s.permissionRepo.AssignRole(roleID, projectID, userID)
	if err != nil {
		return nil, err
	}
	if created {
		s.audit.Record(models.EntityProjectRoleUserMapping, assignment.ID, models.OperationGrant, actorID, assignment)
	}
	return assignment, nil
}

// UnassignRole takes roleID away from the user inside the project
func (s *PermissionService) UnassignRole(roleID, projectID, userID, actorID string) error {
	if err := validateAssignment(roleID, projectID, userID); err != nil {
		return err
	}
	unlock := s.locks.Lock(grantLockKey(models.EntityProjectRole, roleID, userID, projectID))
	defer unlock()

	if _, err := s.permissionRepo.UnassignRole(roleID, projectID, userID); err != nil {
		return err
	}
	s.audit.Record(models.EntityProjectRoleUserMapping, userID, models.OperationRevoke, actorID, map[string]string{
		"project_role_id": roleID,
		"project_id":      projectID,
	})
	return nil
}

// grantLockKey names one (holder, permission, context) triple
func grantLockKey(holderEntity, permissionID, holderID, contextID string) string {
	return holderEntity + "|" + holderID + "|" + permissionID + "|" + contextID
}

func validateScope(userID, contextID string) error {
	if userID == "" {
		return apierrors.NewValidationError(models.EntityPermission, "user_id", "must not be empty")
	}
	if contextID == "" {
		return apierrors.NewValidationError(models.EntityPermission, "permission_context_id", "must not be empty")
	}
	return nil
}

func validateGrant(permissionID, holderID, contextID string) error {
	if permissionID == "" {
		return apierrors.NewValidationError(models.EntityPermission, "permission_id", "must not be empty")
	}
	if holderID == "" {
		return apierrors.NewValidationError(models.EntityPermission, "holder_id", "must not be empty")
	}
	if contextID == "" {
		return apierrors.NewValidationError(models.EntityPermission, "permission_context_id", "must not be empty")
	}
	return nil
}

func validateAssignment(roleID, projectID, userID string) error {
	if roleID == "" {
		return apierrors.NewValidationError(models.EntityProjectRole, "project_role_id", "must not be empty")
	}
	if projectID == "" {
		return apierrors.NewValidationError(models.EntityProjectRole, "project_id", "must not be empty")
	}
	if userID == "" {
		return apierrors.NewValidationError(models.EntityProjectRole, "user_id", "must not be empty")
	}
	return nil
}

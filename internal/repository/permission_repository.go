package repository

import (
	"errors"
	"fmt"

	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"gorm.io/gorm"
)

// GormPermissionRepository is a GORM implementation of PermissionRepository
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new PermissionRepository
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &GormPermissionRepository{db: db}
}

// UserGrants lists live grants of the user inside the context
func (r *GormPermissionRepository) UserGrants(userID, contextID string) ([]models.PermissionUserMapping, error) {
	grants := []models.PermissionUserMapping{}
	err := r.db.Where("user_id = ? AND permission_context_id = ? AND deleted = ?", userID, contextID, false).
		Find(&grants).Error
	return grants, err
}

// Memberships lists live team memberships of the user
func (r *GormPermissionRepository) Memberships(userID string) ([]models.UserTeamMapping, error) {
	memberships := []models.UserTeamMapping{}
	err := r.db.Where("user_id = ? AND deleted = ?", userID, false).
		Find(&memberships).Error
	return memberships, err
}

// TeamGrants lists live grants of the teams inside the context
func (r *GormPermissionRepository) TeamGrants(teamIDs []string, contextID string) ([]models.PermissionTeamMapping, error) {
	grants := []models.PermissionTeamMapping{}
	if len(teamIDs) == 0 {
		return grants, nil
	}
	err := r.db.Where("team_id IN ? AND permission_context_id = ? AND deleted = ?", teamIDs, contextID, false).
		Find(&grants).Error
	return grants, err
}

// GrantUser inserts a user grant unless a live one exists
func (r *GormPermissionRepository) GrantUser(permissionID, userID, contextID string) (*models.PermissionUserMapping, bool, error) {
	grant := &models.PermissionUserMapping{
		PermissionID:        permissionID,
		UserID:              userID,
		PermissionContextID: contextID,
	}
	created, err := r.grant(grant, &models.User{}, models.EntityUser, "user_id", userID, permissionID, contextID)
	if err != nil {
		return nil, false, err
	}
	return grant, created, nil
}

// RevokeUser tombstones a live user grant
func (r *GormPermissionRepository) RevokeUser(permissionID, userID, contextID string) (int64, error) {
	return r.revoke(&models.PermissionUserMapping{}, "user_id", userID, permissionID, contextID)
}

// GrantTeam inserts a team grant unless a live one exists
func (r *GormPermissionRepository) GrantTeam(permissionID, teamID, contextID string) (*models.PermissionTeamMapping, bool, error) {
	grant := &models.PermissionTeamMapping{
		PermissionID:        permissionID,
		TeamID:              teamID,
		PermissionContextID: contextID,
	}
	created, err := r.grant(grant, &models.Team{}, models.EntityTeam, "team_id", teamID, permissionID, contextID)
	if err != nil {
		return nil, false, err
	}
	return grant, created, nil
}

// RevokeTeam tombstones a live team grant
func (r *GormPermissionRepository) RevokeTeam(permissionID, teamID, contextID string) (int64, error) {
	return r.revoke(&models.PermissionTeamMapping{}, "team_id", teamID, permissionID, contextID)
}

// grant fills row with the existing live grant, or inserts it.
func (r *GormPermissionRepository) grant(row models.Entity, holder interface{}, holderEntity, holderColumn, holderID, permissionID, contextID string) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireLive(tx, &models.Permission{}, models.EntityPermission, permissionID); err != nil {
			return err
		}
		// The holder row lock serializes grants across server instances
		if err := lockLive(tx, holder, holderEntity, holderID); err != nil {
			return err
		}

		err := tx.Where(holderColumn+" = ? AND permission_id = ? AND permission_context_id = ? AND deleted = ?",
			holderID, permissionID, contextID, false).
			First(row).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up %s: %w", row.EntityName(), err)
		}

		base := row.GetBase()
		base.EnsureID()
		base.Stamp(models.Now())
		if err := row.Validate(); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", row.EntityName(), err)
		}
		created = true
		return nil
	})
	return created, err
}

func (r *GormPermissionRepository) revoke(model models.Entity, holderColumn, holderID, permissionID, contextID string) (int64, error) {
	now := models.Now()
	result := r.db.Model(model).
		Where(holderColumn+" = ? AND permission_id = ? AND permission_context_id = ? AND deleted = ?",
			holderID, permissionID, contextID, false).
		Updates(map[string]interface{}{
			"deleted":  true,
			"modified": gorm.Expr("CASE WHEN created > ? THEN created ELSE ? END", now, now),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke %s: %w", model.EntityName(), result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apierrors.NewNotFoundError(model.EntityName(), permissionID+"@"+contextID)
	}
	return result.RowsAffected, nil
}

// RoleAssignments lists live role assignments of the user inside the project
func (r *GormPermissionRepository) RoleAssignments(userID, projectID string) ([]models.ProjectRoleUserMapping, error) {
	assignments := []models.ProjectRoleUserMapping{}
	err := r.db.Where("user_id = ? AND project_id = ? AND deleted = ?", userID, projectID, false).
		Find(&assignments).Error
	return assignments, err
}

// Roles loads live roles by id
func (r *GormPermissionRepository) Roles(roleIDs []string) ([]models.ProjectRole, error) {
	roles := []models.ProjectRole{}
	if len(roleIDs) == 0 {
		return roles, nil
	}
	err := r.db.Where("id IN ? AND deleted = ?", roleIDs, false).Find(&roles).Error
	return roles, err
}

// AssignRole inserts a role assignment unless a live one exists. A role bound
// to another project cannot be assigned here.
func (r *GormPermissionRepository) AssignRole(roleID, projectID, userID string) (*models.ProjectRoleUserMapping, bool, error) {
	assignment := &models.ProjectRoleUserMapping{}
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var role models.ProjectRole
		err := tx.Where("id = ? AND deleted = ?", roleID, false).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NewNotFoundError(models.EntityProjectRole, roleID)
		}
		if err != nil {
			return fmt.Errorf("failed to load project role: %w", err)
		}
		if !role.AppliesTo(projectID) {
			return &apierrors.ConflictError{
				Entity: models.EntityProjectRole,
				ID:     roleID,
				Reason: fmt.Sprintf("role belongs to project %q", role.ProjectID),
			}
		}
		if err := requireLive(tx, &models.Project{}, models.EntityProject, projectID); err != nil {
			return err
		}
		if err := lockLive(tx, &models.User{}, models.EntityUser, userID); err != nil {
			return err
		}

		err = tx.Where("project_role_id = ? AND project_id = ? AND user_id = ? AND deleted = ?",
			roleID, projectID, userID, false).
			First(assignment).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up %s: %w", models.EntityProjectRoleUserMapping, err)
		}

		assignment.ProjectRoleID = roleID
		assignment.ProjectID = projectID
		assignment.UserID = userID
		assignment.EnsureID()
		assignment.Stamp(models.Now())
		if err := assignment.Validate(); err != nil {
			return err
		}
		if err := tx.Create(assignment).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", models.EntityProjectRoleUserMapping, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return assignment, created, nil
}

// UnassignRole tombstones a live role assignment
func (r *GormPermissionRepository) UnassignRole(roleID, projectID, userID string) (int64, error) {
	now := models.Now()
	result := r.db.Model(&models.ProjectRoleUserMapping{}).
		Where("project_role_id = ? AND project_id = ? AND user_id = ? AND deleted = ?", roleID, projectID, userID, false).
		Updates(map[string]interface{}{
			"deleted":  true,
			"modified": gorm.Expr("CASE WHEN created > ? THEN created ELSE ? END", now, now),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to unassign %s: %w", models.EntityProjectRole, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apierrors.NewNotFoundError(models.EntityProjectRoleUserMapping, roleID+"@"+projectID)
	}
	return result.RowsAffected, nil
}

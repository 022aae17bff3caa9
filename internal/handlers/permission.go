package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/services"
)

// PermissionHandler serves permission lookups and grant administration
type PermissionHandler struct {
	permissionService *services.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(permissionService *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

type grantRequest struct {
	PermissionID string `json:"permission_id" binding:"required"`
	HolderID     string `json:"holder_id" binding:"required"`
	ContextID    string `json:"context_id" binding:"required"`
}

type roleRequest struct {
	RoleID    string `json:"project_role_id" binding:"required"`
	ProjectID string `json:"project_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
}

// subject returns the user_id query parameter, defaulting to the caller
func subject(c *gin.Context) string {
	if userID := c.Query("user_id"); userID != "" {
		return userID
	}
	userID, _ := middleware.GetUserID(c)
	return userID
}

// Effective lists the permission ids a user holds in a context
func (h *PermissionHandler) Effective(c *gin.Context) {
	userID := subject(c)
	contextID := c.Query("context_id")

	granted, err := h.permissionService.EffectivePermissions(userID, contextID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"context_id":  contextID,
		"permissions": granted,
	})
}

// Check reports whether a user holds one permission in a context
func (h *PermissionHandler) Check(c *gin.Context) {
	userID := subject(c)
	contextID := c.Query("context_id")
	permissionID := c.Query("permission_id")

	allowed, err := h.permissionService.HasPermission(userID, contextID, permissionID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       userID,
		"context_id":    contextID,
		"permission_id": permissionID,
		"allowed":       allowed,
	})
}

// GrantUser gives a user a permission in a context
func (h *PermissionHandler) GrantUser(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	var req grantRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	grant, err := h.permissionService.GrantUser(req.PermissionID, req.HolderID, req.ContextID, actorID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

// RevokeUser removes a user's permission in a context
func (h *PermissionHandler) RevokeUser(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	var req grantRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.permissionService.RevokeUser(req.PermissionID, req.HolderID, req.ContextID, actorID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Permission revoked successfully"})
}

// GrantTeam gives a team a permission in a context
func (h *PermissionHandler) GrantTeam(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	var req grantRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	grant, err := h.permissionService.GrantTeam(req.PermissionID, req.HolderID, req.ContextID, actorID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

// RevokeTeam removes a team's permission in a context
func (h *PermissionHandler) RevokeTeam(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	var req grantRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.permissionService.RevokeTeam(req.PermissionID, req.HolderID, req.ContextID, actorID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Permission revoked successfully"})
}

// AssignRole gives a user a project role
func (h *PermissionHandler) AssignRole(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	var req roleRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignment, err := h.permissionService.AssignRole(req.RoleID, req.ProjectID, req.UserID, actorID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// UnassignRole takes a project role away from a user
func (h *PermissionHandler) UnassignRole(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	var req roleRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.permissionService.UnassignRole(req.RoleID, req.ProjectID, req.UserID, actorID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role unassigned successfully"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/services"
)

// RelationHandler exposes every registered mapping kind under /api/relations/:kind
type RelationHandler struct {
	relationService *services.RelationService
}

func NewRelationHandler(relationService *services.RelationService) *RelationHandler {
	return &RelationHandler{relationService: relationService}
}

type linkRequest struct {
	SourceID string `json:"source_id" binding:"required"`
	TargetID string `json:"target_id" binding:"required"`
}

// ListKinds returns the names of all mapping kinds
func (h *RelationHandler) ListKinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": h.relationService.Kinds()})
}

// Link joins source and target. Linking an existing pair returns 200 instead of 201.
func (h *RelationHandler) Link(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	row, created, err := h.relationService.Link(c.Param("kind"), req.SourceID, req.TargetID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, row)
}

// Unlink removes the live link between source and target
func (h *RelationHandler) Unlink(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.relationService.Unlink(c.Param("kind"), req.SourceID, req.TargetID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unlinked successfully"})
}

// Linked lists the distinct live targets of the source
func (h *RelationHandler) Linked(c *gin.Context) {
	kind := c.Param("kind")
	source := c.Param("source")

	targets, err := h.relationService.Linked(kind, source)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"kind":    kind,
		"source":  source,
		"targets": targets,
	})
}

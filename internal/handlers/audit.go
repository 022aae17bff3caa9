package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// History returns the audit trail of one entity, oldest first
func (h *AuditHandler) History(c *gin.Context) {
	records, err := h.auditService.ListForEntity(c.Param("entity"), c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

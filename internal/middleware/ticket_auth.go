package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/constants"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/services"
)

// RequireTicket loads the ticket named by the :id parameter into the context.
// Tombstoned tickets are loaded too; handlers that mutate reject them.
func RequireTicket(tickets *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticket, err := tickets.GetTicket(c.Param("id"))
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTicket, ticket)
		c.Next()
	}
}

// GetTicket retrieves the ticket loaded by RequireTicket
func GetTicket(c *gin.Context) (*models.Ticket, bool) {
	value, exists := c.Get(constants.ContextKeyTicket)
	if !exists {
		return nil, false
	}
	ticket, ok := value.(*models.Ticket)
	return ticket, ok
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/helixtrack/core/internal/constants"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/services"
	"github.com/rs/zerolog"
)

// ContextResolver names the permission context a request acts in
type ContextResolver func(c *gin.Context) (string, bool)

// ProjectFromParam uses the :id route parameter as the project context
func ProjectFromParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	return id, id != ""
}

// ProjectFromTicket uses the project of the ticket loaded by RequireTicket
func ProjectFromTicket(c *gin.Context) (string, bool) {
	ticket, ok := GetTicket(c)
	if !ok {
		return "", false
	}
	return ticket.ProjectID, true
}

// NodeContext resolves every request to the instance-wide context
func NodeContext(*gin.Context) (string, bool) {
	return constants.NodeContextID, true
}

// BodyField reads one string field of the JSON body as the context. The body is
// cached, so the handler must bind it again with ShouldBindBodyWith.
func BodyField(name string) ContextResolver {
	return func(c *gin.Context) (string, bool) {
		var body map[string]interface{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			return "", false
		}
		value, _ := body[name].(string)
		return value, value != ""
	}
}

// ContextFromBody reads context_id from the JSON body
var ContextFromBody = BodyField("context_id")

// ProjectFromBody reads project_id from the JSON body
var ProjectFromBody = BodyField("project_id")

// PermissionGuard builds RequirePermission handlers sharing one resolver
type PermissionGuard struct {
	permissions *services.PermissionService
	enforced    bool
	log         zerolog.Logger
}

// NewPermissionGuard creates a PermissionGuard. With enforced false, or a nil guard, every check passes.
func NewPermissionGuard(permissions *services.PermissionService, enforced bool, log zerolog.Logger) *PermissionGuard {
	return &PermissionGuard{
		permissions: permissions,
		enforced:    enforced,
		log:         log,
	}
}

// RequirePermission rejects the request unless the user holds a permission of
// at least level in the context named by resolve, or in the node context.
func (g *PermissionGuard) RequirePermission(level int, resolve ContextResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if g == nil || !g.enforced {
			c.Next()
			return
		}

		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		contextID, ok := resolve(c)
		if !ok {
			apierrors.BadRequest(c, "Missing permission context")
			c.Abort()
			return
		}

		allowed, err := g.allowed(userID, contextID, level)
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}
		if !allowed {
			g.log.Debug().
				Str("user_id", userID).
				Str("context_id", contextID).
				Int("level", level).
				Msg("permission denied")
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g *PermissionGuard) allowed(userID, contextID string, level int) (bool, error) {
	ok, err := g.permissions.HasAccessLevel(userID, contextID, level)
	if err != nil || ok || contextID == constants.NodeContextID {
		return ok, err
	}
	return g.permissions.HasAccessLevel(userID, constants.NodeContextID, level)
}

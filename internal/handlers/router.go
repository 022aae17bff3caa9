package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/services"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP layer is glued onto
type Dependencies struct {
	DB          *gorm.DB
	Auth        *services.AuthService
	Tokens      *services.TokenService
	Tickets     *services.TicketService
	Workflows   *services.WorkflowService
	Relations   *services.RelationService
	Permissions *services.PermissionService
	Audit       *services.AuditService
	Guard       *middleware.PermissionGuard
}

// RegisterRoutes mounts every endpoint on r. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth, deps.Tokens)
	ticketHandler := NewTicketHandler(deps.Tickets, deps.Workflows)
	workflowHandler := NewWorkflowHandler(deps.Workflows)
	relationHandler := NewRelationHandler(deps.Relations)
	permissionHandler := NewPermissionHandler(deps.Permissions)
	catalogHandler := NewCatalogHandler(deps.DB, deps.Audit, deps.Workflows, deps.Guard)
	auditHandler := NewAuditHandler(deps.Audit)

	requireAuth := middleware.RequireAuth(deps.Tokens)
	requireTicket := middleware.RequireTicket(deps.Tickets)
	guard := deps.Guard

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Helix Track core is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.PATCH("/me", requireAuth, authHandler.UpdateCurrentUser)
			auth.PUT("/password", requireAuth, authHandler.ChangePassword)
		}

		tickets := api.Group("/tickets")
		tickets.Use(requireAuth)
		{
			tickets.GET("", ticketHandler.ListTickets)
			tickets.POST("", ticketHandler.CreateTicket)
			tickets.POST("/generate", ticketHandler.GenerateTickets)
			tickets.GET("/:id", requireTicket, ticketHandler.GetTicket)
			tickets.PATCH("/:id", requireTicket, guard.RequirePermission(models.PermissionUpdate, middleware.ProjectFromTicket), ticketHandler.UpdateTicket)
			tickets.DELETE("/:id", requireTicket, guard.RequirePermission(models.PermissionDelete, middleware.ProjectFromTicket), ticketHandler.DeleteTicket)
			tickets.POST("/:id/transition", requireTicket, guard.RequirePermission(models.PermissionUpdate, middleware.ProjectFromTicket), ticketHandler.TransitionTicket)
			tickets.GET("/:id/transitions", requireTicket, ticketHandler.ListTransitions)
			tickets.GET("/:id/relationships", requireTicket, ticketHandler.ListRelationships)
			tickets.POST("/:id/relationships", requireTicket, guard.RequirePermission(models.PermissionUpdate, middleware.ProjectFromTicket), ticketHandler.AddRelationship)
			tickets.DELETE("/:id/relationships", requireTicket, guard.RequirePermission(models.PermissionUpdate, middleware.ProjectFromTicket), ticketHandler.RemoveRelationship)
		}

		workflows := api.Group("/workflows")
		workflows.Use(requireAuth)
		{
			workflows.POST("", workflowHandler.CreateWorkflow)
			workflows.GET("/:id", workflowHandler.GetWorkflowGraph)
			workflows.POST("/:id/steps", workflowHandler.AddStep)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.PUT("/:id/workflow", guard.RequirePermission(models.PermissionUpdate, middleware.ProjectFromParam), workflowHandler.BindProject)
		}

		relations := api.Group("/relations")
		relations.Use(requireAuth)
		{
			relations.GET("", relationHandler.ListKinds)
			// Memberships feed team grants, so editing them is node administration
			relations.POST("/:kind", guard.RequirePermission(models.PermissionUpdate, middleware.NodeContext), relationHandler.Link)
			relations.DELETE("/:kind", guard.RequirePermission(models.PermissionUpdate, middleware.NodeContext), relationHandler.Unlink)
			relations.GET("/:kind/:source", relationHandler.Linked)
		}

		permissions := api.Group("/permissions")
		permissions.Use(requireAuth)
		{
			permissions.GET("/effective", permissionHandler.Effective)
			permissions.GET("/check", permissionHandler.Check)

			grants := permissions.Group("/grants")
			grants.Use(guard.RequirePermission(models.PermissionDelete, middleware.ContextFromBody))
			grants.POST("/users", permissionHandler.GrantUser)
			grants.DELETE("/users", permissionHandler.RevokeUser)
			grants.POST("/teams", permissionHandler.GrantTeam)
			grants.DELETE("/teams", permissionHandler.RevokeTeam)

			roles := permissions.Group("/roles")
			roles.Use(guard.RequirePermission(models.PermissionDelete, middleware.ProjectFromBody))
			roles.POST("", permissionHandler.AssignRole)
			roles.DELETE("", permissionHandler.UnassignRole)
		}

		catalog := api.Group("/catalog")
		catalog.Use(requireAuth)
		catalogHandler.Register(catalog)

		audit := api.Group("/audit")
		audit.Use(requireAuth)
		{
			audit.GET("/:entity/:id", auditHandler.History)
		}
	}
}

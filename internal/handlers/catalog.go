package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/dto"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/helixtrack/core/internal/services"
	"github.com/helixtrack/core/internal/utils"
	"gorm.io/gorm"
)

// catalogResource serves create/get/list/update/delete for one simple entity
type catalogResource[T any, PT interface {
	*T
	models.Entity
}] struct {
	store    *repository.Store[T, PT]
	audit    *services.AuditService
	prepare  func(row, previous PT) error
	onDelete func(id string)
	guard    catalogGuards
}

// catalogGuards are optional per-verb middleware run before the handler
type catalogGuards struct {
	create, update, remove []gin.HandlerFunc
}

func (r *catalogResource[T, PT]) create(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	row := PT(&body)
	base := row.GetBase()
	*base = models.Base{ID: base.ID}

	if r.prepare != nil {
		if err := r.prepare(row, nil); err != nil {
			apierrors.Respond(c, err)
			return
		}
	}
	if err := r.store.Create(row); err != nil {
		apierrors.Respond(c, err)
		return
	}

	r.audit.Record(row.EntityName(), base.ID, models.OperationCreate, userID, row)
	c.JSON(http.StatusCreated, row)
}

func (r *catalogResource[T, PT]) get(c *gin.Context) {
	row, err := r.store.FindByID(c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (r *catalogResource[T, PT]) list(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	rows, total, err := r.store.List(params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CatalogListResponse[T]{
		Items:      rows,
		Pagination: params.Response(total),
	})
}

func (r *catalogResource[T, PT]) update(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	row, err := r.store.FindActive(c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	previous := *row
	base := *row.GetBase()
	if err := c.ShouldBindJSON(row); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	*row.GetBase() = base

	if r.prepare != nil {
		if err := r.prepare(row, PT(&previous)); err != nil {
			apierrors.Respond(c, err)
			return
		}
	}
	if err := r.store.Save(row); err != nil {
		apierrors.Respond(c, err)
		return
	}

	r.audit.Record(row.EntityName(), base.ID, models.OperationUpdate, userID, row)
	c.JSON(http.StatusOK, row)
}

func (r *catalogResource[T, PT]) remove(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	row, err := r.store.SoftDelete(id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	if r.onDelete != nil {
		r.onDelete(id)
	}

	r.audit.Record(row.EntityName(), id, models.OperationDelete, userID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

func mount[T any, PT interface {
	*T
	models.Entity
}](group *gin.RouterGroup, path string, r *catalogResource[T, PT]) {
	g := group.Group(path)
	g.POST("", append(r.guard.create, r.create)...)
	g.GET("", r.list)
	g.GET("/:id", r.get)
	g.PUT("/:id", append(r.guard.update, r.update)...)
	g.DELETE("/:id", append(r.guard.remove, r.remove)...)
}

// CatalogHandler serves the simple entities of the catalog under /api/catalog
type CatalogHandler struct {
	db              *gorm.DB
	audit           *services.AuditService
	workflowService *services.WorkflowService
	guard           *middleware.PermissionGuard
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(db *gorm.DB, audit *services.AuditService, workflowService *services.WorkflowService, guard *middleware.PermissionGuard) *CatalogHandler {
	return &CatalogHandler{
		db:              db,
		audit:           audit,
		workflowService: workflowService,
		guard:           guard,
	}
}

func resource[T any, PT interface {
	*T
	models.Entity
}](h *CatalogHandler) *catalogResource[T, PT] {
	return &catalogResource[T, PT]{
		store: repository.NewStore[T, PT](h.db),
		audit: h.audit,
	}
}

// Register mounts one route set per entity
func (h *CatalogHandler) Register(group *gin.RouterGroup) {
	mount(group, "/organizations", resource[models.Organization](h))
	mount(group, "/accounts", resource[models.Account](h))
	mount(group, "/teams", resource[models.Team](h))
	mount(group, "/project_categories", resource[models.ProjectCategory](h))
	mount(group, "/ticket_types", resource[models.TicketType](h))
	mount(group, "/ticket_relationship_types", resource[models.TicketRelationshipType](h))
	mount(group, "/cycles", resource[models.Cycle](h))
	mount(group, "/labels", resource[models.Label](h))
	mount(group, "/label_categories", resource[models.LabelCategory](h))
	mount(group, "/comments", resource[models.Comment](h))
	mount(group, "/assets", resource[models.Asset](h))
	mount(group, "/documents", resource[models.Document](h))
	mount(group, "/repositories", resource[models.Repository](h))
	mount(group, "/repository_types", resource[models.RepositoryType](h))
	mount(group, "/time_entries", resource[models.TimeEntry](h))
	mount(group, "/chats", resource[models.Chat](h))
	mount(group, "/priorities", resource[models.Priority](h))
	mount(group, "/resolutions", resource[models.Resolution](h))
	// Permission definitions, contexts and roles are node-wide administration
	admin := h.guard.RequirePermission(models.PermissionDelete, middleware.NodeContext)
	nodeAdmin := catalogGuards{
		create: []gin.HandlerFunc{admin},
		update: []gin.HandlerFunc{admin},
		remove: []gin.HandlerFunc{admin},
	}
	permissions := resource[models.Permission](h)
	permissions.guard = nodeAdmin
	mount(group, "/permissions", permissions)
	contexts := resource[models.PermissionContext](h)
	contexts.guard = nodeAdmin
	mount(group, "/permission_contexts", contexts)
	roles := resource[models.ProjectRole](h)
	roles.guard = nodeAdmin
	mount(group, "/project_roles", roles)

	projects := resource[models.Project](h)
	projects.guard = catalogGuards{
		create: []gin.HandlerFunc{h.guard.RequirePermission(models.PermissionCreate, middleware.NodeContext)},
		update: []gin.HandlerFunc{h.guard.RequirePermission(models.PermissionUpdate, middleware.ProjectFromParam)},
		remove: []gin.HandlerFunc{h.guard.RequirePermission(models.PermissionDelete, middleware.ProjectFromParam)},
	}
	projects.prepare = func(p, previous *models.Project) error {
		if previous != nil {
			if p.WorkflowID != previous.WorkflowID {
				return apierrors.NewValidationError(models.EntityProject, "workflow_id",
					"rebind through PUT /api/projects/:id/workflow")
			}
			return nil
		}
		if p.WorkflowID == "" {
			return nil
		}
		_, err := h.workflowService.Graph(p.WorkflowID)
		return err
	}
	mount(group, "/projects", projects)

	// Deleting a status can break any workflow that uses it
	statuses := resource[models.TicketStatus](h)
	statuses.onDelete = func(string) { h.workflowService.InvalidateAll() }
	mount(group, "/ticket_statuses", statuses)
}

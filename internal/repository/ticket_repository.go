package repository

import (
	"errors"
	"fmt"
	"sort"

	"github.com/helixtrack/core/internal/database"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/utils"
	"gorm.io/gorm"
)

// ticketEditableColumns are the only columns Update writes
var ticketEditableColumns = []string{
	"title", "description", "ticket_type_id", "user_id", "priority_id", "resolution_id",
	"position", "estimation", "story_points", "modified",
}

// GormTicketRepository is a GORM implementation of TicketRepository
type GormTicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &GormTicketRepository{db: db}
}

// Create assigns the next per-project ticket number and inserts the ticket
func (r *GormTicketRepository) Create(ticket *models.Ticket) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&models.Ticket{}).
			Where("project_id = ?", ticket.ProjectID).
			Select("COALESCE(MAX(ticket_number), 0)").
			Scan(&last).Error
		if err != nil {
			return fmt.Errorf("failed to number ticket: %w", err)
		}

		ticket.TicketNumber = last + 1
		ticket.EnsureID()
		ticket.Stamp(models.Now())
		if err := ticket.Validate(); err != nil {
			return err
		}
		return tx.Create(ticket).Error
	})
}

// FindByID finds a ticket by ID, tombstones included
func (r *GormTicketRepository) FindByID(id string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.Where("id = ?", id).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List retrieves live tickets with filtering and pagination
func (r *GormTicketRepository) List(filter TicketFilter) ([]models.Ticket, int64, error) {
	query := r.db.Model(&models.Ticket{}).Scopes(
		database.NotDeleted,
		database.Match("project_id", filter.ProjectID),
		database.Match("ticket_status_id", filter.StatusID),
		database.Match("user_id", filter.AssigneeID),
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("position ASC, ticket_number ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	tickets := []models.Ticket{}
	if err := listQuery.Find(&tickets).Error; err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

// Update writes back the editable fields of a live ticket
func (r *GormTicketRepository) Update(ticket *models.Ticket) error {
	result := r.db.Model(ticket).
		Where("deleted = ?", false).
		Select(ticketEditableColumns).
		Updates(ticket)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		current, err := r.FindByID(ticket.ID)
		if err != nil {
			return err
		}
		if current.Deleted {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// CompareAndSwapStatus moves a live ticket from expected to target in one statement.
func (r *GormTicketRepository) CompareAndSwapStatus(id, expected, target string, modified int64) (bool, error) {
	result := r.db.Model(&models.Ticket{}).
		Where("id = ? AND ticket_status_id = ? AND deleted = ?", id, expected, false).
		Updates(map[string]interface{}{
			"ticket_status_id": target,
			"modified":         modified,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CreateRelationship inserts an edge unless a live identical one exists
func (r *GormTicketRepository) CreateRelationship(rel *models.TicketRelationship) (*models.TicketRelationship, error) {
	var out *models.TicketRelationship
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Endpoints stay locked until commit; a concurrent inverse edge blocks here.
		if err := lockTickets(tx, rel.TicketID, rel.ChildTicketID); err != nil {
			return err
		}

		var relType models.TicketRelationshipType
		err := tx.Where("id = ? AND deleted = ?", rel.TicketRelationshipTypeID, false).First(&relType).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NewNotFoundError(models.EntityTicketRelationshipType, rel.TicketRelationshipTypeID)
		}
		if err != nil {
			return err
		}

		var existing models.TicketRelationship
		err = tx.Where("ticket_id = ? AND child_ticket_id = ? AND ticket_relationship_type_id = ? AND deleted = ?",
			rel.TicketID, rel.ChildTicketID, rel.TicketRelationshipTypeID, false).
			First(&existing).Error
		if err == nil {
			out = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if relType.Hierarchical {
			// The new edge closes a cycle iff the parent already sits below the child.
			cyclic, err := Reachable(rel.ChildTicketID, rel.TicketID, func(parents []string) ([]string, error) {
				return childIDs(tx, parents)
			})
			if err != nil {
				return err
			}
			if cyclic {
				return apierrors.NewValidationError(models.EntityTicketRelationship, "child_ticket_id",
					"relationship would make a ticket its own ancestor")
			}
		}

		rel.EnsureID()
		rel.Stamp(models.Now())
		if err := rel.Validate(); err != nil {
			return err
		}
		if err := tx.Create(rel).Error; err != nil {
			return err
		}
		out = rel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRelationship tombstones the live edges between two tickets of one type
func (r *GormTicketRepository) DeleteRelationship(ticketID, childTicketID, typeID string) (int64, error) {
	now := models.Now()
	result := r.db.Model(&models.TicketRelationship{}).
		Where("ticket_id = ? AND child_ticket_id = ? AND ticket_relationship_type_id = ? AND deleted = ?",
			ticketID, childTicketID, typeID, false).
		Updates(map[string]interface{}{
			"deleted":  true,
			"modified": gorm.Expr("CASE WHEN created > ? THEN created ELSE ? END", now, now),
		})
	return result.RowsAffected, result.Error
}

// ListRelationships lists live edges touching the ticket in either direction
func (r *GormTicketRepository) ListRelationships(ticketID string) ([]models.TicketRelationship, error) {
	rels := []models.TicketRelationship{}
	err := r.db.Where("(ticket_id = ? OR child_ticket_id = ?) AND deleted = ?", ticketID, ticketID, false).
		Order("created ASC, id ASC").
		Find(&rels).Error
	return rels, err
}

// ChildIDs lists the direct children of a ticket under hierarchical relationship types
func (r *GormTicketRepository) ChildIDs(ticketID string) ([]string, error) {
	return childIDs(r.db, []string{ticketID})
}

func childIDs(db *gorm.DB, parentIDs []string) ([]string, error) {
	hierarchical := db.Model(&models.TicketRelationshipType{}).
		Select("id").
		Where("hierarchical = ? AND deleted = ?", true, false)

	var ids []string
	err := db.Model(&models.TicketRelationship{}).
		Distinct().
		Where("ticket_id IN ? AND deleted = ?", parentIDs, false).
		Where("ticket_relationship_type_id IN (?)", hierarchical).
		Order("child_ticket_id").
		Pluck("child_ticket_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load child tickets: %w", err)
	}
	return ids, nil
}

// Reachable walks next breadth-first from start and reports whether goal is hit.
// next receives a whole frontier at a time.
func Reachable(start, goal string, next func([]string) ([]string, error)) (bool, error) {
	if start == goal {
		return true, nil
	}
	seen := map[string]bool{start: true}
	frontier := []string{start}
	for len(frontier) > 0 {
		children, err := next(frontier)
		if err != nil {
			return false, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if id == goal {
				return true, nil
			}
			if !seen[id] {
				seen[id] = true
				frontier = append(frontier, id)
			}
		}
	}
	return false, nil
}

// lockTickets takes row locks on live tickets in id order and fails if any is missing
func lockTickets(tx *gorm.DB, ids ...string) error {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	for _, id := range sorted {
		if err := lockLive(tx, &models.Ticket{}, models.EntityTicket, id); err != nil {
			return err
		}
	}
	return nil
}

// lockLive is requireLive that also holds a row lock until the transaction ends
func lockLive(tx *gorm.DB, model interface{}, entity, id string) error {
	err := tx.Scopes(database.ForUpdate).
		Select("id").
		Where("id = ? AND deleted = ?", id, false).
		Take(model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.NewNotFoundError(entity, id)
	}
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", entity, err)
	}
	return nil
}

func requireLive(tx *gorm.DB, model interface{}, entity, id string) error {
	var count int64
	if err := tx.Model(model).Where("id = ? AND deleted = ?", id, false).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s: %w", entity, err)
	}
	if count == 0 {
		return apierrors.NewNotFoundError(entity, id)
	}
	return nil
}

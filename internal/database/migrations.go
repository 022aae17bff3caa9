package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type compositeIndex struct {
	table   string
	name    string
	columns string
	unique  bool
}

// Lookups that filter on both sides of a relation plus the tombstone flag.
var compositeIndexes = []compositeIndex{
	{"tickets", "idx_tickets_project_number", "project_id, ticket_number", true},
	{"tickets", "idx_tickets_project_status", "project_id, ticket_status_id, deleted", false},
	{"workflow_steps", "idx_workflow_steps_workflow", "workflow_id, deleted", false},
	{"ticket_relationships", "idx_ticket_relationships_edge", "ticket_id, child_ticket_id, ticket_relationship_type_id", false},
	{"user_team_mappings", "idx_user_team_mappings_pair", "user_id, team_id, deleted", false},
	{"team_project_mappings", "idx_team_project_mappings_pair", "team_id, project_id, deleted", false},
	{"ticket_cycle_mappings", "idx_ticket_cycle_mappings_pair", "ticket_id, cycle_id, deleted", false},
	{"label_ticket_mappings", "idx_label_ticket_mappings_pair", "ticket_id, label_id, deleted", false},
	{"permission_user_mappings", "idx_permission_user_mappings_lookup", "user_id, permission_context_id, deleted", false},
	{"permission_team_mappings", "idx_permission_team_mappings_lookup", "team_id, permission_context_id, deleted", false},
	{"project_role_user_mappings", "idx_project_role_user_mappings_lookup", "user_id, project_id, deleted", false},
}

// AddIndexes adds the composite indexes AutoMigrate cannot express from tags
func AddIndexes(db *gorm.DB, log zerolog.Logger) error {
	for _, idx := range compositeIndexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		kind := "INDEX"
		if idx.unique {
			kind = "UNIQUE INDEX"
		}
		sql := fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Debug().Str("index", idx.name).Str("table", idx.table).Msg("created index")
	}

	return nil
}

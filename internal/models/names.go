package models

// Entity names used in errors, audit records and the catalog registry.
const (
	EntityOrganization           = "organization"
	EntityAccount                = "account"
	EntityTeam                   = "team"
	EntityUser                   = "user"
	EntityProject                = "project"
	EntityProjectCategory        = "project_category"
	EntityWorkflow               = "workflow"
	EntityWorkflowStep           = "workflow_step"
	EntityTicketStatus           = "ticket_status"
	EntityTicketType             = "ticket_type"
	EntityTicket                 = "ticket"
	EntityTicketRelationship     = "ticket_relationship"
	EntityTicketRelationshipType = "ticket_relationship_type"
	EntityCycle                  = "cycle"
	EntityLabel                  = "label"
	EntityLabelCategory          = "label_category"
	EntityComment                = "comment"
	EntityAsset                  = "asset"
	EntityDocument               = "document"
	EntityRepository             = "repository"
	EntityRepositoryType         = "repository_type"
	EntityTimeEntry              = "time_entry"
	EntityChat                   = "chat"
	EntityPermission             = "permission"
	EntityPermissionContext      = "permission_context"
	EntityPermissionUserMapping  = "permission_user_mapping"
	EntityPermissionTeamMapping  = "permission_team_mapping"
	EntityPriority               = "priority"
	EntityResolution             = "resolution"
	EntityProjectRole            = "project_role"
	EntityProjectRoleUserMapping = "project_role_user_mapping"
	EntityAudit                  = "audit"
)

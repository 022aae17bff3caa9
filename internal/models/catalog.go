package models

// All returns one zero value of every persisted table, in migration order.
func All() []interface{} {
	return []interface{}{
		&Organization{}, &Account{}, &Team{}, &User{},
		&Project{}, &ProjectCategory{},
		&Workflow{}, &WorkflowStep{}, &TicketStatus{}, &TicketType{},
		&Priority{}, &Resolution{},
		&Ticket{}, &TicketRelationshipType{}, &TicketRelationship{},
		&Cycle{}, &Label{}, &LabelCategory{}, &Comment{}, &Asset{}, &Document{},
		&Repository{}, &RepositoryType{}, &TimeEntry{}, &Chat{},
		&Permission{}, &PermissionContext{}, &PermissionUserMapping{}, &PermissionTeamMapping{},
		&ProjectRole{}, &ProjectRoleUserMapping{},
		&OrganizationAccountMapping{}, &UserOrganizationMapping{},
		&TeamOrganizationMapping{}, &TeamProjectMapping{}, &UserTeamMapping{},
		&TicketTypeProjectMapping{}, &TicketCycleMapping{}, &CycleProjectMapping{},
		&LabelLabelCategoryMapping{}, &LabelTicketMapping{}, &LabelProjectMapping{},
		&LabelTeamMapping{}, &LabelAssetMapping{},
		&AssetTicketMapping{}, &AssetProjectMapping{}, &AssetTeamMapping{}, &AssetCommentMapping{},
		&CommentTicketMapping{}, &DocumentTicketMapping{}, &DocumentProjectMapping{},
		&RepositoryProjectMapping{}, &RepositoryCommitTicketMapping{},
		&Audit{},
	}
}

package models

// Organization is the top of the ownership tree; teams attach to it through mappings.
type Organization struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (o *Organization) EntityName() string { return EntityOrganization }

func (o *Organization) Validate() error {
	if err := o.validateBase(EntityOrganization); err != nil {
		return err
	}
	return requireText(EntityOrganization, "title", o.Title)
}

// SetTitle renames the organization
func (o *Organization) SetTitle(title string) error {
	return o.mutate(EntityOrganization, func() error {
		if err := requireText(EntityOrganization, "title", title); err != nil {
			return err
		}
		o.Title = title
		return nil
	})
}

// SetDescription replaces the description
func (o *Organization) SetDescription(description string) error {
	return o.mutate(EntityOrganization, func() error {
		o.Description = description
		return nil
	})
}

// Account groups organizations for billing and ownership.
type Account struct {
	Base
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (a *Account) EntityName() string { return EntityAccount }

func (a *Account) Validate() error {
	if err := a.validateBase(EntityAccount); err != nil {
		return err
	}
	return requireText(EntityAccount, "title", a.Title)
}

// OrganizationAccountMapping links an organization to its account
type OrganizationAccountMapping struct {
	Base
	OrganizationID string `gorm:"type:varchar(64);not null;index" json:"organization_id"`
	AccountID      string `gorm:"type:varchar(64);not null;index" json:"account_id"`
}

func (m *OrganizationAccountMapping) EntityName() string { return "organization_account_mapping" }

func (m *OrganizationAccountMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "organization_id", m.OrganizationID, "account_id", m.AccountID)
}

// UserOrganizationMapping records organization membership
type UserOrganizationMapping struct {
	Base
	UserID         string `gorm:"type:varchar(64);not null;index" json:"user_id"`
	OrganizationID string `gorm:"type:varchar(64);not null;index" json:"organization_id"`
}

func (m *UserOrganizationMapping) EntityName() string { return "user_organization_mapping" }

func (m *UserOrganizationMapping) Validate() error {
	return validatePair(&m.Base, m.EntityName(), "user_id", m.UserID, "organization_id", m.OrganizationID)
}

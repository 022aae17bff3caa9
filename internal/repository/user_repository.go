package repository

import (
	"errors"
	"fmt"

	"github.com/helixtrack/core/internal/database"
	"github.com/helixtrack/core/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCreateUser               = errors.New("user repository: create user failed")
	ErrCreateOrganization       = errors.New("user repository: create organization failed")
	ErrCreateOrganizationMember = errors.New("user repository: create organization membership failed")
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithPersonalOrganization inserts the user, the organization and the
// membership joining them in one transaction. Each failure is tagged with the
// step that failed so the service can report it.
func (r *GormUserRepository) CreateWithPersonalOrganization(user *models.User, org *models.Organization, member *models.UserOrganizationMapping) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := NewStore[models.User](tx).Create(user); err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}
		if err := NewStore[models.Organization](tx).Create(org); err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		member.UserID = user.ID
		member.OrganizationID = org.ID
		if err := NewStore[models.UserOrganizationMapping](tx).Create(member); err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganizationMember, err)
		}
		return nil
	})
}

// Update writes back the mutable account fields of a live user
func (r *GormUserRepository) Update(user *models.User) error {
	result := r.db.Model(&models.User{}).
		Scopes(database.NotDeleted).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"password_hash": user.PasswordHash,
			"email":         user.Email,
			"name":          user.Name,
			"modified":      user.Modified,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormUserRepository) FindByID(id string) (*models.User, error) {
	return r.findBy("id", id)
}

func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	return r.findBy("username", username)
}

func (r *GormUserRepository) findBy(column, value string) (*models.User, error) {
	var user models.User
	if err := r.db.Scopes(database.NotDeleted).Where(column+" = ?", value).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/helixtrack/core/internal/constants"
	apierrors "github.com/helixtrack/core/internal/errors"
	"github.com/helixtrack/core/internal/models"
	"github.com/helixtrack/core/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToCreateOrg    = errors.New("failed to create organization")
	ErrFailedToAddMember    = errors.New("failed to add user to organization")
)

// AuthService owns user accounts: signup, credential checks and profile changes.
type AuthService struct {
	userRepo repository.UserRepository
	audit    *AuditService
	log      zerolog.Logger
}

func NewAuthService(userRepo repository.UserRepository, audit *AuditService, log zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		audit:    audit,
		log:      log,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
	Email    string
	Name     string
}

// Signup creates the user together with a personal organization they belong to.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	switch _, err := s.userRepo.FindByUsername(username); {
	case err == nil:
		return nil, ErrUsernameTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(input.Email),
		Name:         strings.TrimSpace(input.Name),
	}
	user.EnsureID()
	user.Stamp(models.Now())
	if err := user.Validate(); err != nil {
		return nil, err
	}

	org := &models.Organization{
		Title:       fmt.Sprintf("%s's organization", user.Username),
		Description: "Personal organization",
	}
	if err := s.userRepo.CreateWithPersonalOrganization(user, org, &models.UserOrganizationMapping{}); err != nil {
		return nil, signupFailure(err)
	}

	s.audit.Record(models.EntityUser, user.ID, models.OperationCreate, user.ID, map[string]string{
		"username":        user.Username,
		"organization_id": org.ID,
	})
	s.log.Info().Str("user_id", user.ID).Str("organization_id", org.ID).Msg("user signed up")

	return user, nil
}

func signupFailure(err error) error {
	switch {
	case errors.Is(err, repository.ErrCreateUser):
		return ErrFailedToCreateUser
	case errors.Is(err, repository.ErrCreateOrganization):
		return ErrFailedToCreateOrg
	case errors.Is(err, repository.ErrCreateOrganizationMember):
		return ErrFailedToAddMember
	default:
		return fmt.Errorf("failed to complete signup: %w", err)
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials. Unknown users and wrong passwords are indistinguishable.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !checkPassword(user, input.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a live user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(userID, current, next string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if !checkPassword(user, current) {
		return ErrInvalidCredentials
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := user.SetPasswordHash(hash); err != nil {
		return err
	}
	if err := s.save(user); err != nil {
		return err
	}

	s.audit.Record(models.EntityUser, user.ID, models.OperationUpdate, user.ID, map[string]string{"field": "password"})
	return nil
}

// ProfileInput holds optional profile changes; nil fields are left alone.
type ProfileInput struct {
	Email *string
	Name  *string
}

// UpdateProfile changes the contact details of a user
func (s *AuthService) UpdateProfile(userID string, input ProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if input.Email != nil {
		if err := user.SetEmail(strings.TrimSpace(*input.Email)); err != nil {
			return nil, err
		}
	}
	if input.Name != nil {
		if err := user.SetName(strings.TrimSpace(*input.Name)); err != nil {
			return nil, err
		}
	}
	if err := s.save(user); err != nil {
		return nil, err
	}

	s.audit.Record(models.EntityUser, user.ID, models.OperationUpdate, user.ID, map[string]string{
		"email": user.Email,
		"name":  user.Name,
	})
	return user, nil
}

func (s *AuthService) save(user *models.User) error {
	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NewNotFoundError(models.EntityUser, user.ID)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

func checkPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

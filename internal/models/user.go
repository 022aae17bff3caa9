package models

import (
	"net/mail"

	apierrors "github.com/helixtrack/core/internal/errors"
)

// User is an account holder. Authored tickets and comments reference it by ID.
type User struct {
	Base
	Username     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Email        string `gorm:"type:varchar(255)" json:"email"`
	Name         string `gorm:"type:varchar(255)" json:"name"`
}

func (u *User) EntityName() string { return EntityUser }

func (u *User) Validate() error {
	if err := u.validateBase(EntityUser); err != nil {
		return err
	}
	if err := requireText(EntityUser, "username", u.Username); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return apierrors.NewValidationError(EntityUser, "password_hash", "must not be empty")
	}
	return validateEmail(u.Email)
}

// SetPasswordHash replaces the stored bcrypt hash
func (u *User) SetPasswordHash(hash string) error {
	return u.mutate(EntityUser, func() error {
		if hash == "" {
			return apierrors.NewValidationError(EntityUser, "password_hash", "must not be empty")
		}
		u.PasswordHash = hash
		return nil
	})
}

// SetEmail changes the contact address
func (u *User) SetEmail(email string) error {
	return u.mutate(EntityUser, func() error {
		if err := validateEmail(email); err != nil {
			return err
		}
		u.Email = email
		return nil
	})
}

// SetName changes the display name
func (u *User) SetName(name string) error {
	return u.mutate(EntityUser, func() error {
		u.Name = name
		return nil
	})
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apierrors.NewValidationError(EntityUser, "email", "not a valid address")
	}
	return nil
}

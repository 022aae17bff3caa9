package models

import apierrors "github.com/helixtrack/core/internal/errors"

// Time units accepted by TimeEntry
const (
	TimeUnitMinute = "minute"
	TimeUnitHour   = "hour"
	TimeUnitDay    = "day"
)

// TimeEntry logs work spent by a user on a ticket
type TimeEntry struct {
	Base
	TicketID string  `gorm:"type:varchar(64);not null;index" json:"ticket_id"`
	UserID   string  `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Amount   float64 `gorm:"not null" json:"amount"`
	Unit     string  `gorm:"type:varchar(16);not null" json:"unit"`
	Title    string  `gorm:"type:varchar(255)" json:"title"`
}

func (e *TimeEntry) EntityName() string { return EntityTimeEntry }

func (e *TimeEntry) Validate() error {
	if err := validatePair(&e.Base, EntityTimeEntry, "ticket_id", e.TicketID, "user_id", e.UserID); err != nil {
		return err
	}
	if e.Amount <= 0 {
		return apierrors.NewValidationError(EntityTimeEntry, "amount", "must be positive")
	}
	switch e.Unit {
	case TimeUnitMinute, TimeUnitHour, TimeUnitDay:
		return nil
	default:
		return apierrors.NewValidationError(EntityTimeEntry, "unit", "must be minute, hour or day")
	}
}

package entity

import (
	"time"

	"go-outlook-starter/core/entity"
)

// UserCalendar binds a local user to their Outlook account: the external
// account id, the default calendar and the current delegated token pair.
// At most one row per user is active; the database enforces it with a
// partial unique index.
type UserCalendar struct {
	entity.BaseEntity
	UserID         int64     `db:"user_id" json:"user_id"`
	ExternalUserID string    `db:"external_user_id" json:"external_user_id"`
	CalendarID     string    `db:"calendar_id" json:"calendar_id"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiry    time.Time `db:"token_expiry" json:"token_expiry"`
	Active         bool      `db:"active" json:"active"`
}

func (UserCalendar) TableName() string {
	return "user_calendars"
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-outlook-starter/core/crypto"
	"go-outlook-starter/core/database"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/modules/calendar/entity"
)

type CalendarRepository interface {
	// FindActiveByUser returns nil without error when the user has no
	// active Outlook binding.
	FindActiveByUser(ctx context.Context, userID int64) (*entity.UserCalendar, error)
	// UpsertActive inserts the active binding for the user or, when one
	// already exists, updates its tokens and calendar id in place.
	UpsertActive(ctx context.Context, cal *entity.UserCalendar) error
	// UpdateTokens replaces the token pair and expiry of an existing row.
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiry time.Time) error
}

type calendarRepository struct {
	db        database.IDatabase
	encrypter crypto.Encrypter
}

func NewCalendarRepository(db database.IDatabase, encrypter crypto.Encrypter) CalendarRepository {
	if encrypter == nil {
		encrypter = crypto.Noop{}
	}
	return &calendarRepository{db: db, encrypter: encrypter}
}

func (r *calendarRepository) FindActiveByUser(ctx context.Context, userID int64) (*entity.UserCalendar, error) {
	var cal entity.UserCalendar
	query := `
		SELECT id, user_id, external_user_id, calendar_id, access_token, refresh_token,
		       token_expiry, active, created_at, updated_at
		FROM user_calendars
		WHERE user_id = $1 AND active = true
	`
	err := r.db.GetContext(ctx, &cal, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("CalendarRepository:FindActiveByUser:Error", "user_id", userID, "error", err)
		return nil, err
	}

	if cal.AccessToken, err = r.encrypter.DecryptString(cal.AccessToken); err != nil {
		logger.Error("CalendarRepository:FindActiveByUser:Decrypt:Error", "user_id", userID, "error", err)
		return nil, err
	}
	if cal.RefreshToken, err = r.encrypter.DecryptString(cal.RefreshToken); err != nil {
		logger.Error("CalendarRepository:FindActiveByUser:Decrypt:Error", "user_id", userID, "error", err)
		return nil, err
	}
	return &cal, nil
}

// UpsertActive relies on the partial unique index (user_id WHERE active) as
// conflict target, so two concurrent authentication events for the same user
// converge on a single active row instead of racing.
func (r *calendarRepository) UpsertActive(ctx context.Context, cal *entity.UserCalendar) error {
	accessToken, err := r.encrypter.EncryptString(cal.AccessToken)
	if err != nil {
		return err
	}
	refreshToken, err := r.encrypter.EncryptString(cal.RefreshToken)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_calendars
			(user_id, external_user_id, calendar_id, access_token, refresh_token, token_expiry, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		ON CONFLICT (user_id) WHERE active DO UPDATE SET
			external_user_id = EXCLUDED.external_user_id,
			calendar_id      = EXCLUDED.calendar_id,
			access_token     = EXCLUDED.access_token,
			refresh_token    = EXCLUDED.refresh_token,
			token_expiry     = EXCLUDED.token_expiry,
			updated_at       = NOW()
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		cal.UserID, cal.ExternalUserID, cal.CalendarID,
		accessToken, refreshToken, cal.TokenExpiry,
	).Scan(&cal.ID, &cal.CreatedAt, &cal.UpdatedAt)
	if err != nil {
		logger.Error("CalendarRepository:UpsertActive:Error", "user_id", cal.UserID, "error", err)
		return err
	}
	cal.Active = true
	return nil
}

func (r *calendarRepository) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiry time.Time) error {
	encAccess, err := r.encrypter.EncryptString(accessToken)
	if err != nil {
		return err
	}
	encRefresh, err := r.encrypter.EncryptString(refreshToken)
	if err != nil {
		return err
	}

	query := `
		UPDATE user_calendars
		SET access_token = $1, refresh_token = $2, token_expiry = $3, updated_at = NOW()
		WHERE id = $4
	`
	if err := r.db.ExecContext(ctx, query, encAccess, encRefresh, expiry, id); err != nil {
		logger.Error("CalendarRepository:UpdateTokens:Error", "id", id, "error", err)
		return err
	}
	return nil
}

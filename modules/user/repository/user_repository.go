package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-outlook-starter/core/database"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/modules/user/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	EnsureExists(ctx context.Context, id int64) (*entity.User, error)
}

type userRepository struct {
	db database.IDatabase
}

func NewUserRepository(db database.IDatabase) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns nil without error when the user does not exist.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	query := `SELECT id, email, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("UserRepository:GetByID:Error", "user_id", id, "error", err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.Error("UserRepository:Create:Error", "user_id", user.ID, "error", err)
		return err
	}
	return nil
}

// EnsureExists creates the user lazily with a placeholder email when no row
// exists yet. Authentication events can arrive before anything else knows
// about the user.
func (r *userRepository) EnsureExists(ctx context.Context, id int64) (*entity.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &entity.User{
		ID:    id,
		Email: fmt.Sprintf("user%d@placeholder.local", id),
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info("UserRepository:EnsureExists:Created", "user_id", id)
	return user, nil
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func (r *userRepo) GetOrCreate(ctx context.Context, email, name string) (*models.User, error) {
	var user models.User
	query := `
		INSERT INTO users (email, name, roles)
		VALUES ($1, $2, ARRAY['CLIENT'])
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name
		RETURNING id, email, name, pin_hash, roles, created_at
	`
	err := r.db.QueryRow(ctx, query, email, name).Scan(
		&user.ID, &user.Email, &user.Name, &user.PinHash, &user.Roles, &user.CreatedAt,
	)
	if err != nil {
		r.log.Error("failed to get or create user", logger.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, name, pin_hash, roles, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PinHash, &user.Roles, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get user by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) SetPinHash(ctx context.Context, userID int64, pinHash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET pin_hash = $1 WHERE id = $2`, pinHash, userID)
	if err != nil {
		r.log.Error("failed to set pin hash", logger.Int64("user_id", userID), logger.Error(err))
	}
	return err
}

func (r *userRepo) AddRole(ctx context.Context, userID int64, role string) ([]string, error) {
	var roles []string
	query := `
		UPDATE users
		SET roles = array_append(roles, $1)
		WHERE id = $2 AND NOT ($1 = ANY(roles))
		RETURNING roles
	`
	err := r.db.QueryRow(ctx, query, role, userID).Scan(&roles)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Role already present or user missing; return current roles.
			err = r.db.QueryRow(ctx, `SELECT roles FROM users WHERE id = $1`, userID).Scan(&roles)
			if err == pgx.ErrNoRows {
				return nil, nil
			}
			return roles, err
		}
		r.log.Error("failed to add role", logger.Int64("user_id", userID), logger.String("role", role), logger.Error(err))
		return nil, err
	}
	return roles, nil
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

type runnerRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRunnerRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRunnerStorage {
	return &runnerRepo{db: db, log: log}
}

func (r *runnerRepo) GetProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error) {
	var p models.RunnerProfile
	query := `
		SELECT rp.user_id, u.name, rp.base_lat, rp.base_lng, rp.price_base, rp.price_per_km,
		       rp.min_fee, rp.max_distance_km, rp.rating_avg, rp.is_active, rp.updated_at
		FROM runner_profiles rp
		JOIN users u ON u.id = rp.user_id
		WHERE rp.user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Name, &p.BaseLat, &p.BaseLng, &p.PriceBase, &p.PricePerKm,
		&p.MinFee, &p.MaxDistanceKm, &p.RatingAvg, &p.IsActive, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get runner profile", logger.Int64("user_id", userID), logger.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *runnerRepo) CreateProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error) {
	// Defaults only; the runner sets a base location before becoming matchable.
	query := `
		INSERT INTO runner_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		r.log.Error("failed to create runner profile", logger.Int64("user_id", userID), logger.Error(err))
		return nil, err
	}
	return r.GetProfile(ctx, userID)
}

func (r *runnerRepo) UpdateProfile(ctx context.Context, profile *models.RunnerProfile) (*models.RunnerProfile, error) {
	query := `
		UPDATE runner_profiles
		SET base_lat = $2, base_lng = $3, price_base = $4, price_per_km = $5,
		    min_fee = $6, max_distance_km = $7, is_active = $8, updated_at = NOW()
		WHERE user_id = $1
		RETURNING rating_avg, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.BaseLat,
		profile.BaseLng,
		profile.PriceBase,
		profile.PricePerKm,
		profile.MinFee,
		profile.MaxDistanceKm,
		profile.IsActive,
	).Scan(&profile.RatingAvg, &profile.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to update runner profile", logger.Int64("user_id", profile.UserID), logger.Error(err))
		return nil, err
	}
	return profile, nil
}

func (r *runnerRepo) GetActive(ctx context.Context) ([]*models.RunnerProfile, error) {
	query := `
		SELECT rp.user_id, u.name, rp.base_lat, rp.base_lng, rp.price_base, rp.price_per_km,
		       rp.min_fee, rp.max_distance_km, rp.rating_avg, rp.is_active, rp.updated_at
		FROM runner_profiles rp
		JOIN users u ON u.id = rp.user_id
		WHERE rp.is_active
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.RunnerProfile
	for rows.Next() {
		var p models.RunnerProfile
		err := rows.Scan(
			&p.UserID, &p.Name, &p.BaseLat, &p.BaseLng, &p.PriceBase, &p.PricePerKm,
			&p.MinFee, &p.MaxDistanceKm, &p.RatingAvg, &p.IsActive, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

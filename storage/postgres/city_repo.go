package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

type cityRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewCityRepo(db *pgxpool.Pool, log logger.ILogger) storage.ICityStorage {
	return &cityRepo{db: db, log: log}
}

func (r *cityRepo) GetAll(ctx context.Context) ([]*models.City, error) {
	query := `SELECT id, name, slug, active, created_at FROM cities WHERE active ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []*models.City
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, &c)
	}
	return cities, rows.Err()
}

func (r *cityRepo) GetBySlug(ctx context.Context, slug string) (*models.City, error) {
	var c models.City
	query := `SELECT id, name, slug, active, created_at FROM cities WHERE slug = $1`
	err := r.db.QueryRow(ctx, query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Active, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *cityRepo) Create(ctx context.Context, name, slug string) (*models.City, error) {
	var c models.City
	query := `
		INSERT INTO cities (name, slug, active)
		VALUES ($1, $2, true)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, slug, active, created_at
	`
	err := r.db.QueryRow(ctx, query, name, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Active, &c.CreatedAt)
	if err != nil {
		r.log.Error("failed to create city", logger.String("slug", slug), logger.Error(err))
		return nil, err
	}
	return &c, nil
}

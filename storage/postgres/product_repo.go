package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

type productRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewProductRepo(db *pgxpool.Pool, log logger.ILogger) storage.IProductStorage {
	return &productRepo{db: db, log: log}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (provider_id, city_id, name, price, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		product.ProviderID,
		product.CityID,
		product.Name,
		product.Price,
		product.Stock,
	).Scan(&product.ID, &product.CreatedAt)

	if err != nil {
		r.log.Error("failed to create product", logger.Error(err))
		return nil, err
	}
	return product, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	query := `SELECT id, provider_id, city_id, name, price, stock, created_at FROM products WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ProviderID, &p.CityID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get product by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Product, error) {
	query := `
		SELECT id, provider_id, city_id, name, price, stock, created_at
		FROM products
		WHERE id = ANY($1)
	`
	return r.scanProducts(ctx, query, ids)
}

func (r *productRepo) GetByProvider(ctx context.Context, providerID int64) ([]*models.Product, error) {
	query := `
		SELECT id, provider_id, city_id, name, price, stock, created_at
		FROM products
		WHERE provider_id = $1
		ORDER BY created_at DESC
	`
	return r.scanProducts(ctx, query, providerID)
}

func (r *productRepo) GetByCity(ctx context.Context, cityID int64) ([]*models.Product, error) {
	query := `
		SELECT id, provider_id, city_id, name, price, stock, created_at
		FROM products
		WHERE city_id = $1 AND stock > 0
		ORDER BY created_at DESC
	`
	return r.scanProducts(ctx, query, cityID)
}

func (r *productRepo) scanProducts(ctx context.Context, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.ProviderID, &p.CityID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

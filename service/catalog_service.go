package service

import (
	"context"
	"fmt"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

// CatalogService is the minimal catalog surface the order core depends on.
// Full catalog administration lives outside this service.
type CatalogService interface {
	Cities(ctx context.Context) ([]*models.City, error)
	CreateCity(ctx context.Context, name, slug string) (*models.City, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	ProductsByCity(ctx context.Context, cityID int64) ([]*models.Product, error)
	ProductsByProvider(ctx context.Context, providerID int64) ([]*models.Product, error)
}

type catalogService struct {
	cities   storage.ICityStorage
	products storage.IProductStorage
	log      logger.ILogger
}

func NewCatalogService(stg storage.IStorage, log logger.ILogger) CatalogService {
	return &catalogService{
		cities:   stg.City(),
		products: stg.Product(),
		log:      log,
	}
}

func (s *catalogService) Cities(ctx context.Context) ([]*models.City, error) {
	return s.cities.GetAll(ctx)
}

func (s *catalogService) CreateCity(ctx context.Context, name, slug string) (*models.City, error) {
	if name == "" || slug == "" {
		return nil, fmt.Errorf("%w: city name and slug are required", ErrInvalidRequest)
	}
	return s.cities.Create(ctx, name, slug)
}

func (s *catalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidRequest)
	}
	if !product.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}
	if product.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidRequest)
	}
	return s.products.Create(ctx, product)
}

func (s *catalogService) ProductsByCity(ctx context.Context, cityID int64) ([]*models.Product, error) {
	return s.products.GetByCity(ctx, cityID)
}

func (s *catalogService) ProductsByProvider(ctx context.Context, providerID int64) ([]*models.Product, error) {
	return s.products.GetByProvider(ctx, providerID)
}

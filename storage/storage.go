package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lokalrunner/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	City() ICityStorage
	Product() IProductStorage
	Order() IOrderStorage
	Runner() IRunnerStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IUserStorage interface {
	GetOrCreate(ctx context.Context, email, name string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetPinHash(ctx context.Context, userID int64, pinHash string) error
	AddRole(ctx context.Context, userID int64, role string) ([]string, error)
}

type ICityStorage interface {
	GetAll(ctx context.Context) ([]*models.City, error)
	GetBySlug(ctx context.Context, slug string) (*models.City, error)
	Create(ctx context.Context, name, slug string) (*models.City, error)
}

type IProductStorage interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Product, error)
	GetByProvider(ctx context.Context, providerID int64) ([]*models.Product, error)
	GetByCity(ctx context.Context, cityID int64) ([]*models.Product, error)
}

type IOrderStorage interface {
	// CreateWithItems inserts the order and its items and decrements stock for
	// every referenced product inside a single transaction. A concurrent
	// creation that would take stock below zero fails the whole transaction
	// with a StockConflictError.
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error)

	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetByClient(ctx context.Context, clientID int64) ([]*models.Order, error)
	GetByRunner(ctx context.Context, runnerID int64) ([]*models.Order, error)
	GetByProvider(ctx context.Context, providerID int64) ([]*models.Order, error)
	GetAll(ctx context.Context) ([]*models.Order, error)
	GetAvailable(ctx context.Context) ([]*models.Order, error)

	// The transition methods below are conditional updates: the WHERE clause
	// encodes the expected prior state and the returned count is the
	// exactly-once signal. Zero rows means the caller lost the race.
	AssignRunner(ctx context.Context, orderID, runnerID int64, baseFee, perKmFee decimal.Decimal, distanceKm *float64) (int64, error)
	ClaimOrder(ctx context.Context, orderID, runnerID int64, baseFee, perKmFee decimal.Decimal, distanceKm *float64) (int64, error)
	CompleteOrder(ctx context.Context, orderID, runnerID int64) (int64, error)
	CancelOrder(ctx context.Context, orderID int64) (int64, error)
}

type IRunnerStorage interface {
	GetProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error)
	CreateProfile(ctx context.Context, userID int64) (*models.RunnerProfile, error)
	UpdateProfile(ctx context.Context, profile *models.RunnerProfile) (*models.RunnerProfile, error)
	GetActive(ctx context.Context) ([]*models.RunnerProfile, error)
}

// StockConflictError reports the product whose conditional stock decrement
// affected zero rows.
type StockConflictError struct {
	ProductID int64
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

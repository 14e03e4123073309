package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/pkg/pincode"
	"lokalrunner/storage"
)

type CreateOrderInput struct {
	Items           []models.NewOrderItem
	DeliveryAddress *string
	DeliveryLat     *float64
	DeliveryLng     *float64
	Pin             string
}

type OrderService interface {
	Create(ctx context.Context, clientID int64, in CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, id, callerID int64, callerRoles []string) (*models.Order, error)
	List(ctx context.Context, callerID int64, callerRoles []string) ([]*models.Order, error)
	Available(ctx context.Context) ([]*models.Order, error)
	Accept(ctx context.Context, orderID, runnerID int64) (*models.Order, error)
	Complete(ctx context.Context, orderID, runnerID int64) (*models.Order, error)
	Cancel(ctx context.Context, orderID, callerID int64, callerRoles []string) (*models.Order, error)
}

type orderService struct {
	orders   storage.IOrderStorage
	products storage.IProductStorage
	runners  storage.IRunnerStorage
	users    storage.IUserStorage
	log      logger.ILogger
}

func NewOrderService(stg storage.IStorage, log logger.ILogger) OrderService {
	return &orderService{
		orders:   stg.Order(),
		products: stg.Product(),
		runners:  stg.Runner(),
		users:    stg.User(),
		log:      log,
	}
}

// Create reserves stock and money-bearing order state in one transaction.
// All validation happens before any mutation; the transactional conditional
// stock decrement is the last word under concurrency.
func (s *orderService) Create(ctx context.Context, clientID int64, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", ErrInvalidRequest)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
		}
	}
	if err := validateOptionalCoords(in.DeliveryLat, in.DeliveryLng); err != nil {
		return nil, err
	}

	// The purchase PIN gates the money-bearing path.
	user, err := s.users.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, clientID)
	}
	if user.PinHash == nil {
		return nil, fmt.Errorf("%w: purchase PIN is not configured", ErrInvalidRequest)
	}
	ok, err := pincode.Verify(*user.PinHash, in.Pin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: wrong purchase PIN", ErrUnauthorized)
	}

	ids := make([]int64, 0, len(in.Items))
	seen := make(map[int64]bool, len(in.Items))
	for _, item := range in.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, fmt.Errorf("%w: some products do not exist", ErrNotFound)
	}
	byID := make(map[int64]*models.Product, len(products))
	cityIDs := make(map[int64]bool)
	for _, p := range products {
		byID[p.ID] = p
		cityIDs[p.CityID] = true
	}
	if len(cityIDs) > 1 {
		return nil, fmt.Errorf("%w: all products must belong to the same city", ErrInvalidRequest)
	}

	// Snapshot prices and total in exact decimal arithmetic.
	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(in.Items))
	requested := make(map[int64]int, len(ids))
	for _, item := range in.Items {
		product := byID[item.ProductID]
		requested[item.ProductID] += item.Quantity
		if product.Stock < requested[item.ProductID] {
			return nil, &InsufficientStockError{ProductID: product.ID, ProductName: product.Name}
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderItems = append(orderItems, models.OrderItem{
			ProductID:       product.ID,
			Quantity:        item.Quantity,
			PriceAtPurchase: product.Price,
			ProductName:     product.Name,
			ProviderID:      product.ProviderID,
		})
	}

	order := &models.Order{
		ClientID:        clientID,
		CityID:          products[0].CityID,
		TotalPrice:      total,
		Status:          models.OrderStatusPending,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryLat:     in.DeliveryLat,
		DeliveryLng:     in.DeliveryLng,
	}

	created, err := s.orders.CreateWithItems(ctx, order, orderItems)
	if err != nil {
		var conflict *storage.StockConflictError
		if errors.As(err, &conflict) {
			name := ""
			if p := byID[conflict.ProductID]; p != nil {
				name = p.Name
			}
			return nil, &InsufficientStockError{ProductID: conflict.ProductID, ProductName: name}
		}
		return nil, err
	}

	s.log.Info("order created",
		logger.Int64("order_id", created.ID),
		logger.Int64("client_id", clientID),
		logger.String("total", created.TotalPrice.StringFixed(2)),
	)
	return created, nil
}

func (s *orderService) GetByID(ctx context.Context, id, callerID int64, callerRoles []string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if !CanViewOrder(order, callerID, callerRoles) {
		return nil, fmt.Errorf("%w: no permission to view this order", ErrForbidden)
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, callerID int64, callerRoles []string) ([]*models.Order, error) {
	switch {
	case models.HasRole(callerRoles, models.RoleAdmin):
		return s.orders.GetAll(ctx)
	case models.HasRole(callerRoles, models.RoleProvider):
		return s.orders.GetByProvider(ctx, callerID)
	case models.HasRole(callerRoles, models.RoleRunner):
		return s.orders.GetByRunner(ctx, callerID)
	case models.HasRole(callerRoles, models.RoleClient):
		return s.orders.GetByClient(ctx, callerID)
	}
	return []*models.Order{}, nil
}

func (s *orderService) Available(ctx context.Context) ([]*models.Order, error) {
	return s.orders.GetAvailable(ctx)
}

// Accept is the pull path: a runner claims an unassigned PENDING order. The
// conditional update also rejects self-assignment.
func (s *orderService) Accept(ctx context.Context, orderID, runnerID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	profile, err := s.runners.GetProfile(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: runner profile %d", ErrNotFound, runnerID)
	}

	affected, err := s.orders.ClaimOrder(ctx, orderID, runnerID,
		profile.PriceBase, profile.PricePerKm, deliveryDistance(order, profile))
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: already accepted, not pending, or own order", ErrConflict)
	}

	return s.orders.GetByID(ctx, orderID)
}

func (s *orderService) Complete(ctx context.Context, orderID, runnerID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	affected, err := s.orders.CompleteOrder(ctx, orderID, runnerID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: wrong state, or not the assigned runner", ErrConflict)
	}

	return s.orders.GetByID(ctx, orderID)
}

func (s *orderService) Cancel(ctx context.Context, orderID, callerID int64, callerRoles []string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if !models.HasRole(callerRoles, models.RoleAdmin) && order.ClientID != callerID {
		return nil, fmt.Errorf("%w: only the client or an admin may cancel", ErrForbidden)
	}

	affected, err := s.orders.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", ErrConflict)
	}

	return s.orders.GetByID(ctx, orderID)
}

// CanViewOrder implements the shared read authorization: admin, the client,
// the assigned runner, or a provider owning at least one item.
func CanViewOrder(order *models.Order, callerID int64, callerRoles []string) bool {
	if models.HasRole(callerRoles, models.RoleAdmin) {
		return true
	}
	if order.ClientID == callerID {
		return true
	}
	if order.RunnerID != nil && *order.RunnerID == callerID {
		return true
	}
	if models.HasRole(callerRoles, models.RoleProvider) {
		for _, item := range order.Items {
			if item.ProviderID == callerID {
				return true
			}
		}
	}
	return false
}

func validateOptionalCoords(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return fmt.Errorf("%w: delivery coordinates need both lat and lng", ErrInvalidRequest)
	}
	return validateCoords(*lat, *lng)
}

func validateCoords(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: malformed coordinates", ErrInvalidRequest)
	}
	return nil
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/models"
	"lokalrunner/storage"
)

type orderRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewOrderRepo(db *pgxpool.Pool, log logger.ILogger) storage.IOrderStorage {
	return &orderRepo{db: db, log: log}
}

const orderColumns = `id, client_id, runner_id, city_id, total_price, status, delivery_address,
	delivery_lat, delivery_lng, runner_base_fee, runner_per_km_fee, delivery_distance_km, created_at`

func (r *orderRepo) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("failed to begin order transaction", logger.Error(err))
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (client_id, city_id, total_price, status, delivery_address, delivery_lat, delivery_lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		order.ClientID,
		order.CityID,
		order.TotalPrice,
		order.Status,
		order.DeliveryAddress,
		order.DeliveryLat,
		order.DeliveryLng,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		r.log.Error("failed to insert order", logger.Error(err))
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].PriceAtPurchase).Scan(&items[i].ID)
		if err != nil {
			r.log.Error("failed to insert order item", logger.Error(err))
			return nil, err
		}

		// Conditional decrement: the row count is what keeps two concurrent
		// orders from jointly overselling the product.
		res, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2
		`, items[i].ProductID, items[i].Quantity)
		if err != nil {
			r.log.Error("failed to decrement stock", logger.Int64("product_id", items[i].ProductID), logger.Error(err))
			return nil, err
		}
		if res.RowsAffected() == 0 {
			return nil, &storage.StockConflictError{ProductID: items[i].ProductID}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit order transaction", logger.Error(err))
		return nil, err
	}

	order.Items = items
	return order, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.ClientID, &o.RunnerID, &o.CityID, &o.TotalPrice, &o.Status, &o.DeliveryAddress,
		&o.DeliveryLat, &o.DeliveryLng, &o.RunnerBaseFee, &o.RunnerPerKmFee, &o.DeliveryDistanceKm, &o.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get order by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, []*models.Order{&o}, 0); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByClient(ctx context.Context, clientID int64) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE client_id = $1 ORDER BY created_at DESC`
	return r.scanOrders(ctx, query, 0, clientID)
}

func (r *orderRepo) GetByRunner(ctx context.Context, runnerID int64) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE runner_id = $1 ORDER BY created_at DESC`
	return r.scanOrders(ctx, query, 0, runnerID)
}

func (r *orderRepo) GetByProvider(ctx context.Context, providerID int64) ([]*models.Order, error) {
	query := `
		SELECT DISTINCT o.id, o.client_id, o.runner_id, o.city_id, o.total_price, o.status, o.delivery_address,
			o.delivery_lat, o.delivery_lng, o.runner_base_fee, o.runner_per_km_fee, o.delivery_distance_km, o.created_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE p.provider_id = $1
		ORDER BY o.created_at DESC
	`
	return r.scanOrders(ctx, query, providerID, providerID)
}

func (r *orderRepo) GetAll(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.scanOrders(ctx, query, 0)
}

func (r *orderRepo) GetAvailable(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = 'PENDING' AND runner_id IS NULL
		ORDER BY created_at DESC
	`
	return r.scanOrders(ctx, query, 0)
}

// scanOrders reads the order rows and attaches their items. A non-zero
// providerFilter narrows each order's items to that provider's products.
func (r *orderRepo) scanOrders(ctx context.Context, query string, providerFilter int64, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.ClientID, &o.RunnerID, &o.CityID, &o.TotalPrice, &o.Status, &o.DeliveryAddress,
			&o.DeliveryLat, &o.DeliveryLng, &o.RunnerBaseFee, &o.RunnerPerKmFee, &o.DeliveryDistanceKm, &o.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders, providerFilter); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) loadItems(ctx context.Context, orders []*models.Order, providerFilter int64) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_purchase, p.name, p.provider_id
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
	`
	args := []interface{}{ids}
	if providerFilter != 0 {
		query += ` AND p.provider_id = $2`
		args = append(args, providerFilter)
	}
	query += ` ORDER BY oi.id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase, &item.ProductName, &item.ProviderID)
		if err != nil {
			return err
		}
		if o := byID[item.OrderID]; o != nil {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepo) AssignRunner(ctx context.Context, orderID, runnerID int64, baseFee, perKmFee decimal.Decimal, distanceKm *float64) (int64, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE orders
		SET runner_id = $2, status = 'CONFIRMED', runner_base_fee = $3, runner_per_km_fee = $4, delivery_distance_km = $5
		WHERE id = $1 AND status = 'PENDING'
	`, orderID, runnerID, baseFee, perKmFee, distanceKm)
	if err != nil {
		r.log.Error("failed to assign runner", logger.Int64("order_id", orderID), logger.Error(err))
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *orderRepo) ClaimOrder(ctx context.Context, orderID, runnerID int64, baseFee, perKmFee decimal.Decimal, distanceKm *float64) (int64, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE orders
		SET runner_id = $2, status = 'CONFIRMED', runner_base_fee = $3, runner_per_km_fee = $4, delivery_distance_km = $5
		WHERE id = $1 AND status = 'PENDING' AND runner_id IS NULL AND client_id <> $2
	`, orderID, runnerID, baseFee, perKmFee, distanceKm)
	if err != nil {
		r.log.Error("failed to claim order", logger.Int64("order_id", orderID), logger.Error(err))
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *orderRepo) CompleteOrder(ctx context.Context, orderID, runnerID int64) (int64, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'COMPLETED'
		WHERE id = $1 AND runner_id = $2 AND status = 'CONFIRMED'
	`, orderID, runnerID)
	if err != nil {
		r.log.Error("failed to complete order", logger.Int64("order_id", orderID), logger.Error(err))
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *orderRepo) CancelOrder(ctx context.Context, orderID int64) (int64, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE orders SET status = 'CANCELLED' WHERE id = $1 AND status = 'PENDING'
	`, orderID)
	if err != nil {
		r.log.Error("failed to cancel order", logger.Int64("order_id", orderID), logger.Error(err))
		return 0, err
	}
	return res.RowsAffected(), nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID                 int64            `json:"id"`
	ClientID           int64            `json:"client_id"`
	RunnerID           *int64           `json:"runner_id"`
	CityID             int64            `json:"city_id"`
	TotalPrice         decimal.Decimal  `json:"total_price"`
	Status             OrderStatus      `json:"status"`
	DeliveryAddress    *string          `json:"delivery_address"`
	DeliveryLat        *float64         `json:"delivery_lat"`
	DeliveryLng        *float64         `json:"delivery_lng"`
	RunnerBaseFee      *decimal.Decimal `json:"runner_base_fee"`
	RunnerPerKmFee     *decimal.Decimal `json:"runner_per_km_fee"`
	DeliveryDistanceKm *float64         `json:"delivery_distance_km"`
	CreatedAt          time.Time        `json:"created_at"`
	Items              []OrderItem      `json:"items,omitempty"`
}

// OrderItem is a snapshot taken at creation time. priceAtPurchase keeps the
// order total stable even when the product price changes later.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	ProductName     string          `json:"product_name,omitempty"`
	ProviderID      int64           `json:"provider_id,omitempty"`
}

type NewOrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

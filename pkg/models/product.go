package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         int64           `json:"id"`
	ProviderID int64           `json:"provider_id"`
	CityID     int64           `json:"city_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CreatedAt  time.Time       `json:"created_at"`
}

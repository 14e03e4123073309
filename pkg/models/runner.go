package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RunnerProfile struct {
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name,omitempty"`
	BaseLat       *float64        `json:"base_lat"`
	BaseLng       *float64        `json:"base_lng"`
	PriceBase     decimal.Decimal `json:"price_base"`
	PricePerKm    decimal.Decimal `json:"price_per_km"`
	MinFee        decimal.Decimal `json:"min_fee"`
	MaxDistanceKm float64         `json:"max_distance_km"`
	RatingAvg     float64         `json:"rating_avg"`
	IsActive      bool            `json:"is_active"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RunnerCandidate is one row of a delivery preview: an active runner in range
// of the delivery point, with the fee it would charge.
type RunnerCandidate struct {
	RunnerID     int64           `json:"runner_id"`
	Name         string          `json:"name"`
	Rating       float64         `json:"rating"`
	DistanceKm   float64         `json:"distance_km"`
	EstimatedFee decimal.Decimal `json:"estimated_fee"`
	EtaMinutes   int             `json:"eta_minutes"`
}

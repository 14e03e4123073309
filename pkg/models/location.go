package models

import "time"

// LocationUpdate is the payload rebroadcast to a tracking room. It is relayed
// verbatim; nothing is persisted beyond the room's current position.
type LocationUpdate struct {
	OrderID int64     `json:"order_id"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`
	SentAt  time.Time `json:"sent_at"`
}

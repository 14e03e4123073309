package models

import "time"

const (
	RoleClient   = "CLIENT"
	RoleProvider = "PROVIDER"
	RoleRunner   = "RUNNER"
	RoleAdmin    = "ADMIN"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PinHash   *string   `json:"-"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

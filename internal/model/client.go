package model

import "time"

// Client is the person a reservation is made for.  UserID links the
// record to a login when the client registered themselves; clients
// created by an administrator have no user.
type Client struct {
	ID        uint64    `json:"id"`
	UserID    *uint64   `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientSummary is embedded in reservation reads.
type ClientSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

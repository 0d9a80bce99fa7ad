package model

// Item is a record owned by at most one user.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, cache) without coupling to persistence.
type Item struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsActive    bool    `json:"is_active"`
	OwnerID     *int64  `json:"owner_id"`
}

package model

// User owns zero or more items. The relation lives in items.owner_id;
// the model itself carries only identity and profile fields.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

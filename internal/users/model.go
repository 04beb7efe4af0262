package users

import "time"

// EntityType is the declared fiscal entity type used by the tax projection.
type EntityType string

const (
	EntityNatural  EntityType = "NATURAL"
	EntityJuridica EntityType = "JURIDICA"
)

// User model. TokenHash is the bcrypt hash of the API token secret.
type User struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	TaxID      string     `json:"tax_id,omitempty"`
	EntityType EntityType `json:"entity_type"`
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

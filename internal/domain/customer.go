package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a person who places orders.
// Phone is empty when the customer has none on record.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required,max=255"`
	Email     string    `json:"email" db:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone,omitempty" db:"phone" validate:"omitempty,max=20"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

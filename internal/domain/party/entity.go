package party

import (
	"time"

	"github.com/google/uuid"
)

// Type distinguishes who a party acts as on a proposal
type Type string

const (
	TypeContractor    Type = "contractor"
	TypeSubcontractor Type = "subcontractor"
	TypeVendor        Type = "vendor"
)

// Party is a contractor or vendor referenced by proposals and line items.
// Parties are deduplicated per project by name.
type Party struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ProjectID uuid.UUID `db:"project_id"`
	Name      string    `db:"name"`
	Type      Type      `db:"party_type"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

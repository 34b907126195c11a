package category

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Category labels transactions. System categories are seeded on first run and
// can never be deleted.
type Category struct {
	ID              uuid.UUID
	Name            string
	Icon            string
	ColorHex        string
	ApplicableTypes []transaction.Type
	SortOrder       int
	IsSystem        bool
	CreatedAt       time.Time
}

func (c *Category) AppliesTo(t transaction.Type) bool {
	return slices.Contains(c.ApplicableTypes, t)
}

package category

import (
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

const resource = "category"

// ErrNotFound matches any missing category with errors.Is.
var ErrNotFound error = &apperr.NotFoundError{Resource: resource}

func NotFound(id uuid.UUID) error {
	return apperr.NotFound(resource, id.String())
}

package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Callers match with errors.Is; the more specific errors below
// wrap one of these.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrQueryFailed   = errors.New("query failed")
	ErrWriteFailed   = errors.New("write failed")
	ErrAlertDelivery = errors.New("alert delivery failed")
)

var (
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrOwnerNotFound       = fmt.Errorf("owner %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)

	ErrInvalidSortField   = fmt.Errorf("%w: invalid sort field", ErrValidation)
	ErrInvalidPage        = fmt.Errorf("%w: invalid page request", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long (max %d characters)", ErrValidation, MaxDescriptionLength)
	ErrEmptyOwner         = fmt.Errorf("%w: owner email is required", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
)

// StatusCode maps an error onto the response code of the FAILED envelope.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package core

import (
	"fmt"
	"math"
	"strings"
)

// Direction represents sort order.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch v := strings.TrimSpace(s); {
	case strings.EqualFold(v, string(Asc)):
		return Asc, nil
	case strings.EqualFold(v, string(Desc)):
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: sort direction must be ASC or DESC, got %q", ErrValidation, s)
	}
}

// Sort field names accepted by the stores. Ties are always broken by id in
// the same direction.
const (
	SortByID          = "id"
	SortByDate        = "date"
	SortByAmount      = "amount"
	SortByDescription = "description"
	SortByCategory    = "category"
)

type Sort struct {
	Field     string
	Direction Direction
}

// PageRequest selects a zero-based page of Size elements.
type PageRequest struct {
	Number int
	Size   int
	Sort   Sort
}

func (p PageRequest) Validate() error {
	if p.Number < 0 {
		return fmt.Errorf("%w: page number must not be negative, got %d", ErrInvalidPage, p.Number)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidPage, p.Size)
	}
	switch p.Sort.Direction {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("%w: sort direction must be ASC or DESC, got %q", ErrValidation, p.Sort.Direction)
	}
	return nil
}

// Offset is the index of the page's first element. It saturates at
// math.MaxInt, which every store treats as past the end.
func (p PageRequest) Offset() int {
	if p.Number <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Number > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Number * p.Size
}

// OwnerQuery lists one owner's transactions.
type OwnerQuery struct {
	OwnerEmail string
	Page       PageRequest
	SearchKey  string
	// TransactionType restricts results to one transaction type; 0 means any.
	TransactionType int
}

// PageQuery is the administrative listing over every owner.
type PageQuery struct {
	Page      PageRequest
	SearchKey string
}

package match

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrDuplicateFixture is returned by stores when the fixture uniqueness constraint rejects a write.
	ErrDuplicateFixture = errors.New("duplicate match fixture")
	// ErrMatchNotFound is returned by Update when the row vanished after it was read.
	ErrMatchNotFound = errors.New("match not found")
)

// PageRequest addresses one zero-based page.
type PageRequest struct {
	Page int
	Size int
}

// Offset saturates at math.MaxInt instead of wrapping.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Page is one slice of a filtered, ordered listing.
type Page struct {
	Items []Match
	Total int64
}

type Repository interface {
	ExistsByFixture(ctx context.Context, fixture Fixture) (bool, error)
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	// Create stores the match and its odds together and returns it with the assigned id.
	Create(ctx context.Context, m Match) (Match, error)
	// Update overwrites the match row and replaces its odds wholesale.
	Update(ctx context.Context, m Match) (Match, error)
	// Delete removes the match and its odds. Returns false when nothing was deleted.
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter Filter, ordering Ordering, page PageRequest) (Page, error)
}

package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
)

// MatchRepository keeps matches in process. It enforces the same fixture
// uniqueness as the database constraint.
type MatchRepository struct {
	mu       sync.RWMutex
	items    map[int64]match.Match
	fixtures map[string]int64
	nextID   int64
}

func NewMatchRepository(seed []match.Match) *MatchRepository {
	r := &MatchRepository{
		items:    make(map[int64]match.Match, len(seed)),
		fixtures: make(map[string]int64, len(seed)),
	}
	for _, m := range seed {
		if m.ID == 0 {
			r.nextID++
			m.ID = r.nextID
		}
		if m.ID > r.nextID {
			r.nextID = m.ID
		}
		r.items[m.ID] = cloneMatch(m)
		r.fixtures[m.Fixture().Key()] = m.ID
	}
	return r
}

func (r *MatchRepository) ExistsByFixture(_ context.Context, fixture match.Fixture) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.fixtures[fixture.Key()]
	return ok, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(m), true, nil
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := m.Fixture().Key()
	if _, taken := r.fixtures[key]; taken {
		return match.Match{}, fmt.Errorf("insert match: %w", match.ErrDuplicateFixture)
	}

	r.nextID++
	m.ID = r.nextID
	r.items[m.ID] = cloneMatch(m)
	r.fixtures[key] = m.ID

	return cloneMatch(m), nil
}

func (r *MatchRepository) Update(_ context.Context, m match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[m.ID]
	if !ok {
		return match.Match{}, fmt.Errorf("update match id=%d: %w", m.ID, match.ErrMatchNotFound)
	}

	oldKey := current.Fixture().Key()
	newKey := m.Fixture().Key()
	if owner, taken := r.fixtures[newKey]; taken && owner != m.ID {
		return match.Match{}, fmt.Errorf("update match: %w", match.ErrDuplicateFixture)
	}

	m.Owner = current.Owner
	delete(r.fixtures, oldKey)
	r.fixtures[newKey] = m.ID
	r.items[m.ID] = cloneMatch(m)

	return cloneMatch(m), nil
}

func (r *MatchRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return false, nil
	}
	delete(r.fixtures, current.Fixture().Key())
	delete(r.items, id)
	return true, nil
}

func (r *MatchRepository) List(_ context.Context, filter match.Filter, ordering match.Ordering, page match.PageRequest) (match.Page, error) {
	r.mu.RLock()
	matched := make([]match.Match, 0, len(r.items))
	for _, m := range r.items {
		ok, err := matchesFilter(m, filter)
		if err != nil {
			r.mu.RUnlock()
			return match.Page{}, err
		}
		if ok {
			matched = append(matched, cloneMatch(m))
		}
	}
	r.mu.RUnlock()

	var sortErr error
	slices.SortStableFunc(matched, func(a, b match.Match) int {
		for _, term := range ordering.Terms {
			c, err := compareField(a, b, term.Field)
			if err != nil {
				sortErr = err
				return 0
			}
			if c == 0 {
				continue
			}
			if term.Desc {
				return -c
			}
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if sortErr != nil {
		return match.Page{}, sortErr
	}

	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := start + min(max(page.Size, 0), len(matched)-start)

	return match.Page{Items: matched[start:end], Total: total}, nil
}

func matchesFilter(m match.Match, filter match.Filter) (bool, error) {
	for _, c := range filter.Constraints {
		switch c.Field {
		case match.FieldOwner:
			v, _ := c.Value.(string)
			if strings.ToLower(m.Owner) != v {
				return false, nil
			}
		case match.FieldSport:
			v, _ := c.Value.(string)
			if string(m.Sport) != v {
				return false, nil
			}
		case match.FieldMatchDate:
			v, _ := c.Value.(time.Time)
			if !match.DateOf(m.MatchDate).Equal(match.DateOf(v)) {
				return false, nil
			}
		case match.FieldMatchTime:
			v, _ := c.Value.(time.Time)
			if !match.ClockOf(m.MatchTime).Equal(match.ClockOf(v)) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported match field %q", c.Field)
		}
	}
	return true, nil
}

func compareField(a, b match.Match, field match.Field) (int, error) {
	switch field {
	case match.FieldOwner:
		// Case-insensitive first, like the owner filter; raw value breaks ties.
		if c := strings.Compare(strings.ToLower(a.Owner), strings.ToLower(b.Owner)); c != 0 {
			return c, nil
		}
		return strings.Compare(a.Owner, b.Owner), nil
	case match.FieldSport:
		return strings.Compare(string(a.Sport), string(b.Sport)), nil
	case match.FieldMatchDate:
		return match.DateOf(a.MatchDate).Compare(match.DateOf(b.MatchDate)), nil
	case match.FieldMatchTime:
		return match.ClockOf(a.MatchTime).Compare(match.ClockOf(b.MatchTime)), nil
	default:
		return 0, fmt.Errorf("unsupported match field %q", field)
	}
}

func cloneMatch(m match.Match) match.Match {
	m.Odds = append([]match.Odds(nil), m.Odds...)
	return m
}

package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	basecache "github.com/fotisolgr/my-bet-app/internal/platform/cache"
)

const matchKeyPrefix = "match:"

// MatchRepository caches reads of the wrapped repository and drops every
// cached match entry on a successful write.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) ExistsByFixture(ctx context.Context, fixture match.Fixture) (bool, error) {
	return r.next.ExistsByFixture(ctx, fixture)
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	key := matchKeyPrefix + "id:" + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return cloneMatch(cached.value), cached.exists, nil
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter, ordering match.Ordering, page match.PageRequest) (match.Page, error) {
	key := matchKeyPrefix + "list:" + listKey(filter, ordering, page)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.List(ctx, filter, ordering, page)
	})
	if err != nil {
		return match.Page{}, err
	}

	cached, _ := v.(match.Page)
	items := make([]match.Match, 0, len(cached.Items))
	for _, item := range cached.Items {
		items = append(items, cloneMatch(item))
	}
	return match.Page{Items: items, Total: cached.Total}, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) (match.Match, error) {
	created, err := r.next.Create(ctx, m)
	if err != nil {
		return match.Match{}, err
	}
	r.invalidate(ctx)
	return created, nil
}

func (r *MatchRepository) Update(ctx context.Context, m match.Match) (match.Match, error) {
	updated, err := r.next.Update(ctx, m)
	if err != nil {
		return match.Match{}, err
	}
	r.invalidate(ctx)
	return updated, nil
}

func (r *MatchRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := r.next.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		r.invalidate(ctx)
	}
	return deleted, nil
}

func (r *MatchRepository) invalidate(ctx context.Context) {
	r.cache.DeletePrefix(ctx, matchKeyPrefix)
}

type cachedMatchByID struct {
	value  match.Match
	exists bool
}

func listKey(filter match.Filter, ordering match.Ordering, page match.PageRequest) string {
	var b strings.Builder
	for _, c := range filter.Constraints {
		b.WriteString(string(c.Field))
		b.WriteByte('=')
		if t, ok := c.Value.(time.Time); ok {
			b.WriteString(match.FormatDate(t))
		} else {
			fmt.Fprint(&b, c.Value)
		}
		b.WriteByte(';')
	}
	b.WriteByte('|')
	for _, term := range ordering.Terms {
		b.WriteString(string(term.Field))
		if term.Desc {
			b.WriteString(":desc")
		}
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(page.Page))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(page.Size))
	return b.String()
}

func cloneMatch(m match.Match) match.Match {
	m.Odds = append([]match.Odds(nil), m.Odds...)
	return m
}

package postgres

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	qb "github.com/fotisolgr/my-bet-app/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
	"github.com/sourcegraph/conc/pool"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ExistsByFixture(ctx context.Context, fixture match.Fixture) (bool, error) {
	inner, args, err := qb.Select("1").From(matchesTable).
		Where(fixtureConditions(fixture)...).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build match fixture exists query")
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS ("+inner+")", args...); err != nil {
		return false, crerr.Wrap(err, "check match fixture exists")
	}
	return exists, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From(matchesTable).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, crerr.Wrap(err, "build get match by id query")
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, crerr.Wrap(err, "get match by id")
	}

	odds, err := r.loadOdds(ctx, []int64{row.ID})
	if err != nil {
		return match.Match{}, false, err
	}

	return matchFromRow(row, odds[row.ID]), true, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) (match.Match, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "begin tx for create match")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel(matchesTable, toMatchWriteModel(m), "RETURNING id")
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "build insert match query")
	}

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return match.Match{}, fmt.Errorf("insert match: %w", match.ErrDuplicateFixture)
		}
		return match.Match{}, crerr.Wrap(err, "insert match")
	}

	if err := insertOdds(ctx, tx, id, m.Odds); err != nil {
		return match.Match{}, err
	}

	if err := tx.Commit(); err != nil {
		return match.Match{}, crerr.Wrap(err, "commit create match")
	}

	m.ID = id
	return m, nil
}

func (r *MatchRepository) Update(ctx context.Context, m match.Match) (match.Match, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "begin tx for update match")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	update, err := qb.UpdateModel(matchesTable, toMatchWriteModel(m))
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "build update match query")
	}
	query, args, err := update.
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", m.ID)).
		ToSQL()
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "build update match query")
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return match.Match{}, fmt.Errorf("update match: %w", match.ErrDuplicateFixture)
		}
		return match.Match{}, crerr.Wrap(err, "update match")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "read updated match rows")
	}
	if affected == 0 {
		return match.Match{}, fmt.Errorf("update match id=%d: %w", m.ID, match.ErrMatchNotFound)
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom(matchOddsTable).
		Where(qb.Eq("match_id", m.ID)).
		ToSQL()
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "build delete match odds query")
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return match.Match{}, crerr.Wrap(err, "delete match odds")
	}

	if err := insertOdds(ctx, tx, m.ID, m.Odds); err != nil {
		return match.Match{}, err
	}

	if err := tx.Commit(); err != nil {
		return match.Match{}, crerr.Wrap(err, "commit update match")
	}

	return m, nil
}

// Delete relies on ON DELETE CASCADE for the odds rows.
func (r *MatchRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := qb.DeleteFrom(matchesTable).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build delete match query")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrap(err, "delete match")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "read deleted match rows")
	}
	return affected > 0, nil
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter, ordering match.Ordering, page match.PageRequest) (match.Page, error) {
	conditions, err := filterConditions(filter)
	if err != nil {
		return match.Page{}, err
	}
	orderBy, err := orderByTerms(ordering)
	if err != nil {
		return match.Page{}, err
	}

	countQuery, countArgs, err := qb.Select("COUNT(1)").From(matchesTable).
		Where(conditions...).
		ToSQL()
	if err != nil {
		return match.Page{}, crerr.Wrap(err, "build count matches query")
	}
	pageQuery, pageArgs, err := qb.Select(matchColumns...).From(matchesTable).
		Where(conditions...).
		OrderBy(orderBy...).
		Limit(page.Size).
		Offset(page.Offset()).
		ToSQL()
	if err != nil {
		return match.Page{}, crerr.Wrap(err, "build select matches query")
	}

	var (
		total int64
		rows  []matchTableModel
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
			return crerr.Wrap(err, "count matches")
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if err := r.db.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
			return crerr.Wrap(err, "select matches")
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return match.Page{}, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	odds, err := r.loadOdds(ctx, ids)
	if err != nil {
		return match.Page{}, err
	}

	items := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		items = append(items, matchFromRow(row, odds[row.ID]))
	}

	return match.Page{Items: items, Total: total}, nil
}

func (r *MatchRepository) loadOdds(ctx context.Context, matchIDs []int64) (map[int64][]match.Odds, error) {
	out := make(map[int64][]match.Odds, len(matchIDs))
	if len(matchIDs) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(matchIDs))
	for _, id := range matchIDs {
		ids = append(ids, id)
	}

	query, args, err := qb.Select(matchOddsColumns...).From(matchOddsTable).
		Where(qb.In("match_id", ids)).
		OrderBy(qb.Asc("match_id"), qb.Asc("position")).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build select match odds query")
	}

	var rows []matchOddsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select match odds")
	}

	for _, row := range rows {
		out[row.MatchID] = append(out[row.MatchID], match.Odds{
			Specifier: match.Specifier(row.Specifier),
			Odd:       row.Odd,
		})
	}
	return out, nil
}

func insertOdds(ctx context.Context, tx *sqlx.Tx, matchID int64, odds []match.Odds) error {
	if len(odds) == 0 {
		return nil
	}

	b := qb.InsertInto(matchOddsTable).Columns(matchOddsColumns...)
	for i, o := range odds {
		b.Values(matchID, i, string(o.Specifier), o.Odd)
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build insert match odds query")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrap(err, "insert match odds")
	}
	return nil
}

func fixtureConditions(f match.Fixture) []qb.Condition {
	return []qb.Condition{
		qb.Eq("team_a", f.TeamA),
		qb.Eq("team_b", f.TeamB),
		qb.Eq("match_date", match.FormatDate(f.MatchDate)),
		qb.Eq("match_time", match.FormatTime(f.MatchTime)),
		qb.Eq("sport", string(f.Sport)),
	}
}

func filterConditions(filter match.Filter) ([]qb.Condition, error) {
	out := make([]qb.Condition, 0, len(filter.Constraints))
	for _, c := range filter.Constraints {
		column, err := columnForField(c.Field)
		if err != nil {
			return nil, err
		}

		switch v := c.Value.(type) {
		case time.Time:
			if c.Field == match.FieldMatchTime {
				out = append(out, qb.Eq(column, match.FormatTime(v)))
				continue
			}
			out = append(out, qb.Eq(column, match.FormatDate(v)))
		case string:
			if c.Field == match.FieldOwner {
				out = append(out, qb.Expr("LOWER("+column+") = ?", v))
				continue
			}
			out = append(out, qb.Eq(column, v))
		default:
			out = append(out, qb.Eq(column, v))
		}
	}
	return out, nil
}

// orderByTerms appends id so pages stay stable across equal sort keys.
func orderByTerms(ordering match.Ordering) ([]string, error) {
	out := make([]string, 0, len(ordering.Terms)+1)
	for _, term := range ordering.Terms {
		column, err := columnForField(term.Field)
		if err != nil {
			return nil, err
		}
		if term.Desc {
			out = append(out, qb.Desc(column))
			continue
		}
		out = append(out, qb.Asc(column))
	}
	return append(out, qb.Asc("id")), nil
}

func toMatchWriteModel(m match.Match) matchWriteModel {
	return matchWriteModel{
		Owner:       m.Owner,
		Description: m.Description,
		MatchDate:   match.FormatDate(m.MatchDate),
		MatchTime:   match.FormatTime(m.MatchTime),
		TeamA:       m.TeamA,
		TeamB:       m.TeamB,
		Sport:       string(m.Sport),
	}
}

func matchFromRow(row matchTableModel, odds []match.Odds) match.Match {
	return match.Match{
		ID:          row.ID,
		Owner:       row.Owner,
		Description: row.Description,
		MatchDate:   match.DateOf(row.MatchDate),
		MatchTime:   match.ClockOf(row.MatchTime),
		TeamA:       row.TeamA,
		TeamB:       row.TeamB,
		Sport:       match.Sport(row.Sport),
		Odds:        odds,
	}
}

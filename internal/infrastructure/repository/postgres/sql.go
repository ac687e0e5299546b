package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// matchFieldColumns whitelists the columns a filter or ordering may reference.
var matchFieldColumns = map[match.Field]string{
	match.FieldOwner:     "owner",
	match.FieldSport:     "sport",
	match.FieldMatchDate: "match_date",
	match.FieldMatchTime: "match_time",
}

func columnForField(field match.Field) (string, error) {
	column, ok := matchFieldColumns[field]
	if !ok {
		return "", fmt.Errorf("unsupported match field %q", field)
	}
	return column, nil
}

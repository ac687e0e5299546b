package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	matchesTable   = "matches"
	matchOddsTable = "match_odds"
)

var matchColumns = []string{
	"id",
	"owner",
	"description",
	"match_date",
	"match_time",
	"team_a",
	"team_b",
	"sport",
	"created_at",
	"updated_at",
}

var matchOddsColumns = []string{
	"match_id",
	"position",
	"specifier",
	"odd",
}

type matchTableModel struct {
	ID          int64     `db:"id"`
	Owner       string    `db:"owner"`
	Description string    `db:"description"`
	MatchDate   time.Time `db:"match_date"`
	MatchTime   time.Time `db:"match_time"`
	TeamA       string    `db:"team_a"`
	TeamB       string    `db:"team_b"`
	Sport       string    `db:"sport"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// matchWriteModel binds date and time as text so the server never shifts them by zone.
type matchWriteModel struct {
	Owner       string `db:"owner,noupdate"`
	Description string `db:"description"`
	MatchDate   string `db:"match_date"`
	MatchTime   string `db:"match_time"`
	TeamA       string `db:"team_a"`
	TeamB       string `db:"team_b"`
	Sport       string `db:"sport"`
}

type matchOddsTableModel struct {
	MatchID   int64           `db:"match_id"`
	Position  int             `db:"position"`
	Specifier string          `db:"specifier"`
	Odd       decimal.Decimal `db:"odd"`
}

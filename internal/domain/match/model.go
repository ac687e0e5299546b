package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// RequiredOddsCount is the number of odds every match carries, one per specifier.
	RequiredOddsCount = 3
)

type Sport string

const (
	SportFootball   Sport = "FOOTBALL"
	SportBasketball Sport = "BASKETBALL"
)

var sports = []Sport{SportFootball, SportBasketball}

// ParseSport matches case-insensitively.
func ParseSport(value string) (Sport, error) {
	candidate := strings.TrimSpace(value)
	for _, s := range sports {
		if strings.EqualFold(string(s), candidate) {
			return s, nil
		}
	}
	return "", fmt.Errorf("Invalid sport value: %s. Allowed values are: %s.", value, joinValues(sports))
}

type Specifier string

const (
	SpecifierWin  Specifier = "WIN"
	SpecifierDraw Specifier = "DRAW"
	SpecifierLose Specifier = "LOSE"
)

// Specifiers lists the outcomes in the order they are checked.
var Specifiers = []Specifier{SpecifierWin, SpecifierDraw, SpecifierLose}

func ParseSpecifier(value string) (Specifier, error) {
	candidate := strings.TrimSpace(value)
	for _, s := range Specifiers {
		if strings.EqualFold(string(s), candidate) {
			return s, nil
		}
	}
	return "", fmt.Errorf("Invalid specifier value: %s. Allowed values are: %s.", value, joinValues(Specifiers))
}

// Odds is one outcome price of a match.
type Odds struct {
	Specifier Specifier
	Odd       decimal.Decimal
}

// Match is a scheduled fixture owned by the user who created it.
type Match struct {
	ID          int64
	Owner       string
	Description string
	MatchDate   time.Time
	MatchTime   time.Time
	TeamA       string
	TeamB       string
	Sport       Sport
	Odds        []Odds
}

// Fixture is the slot a match occupies. Team order matters.
type Fixture struct {
	TeamA     string
	TeamB     string
	MatchDate time.Time
	MatchTime time.Time
	Sport     Sport
}

func (m Match) Fixture() Fixture {
	return Fixture{
		TeamA:     m.TeamA,
		TeamB:     m.TeamB,
		MatchDate: m.MatchDate,
		MatchTime: m.MatchTime,
		Sport:     m.Sport,
	}
}

func (f Fixture) Key() string {
	return strings.Join([]string{
		f.TeamA,
		f.TeamB,
		FormatDate(f.MatchDate),
		FormatTime(f.MatchTime),
		string(f.Sport),
	}, "|")
}

func (f Fixture) String() string {
	return fmt.Sprintf("%s match between %s and %s at %s %s",
		f.Sport, f.TeamA, f.TeamB, FormatDate(f.MatchDate), FormatTime(f.MatchTime))
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// ParseTime keeps minute precision on the zero date. The hour must be two digits.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) != len(TimeLayout) {
		return time.Time{}, fmt.Errorf("parsing time %q as %q: want HH:MM", value, TimeLayout)
	}
	return time.Parse(TimeLayout, value)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ClockOf strips the date part so times loaded from any store compare equal.
func ClockOf(t time.Time) time.Time {
	return time.Date(0, time.January, 1, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// DateOf strips the clock part.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, " or ")
}

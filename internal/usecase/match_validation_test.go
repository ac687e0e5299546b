package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/shopspring/decimal"
)

func oddPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func validMatchInput() MatchInput {
	return MatchInput{
		Description: "Derby",
		MatchDate:   "2025-08-22",
		MatchTime:   "13:52",
		TeamA:       "AEK",
		TeamB:       "PAO",
		Sport:       match.SportBasketball,
		Odds: []OddsInput{
			{Specifier: match.SpecifierWin, Odd: oddPtr("1.5")},
			{Specifier: match.SpecifierDraw, Odd: oddPtr("3.2")},
			{Specifier: match.SpecifierLose, Odd: oddPtr("4.0")},
		},
	}
}

func requireFieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return verr.Fields
}

func TestValidateMatchInput_Valid(t *testing.T) {
	t.Parallel()

	if err := ValidateMatchInput(context.Background(), validMatchInput()); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestValidateMatchInput_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(in *MatchInput)
		want   map[string]string
	}{
		{
			name:   "same teams ignoring case",
			mutate: func(in *MatchInput) { in.TeamB = "aek" },
			want:   map[string]string{"teamB": "Team A and Team B must be different"},
		},
		{
			name:   "two odds",
			mutate: func(in *MatchInput) { in.Odds = in.Odds[:2] },
			want:   map[string]string{"odds": "Odds list must contain exactly 3 items"},
		},
		{
			name:   "missing win",
			mutate: func(in *MatchInput) { in.Odds[0].Specifier = match.SpecifierDraw },
			want:   map[string]string{"odds": "Must have exactly one 'WIN' specifier"},
		},
		{
			name:   "duplicate lose reports missing draw",
			mutate: func(in *MatchInput) { in.Odds[1].Specifier = match.SpecifierLose },
			want:   map[string]string{"odds": "Must have exactly one 'DRAW' specifier"},
		},
		{
			name:   "empty odds",
			mutate: func(in *MatchInput) { in.Odds = nil },
			want:   map[string]string{"odds": "Odds list cannot be null/empty"},
		},
		{
			name: "blank presence fields",
			mutate: func(in *MatchInput) {
				in.MatchDate = " "
				in.MatchTime = ""
				in.TeamA = ""
				in.Sport = ""
			},
			want: map[string]string{
				"matchDate": "Match date is required",
				"matchTime": "Match time is required",
				"teamA":     "Team A is required",
				"sport":     "Sport is required",
			},
		},
		{
			name: "odds entry fields",
			mutate: func(in *MatchInput) {
				in.Odds[1].Specifier = ""
				in.Odds[2].Odd = nil
			},
			want: map[string]string{
				"odds[1].specifier": "Specifier is required",
				"odds[2].odd":       "Odd is required",
				"odds":              "Must have exactly one 'DRAW' specifier",
			},
		},
		{
			name: "violations are collected together",
			mutate: func(in *MatchInput) {
				in.TeamB = "Aek"
				in.Odds = append(in.Odds, OddsInput{Specifier: match.SpecifierWin, Odd: oddPtr("2")})
			},
			want: map[string]string{
				"teamB": "Team A and Team B must be different",
				"odds":  "Odds list must contain exactly 3 items",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := validMatchInput()
			tc.mutate(&input)

			got := requireFieldErrors(t, ValidateMatchInput(context.Background(), input))
			if len(got) != len(tc.want) {
				t.Fatalf("unexpected violations:\nwant: %v\ngot:  %v", tc.want, got)
			}
			for field, message := range tc.want {
				if got[field] != message {
					t.Fatalf("unexpected message for %s: got=%q want=%q", field, got[field], message)
				}
			}
		})
	}
}

func TestValidateMatchInput_DoesNotMutate(t *testing.T) {
	t.Parallel()

	input := validMatchInput()
	input.TeamA = "  aek "
	_ = ValidateMatchInput(context.Background(), input)

	if input.TeamA != "  aek " {
		t.Fatalf("input was mutated: %q", input.TeamA)
	}
}

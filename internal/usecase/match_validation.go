package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// MatchInput is the write payload for create and update. Date and time stay textual until the
// service parses them so presence is checked before shape.
type MatchInput struct {
	Description string      `json:"description"`
	MatchDate   string      `json:"matchDate" validate:"notblank"`
	MatchTime   string      `json:"matchTime" validate:"notblank"`
	TeamA       string      `json:"teamA" validate:"notblank"`
	TeamB       string      `json:"teamB" validate:"notblank"`
	Sport       match.Sport `json:"sport" validate:"required"`
	Odds        []OddsInput `json:"odds" validate:"required,min=1,dive"`
}

type OddsInput struct {
	Specifier match.Specifier  `json:"specifier" validate:"required"`
	Odd       *decimal.Decimal `json:"odd" validate:"required"`
}

var presenceMessages = map[string]string{
	"MatchDate": "Match date is required",
	"MatchTime": "Match time is required",
	"TeamA":     "Team A is required",
	"TeamB":     "Team B is required",
	"Sport":     "Sport is required",
	"Odds":      "Odds list cannot be null/empty",
	"Specifier": "Specifier is required",
	"Odd":       "Odd is required",
}

const (
	fieldTeamB = "teamB"
	fieldOdds  = "odds"
)

type matchRule func(input MatchInput, errs *ValidationError)

var matchValidator = newMatchValidator()

var matchRules = []matchRule{
	teamsDifferRule,
	oddsShapeRule,
}

func newMatchValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateMatchInput collects every rule violation at once. It never touches storage.
func ValidateMatchInput(ctx context.Context, input MatchInput) error {
	errs := &ValidationError{}

	if err := matchValidator.StructCtx(ctx, input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		for _, fe := range fieldErrs {
			message, ok := presenceMessages[fe.StructField()]
			if !ok {
				message = fe.Error()
			}
			errs.add(fieldPath(fe.Namespace()), message)
		}
	}

	for _, rule := range matchRules {
		rule(input, errs)
	}

	if errs.empty() {
		return nil
	}
	return errs
}

// fieldPath drops the struct name prefix from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func teamsDifferRule(input MatchInput, errs *ValidationError) {
	teamA := strings.TrimSpace(input.TeamA)
	teamB := strings.TrimSpace(input.TeamB)
	if teamA == "" || teamB == "" {
		return
	}
	if strings.EqualFold(teamA, teamB) {
		errs.add(fieldTeamB, "Team A and Team B must be different")
	}
}

func oddsShapeRule(input MatchInput, errs *ValidationError) {
	if len(input.Odds) == 0 {
		return
	}
	if len(input.Odds) != match.RequiredOddsCount {
		errs.add(fieldOdds, fmt.Sprintf("Odds list must contain exactly %d items", match.RequiredOddsCount))
		return
	}

	counts := make(map[match.Specifier]int, len(match.Specifiers))
	for _, odds := range input.Odds {
		counts[odds.Specifier]++
	}
	for _, specifier := range match.Specifiers {
		if counts[specifier] != 1 {
			errs.add(fieldOdds, fmt.Sprintf("Must have exactly one '%s' specifier", specifier))
			return
		}
	}
}

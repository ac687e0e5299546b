package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/fotisolgr/my-bet-app/internal/domain/user"
	"github.com/fotisolgr/my-bet-app/internal/platform/logging"
	"github.com/fotisolgr/my-bet-app/internal/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPage     = 0
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// ListMatchesInput carries paging, sorting and filter parameters for a listing.
type ListMatchesInput struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
	Owner     string
	Sport     string
	MatchDate *time.Time
}

// DefaultListMatchesInput returns the listing parameters used when the caller supplies none.
func DefaultListMatchesInput() ListMatchesInput {
	return ListMatchesInput{
		Page:      DefaultPage,
		Size:      DefaultPageSize,
		SortBy:    match.DefaultSortBy,
		Direction: match.DefaultDirection,
	}
}

type MatchService struct {
	matchRepo match.Repository
	logger    *logging.Logger
}

func NewMatchService(matchRepo match.Repository, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo: matchRepo,
		logger:    logger,
	}
}

func (s *MatchService) List(ctx context.Context, input ListMatchesInput) (MatchPage, error) {
	ctx, span := usecaseTracer.Start(ctx, "usecase.MatchService.List")
	defer span.End()

	if input.Page < 0 {
		return MatchPage{}, fmt.Errorf("%w: page must not be negative", ErrInvalidInput)
	}
	if input.Size < 1 {
		return MatchPage{}, fmt.Errorf("%w: size must be positive", ErrInvalidInput)
	}
	if input.Size > MaxPageSize {
		return MatchPage{}, fmt.Errorf("%w: size must not exceed %d", ErrInvalidInput, MaxPageSize)
	}
	if input.Page > math.MaxInt/input.Size {
		return MatchPage{}, fmt.Errorf("%w: page %d is out of range", ErrInvalidInput, input.Page)
	}

	filter := match.BuildFilter(input.Owner, input.Sport, input.MatchDate)
	ordering, known := match.BuildOrdering(input.SortBy, input.Direction)
	if !known {
		s.logger.WarnContext(ctx, "unknown sort key, falling back to default ordering",
			"sort_by", input.SortBy,
			"fallback", match.DefaultSortBy,
		)
	}

	pageReq := match.PageRequest{Page: input.Page, Size: input.Size}
	page, err := s.matchRepo.List(ctx, filter, ordering, pageReq)
	if err != nil {
		tracing.Fail(span, err)
		return MatchPage{}, fmt.Errorf("list matches: %w", err)
	}

	return toMatchPage(page, pageReq), nil
}

func (s *MatchService) Get(ctx context.Context, id int64) (MatchRecord, error) {
	ctx, span := usecaseTracer.Start(ctx, "usecase.MatchService.Get", attribute.Int64("match.id", id))
	defer span.End()

	m, err := s.getExisting(ctx, id)
	if err != nil {
		return MatchRecord{}, err
	}
	return ToMatchRecord(m), nil
}

func (s *MatchService) Create(ctx context.Context, identity user.Identity, input MatchInput) (MatchRecord, error) {
	ctx, span := usecaseTracer.Start(ctx, "usecase.MatchService.Create")
	defer span.End()

	if err := ValidateMatchInput(ctx, input); err != nil {
		return MatchRecord{}, err
	}

	owner, ok := identity.Name()
	if !ok {
		return MatchRecord{}, fmt.Errorf("%w: no user found in context", ErrUnauthorized)
	}

	candidate, err := buildMatch(input)
	if err != nil {
		return MatchRecord{}, err
	}
	candidate.Owner = owner

	fixture := candidate.Fixture()
	exists, err := s.matchRepo.ExistsByFixture(ctx, fixture)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("check match fixture: %w", err)
	}
	if exists {
		return MatchRecord{}, fmt.Errorf("%w: %s already exists", ErrAlreadyExists, fixture)
	}

	created, err := s.matchRepo.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, match.ErrDuplicateFixture) {
			return MatchRecord{}, fmt.Errorf("%w: %s already exists", ErrAlreadyExists, fixture)
		}
		tracing.Fail(span, err)
		return MatchRecord{}, fmt.Errorf("create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created",
		"match_id", created.ID,
		"owner", created.Owner,
		"sport", string(created.Sport),
	)

	return ToMatchRecord(created), nil
}

func (s *MatchService) Update(ctx context.Context, identity user.Identity, id int64, input MatchInput) (MatchRecord, error) {
	ctx, span := usecaseTracer.Start(ctx, "usecase.MatchService.Update", attribute.Int64("match.id", id))
	defer span.End()

	if err := ValidateMatchInput(ctx, input); err != nil {
		return MatchRecord{}, err
	}

	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return MatchRecord{}, err
	}
	if err := authorizeOwner(identity, existing, "update"); err != nil {
		return MatchRecord{}, err
	}

	replacement, err := buildMatch(input)
	if err != nil {
		return MatchRecord{}, err
	}
	replacement.ID = existing.ID
	replacement.Owner = existing.Owner

	updated, err := s.matchRepo.Update(ctx, replacement)
	if err != nil {
		switch {
		case errors.Is(err, match.ErrDuplicateFixture):
			return MatchRecord{}, fmt.Errorf("%w: %s already exists", ErrAlreadyExists, replacement.Fixture())
		case errors.Is(err, match.ErrMatchNotFound):
			return MatchRecord{}, fmt.Errorf("%w: match with id %d does not exist", ErrNotFound, id)
		}
		tracing.Fail(span, err)
		return MatchRecord{}, fmt.Errorf("update match: %w", err)
	}

	s.logger.InfoContext(ctx, "match updated",
		"match_id", updated.ID,
		"owner", updated.Owner,
	)

	return ToMatchRecord(updated), nil
}

func (s *MatchService) Delete(ctx context.Context, identity user.Identity, id int64) error {
	ctx, span := usecaseTracer.Start(ctx, "usecase.MatchService.Delete", attribute.Int64("match.id", id))
	defer span.End()

	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(identity, existing, "delete"); err != nil {
		return err
	}

	deleted, err := s.matchRepo.Delete(ctx, id)
	if err != nil {
		tracing.Fail(span, err)
		return fmt.Errorf("delete match: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: match with id %d does not exist", ErrNotFound, id)
	}

	s.logger.InfoContext(ctx, "match deleted",
		"match_id", id,
		"owner", existing.Owner,
	)
	return nil
}

func (s *MatchService) getExisting(ctx context.Context, id int64) (match.Match, error) {
	m, exists, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match with id %d does not exist", ErrNotFound, id)
	}
	return m, nil
}

func authorizeOwner(identity user.Identity, m match.Match, action string) error {
	name, ok := identity.Name()
	if !ok {
		return fmt.Errorf("%w: no user found in context", ErrUnauthorized)
	}
	if name != m.Owner {
		return fmt.Errorf("%w: you do not have permission to %s this match", ErrForbidden, action)
	}
	return nil
}

// buildMatch parses and normalizes a validated input. Owner and ID are left for the caller.
func buildMatch(input MatchInput) (match.Match, error) {
	matchDate, err := match.ParseDate(input.MatchDate)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: matchDate must use format YYYY-MM-DD", ErrInvalidInput)
	}
	matchTime, err := match.ParseTime(input.MatchTime)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: matchTime must use format HH:MM", ErrInvalidInput)
	}

	odds := make([]match.Odds, 0, len(input.Odds))
	for _, o := range input.Odds {
		odds = append(odds, match.Odds{
			Specifier: o.Specifier,
			Odd:       *o.Odd,
		})
	}

	return match.Match{
		Description: normalizeText(input.Description),
		MatchDate:   matchDate,
		MatchTime:   matchTime,
		TeamA:       normalizeText(input.TeamA),
		TeamB:       normalizeText(input.TeamB),
		Sport:       input.Sport,
		Odds:        odds,
	}, nil
}

func normalizeText(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

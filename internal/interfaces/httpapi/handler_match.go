package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/fotisolgr/my-bet-app/internal/domain/match"
	"github.com/fotisolgr/my-bet-app/internal/domain/user"
	"github.com/fotisolgr/my-bet-app/internal/usecase"
	"github.com/shopspring/decimal"
)

type matchRequest struct {
	Description string        `json:"description" validate:"max=1000"`
	MatchDate   string        `json:"matchDate"`
	MatchTime   string        `json:"matchTime"`
	TeamA       string        `json:"teamA" validate:"max=255"`
	TeamB       string        `json:"teamB" validate:"max=255"`
	Sport       string        `json:"sport"`
	Odds        []oddsRequest `json:"odds" validate:"max=16"`
}

type oddsRequest struct {
	Specifier string           `json:"specifier"`
	Odd       *decimal.Decimal `json:"odd"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	input, err := listMatchesInputFromQuery(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.matchService.List(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed",
			"page", input.Page,
			"size", input.Size,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, page)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := matchIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, record)
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	input, err := h.decodeMatchRequest(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.matchService.Create(ctx, identityFromContext(ctx), input)
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed",
			"team_a", input.TeamA,
			"team_b", input.TeamB,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, record)
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
	defer span.End()

	matchID, err := matchIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	input, err := h.decodeMatchRequest(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.matchService.Update(ctx, identityFromContext(ctx), matchID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, record)
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	matchID, err := matchIDFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.matchService.Delete(ctx, identityFromContext(ctx), matchID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeMatchRequest(ctx context.Context, r *http.Request) (usecase.MatchInput, error) {
	var req matchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return usecase.MatchInput{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validateRequest(ctx, req); err != nil {
		return usecase.MatchInput{}, err
	}

	return req.toInput()
}

// toInput leaves blank enum values empty so the presence rules report them.
func (req matchRequest) toInput() (usecase.MatchInput, error) {
	input := usecase.MatchInput{
		Description: req.Description,
		MatchDate:   req.MatchDate,
		MatchTime:   req.MatchTime,
		TeamA:       req.TeamA,
		TeamB:       req.TeamB,
	}

	if strings.TrimSpace(req.Sport) != "" {
		sport, err := match.ParseSport(req.Sport)
		if err != nil {
			return usecase.MatchInput{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
		}
		input.Sport = sport
	}

	if req.Odds != nil {
		input.Odds = make([]usecase.OddsInput, 0, len(req.Odds))
	}
	for _, o := range req.Odds {
		item := usecase.OddsInput{Odd: o.Odd}
		if strings.TrimSpace(o.Specifier) != "" {
			specifier, err := match.ParseSpecifier(o.Specifier)
			if err != nil {
				return usecase.MatchInput{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
			}
			item.Specifier = specifier
		}
		input.Odds = append(input.Odds, item)
	}

	return input, nil
}

func listMatchesInputFromQuery(q url.Values) (usecase.ListMatchesInput, error) {
	input := usecase.DefaultListMatchesInput()

	var err error
	if input.Page, err = intQuery(q, "page", input.Page); err != nil {
		return usecase.ListMatchesInput{}, err
	}
	if input.Size, err = intQuery(q, "size", input.Size); err != nil {
		return usecase.ListMatchesInput{}, err
	}
	if v := strings.TrimSpace(q.Get("sortBy")); v != "" {
		input.SortBy = v
	}
	if v := strings.TrimSpace(q.Get("direction")); v != "" {
		input.Direction = v
	}
	input.Owner = q.Get("owner")
	input.Sport = q.Get("sport")

	if raw := strings.TrimSpace(q.Get("matchDate")); raw != "" {
		date, err := match.ParseDate(raw)
		if err != nil {
			return usecase.ListMatchesInput{}, fmt.Errorf("%w: matchDate must be yyyy-MM-dd, got %q", usecase.ErrInvalidInput, raw)
		}
		input.MatchDate = &date
	}

	return input, nil
}

func intQuery(q url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", usecase.ErrInvalidInput, key, raw)
	}
	return v, nil
}

func matchIDFromPath(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("matchId"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: matchId must be an integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

func identityFromContext(ctx context.Context) user.Identity {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Anonymous()
	}
	return user.IdentityOf(principal)
}

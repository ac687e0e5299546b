package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fotisolgr/my-bet-app/internal/platform/logging"
	"github.com/fotisolgr/my-bet-app/internal/platform/tracing"
	"github.com/fotisolgr/my-bet-app/internal/usecase"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = tracing.New("my-bet-app/internal/interfaces/httpapi", "httpapi.Handler.")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return apiTracer.Start(ctx, name)
}

type Handler struct {
	matchService *usecase.MatchService
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(matchService *usecase.MatchService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService: matchService,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateRequest checks transport-level constraints only. Domain rules run in the service.
func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type Handler struct {
	fixtureService       *usecase.FixtureService
	matchService         *usecase.MatchService
	statsService         *usecase.StatsService
	resultService        *usecase.ResultService
	importService        *usecase.ImportService
	defaultImportTargets []usecase.ImportTarget
	logger               *logging.Logger
	validator            *validator.Validate
	now                  func() time.Time
}

func NewHandler(
	fixtureService *usecase.FixtureService,
	matchService *usecase.MatchService,
	statsService *usecase.StatsService,
	resultService *usecase.ResultService,
	importService *usecase.ImportService,
	defaultImportTargets []usecase.ImportTarget,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		fixtureService:       fixtureService,
		matchService:         matchService,
		statsService:         statsService,
		resultService:        resultService,
		importService:        importService,
		defaultImportTargets: defaultImportTargets,
		logger:               logger,
		validator:            validator.New(),
		now:                  time.Now,
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Ping")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"message": "matchfeed is running",
		"now":     h.now().UTC().Format(time.RFC3339Nano),
	})
}

func parseMatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid match id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

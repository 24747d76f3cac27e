package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type importTargetRequest struct {
	LeagueID int64 `json:"league_id" validate:"gt=0"`
	Season   int   `json:"season" validate:"gt=0"`
}

type importRequest struct {
	Targets []importTargetRequest `json:"targets" validate:"omitempty,dive"`
}

func (h *Handler) SimulateMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SimulateMatches")
	defer span.End()

	updated, err := h.resultService.GenerateResults(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "simulate matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"message": "matches simulated",
		"updated": updated,
	})
}

func (h *Handler) RunImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunImport")
	defer span.End()

	if h.importService == nil {
		writeError(ctx, w, fmt.Errorf("%w: import service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeImportRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	targets := h.defaultImportTargets
	if len(req.Targets) > 0 {
		targets = make([]usecase.ImportTarget, 0, len(req.Targets))
		for _, item := range req.Targets {
			targets = append(targets, usecase.ImportTarget{LeagueID: item.LeagueID, Season: item.Season})
		}
	}

	reports, err := h.importService.Import(ctx, targets)
	if err != nil && len(reports) == 0 {
		h.logger.WarnContext(ctx, "run import failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]importReportDTO, 0, len(reports))
	for _, report := range reports {
		items = append(items, importReportToDTO(report))
	}

	// Per-target failures are reported inline; the request itself succeeded.
	status := http.StatusOK
	if err != nil {
		h.logger.WarnContext(ctx, "import finished with failures", "error", err)
		status = http.StatusMultiStatus
	}

	writeSuccess(ctx, w, status, map[string]any{"reports": items})
}

const maxImportRequestBytes = 64 << 10

func decodeImportRequest(r *http.Request) (importRequest, error) {
	if r.Body == nil {
		return importRequest{}, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportRequestBytes))
	if err != nil {
		return importRequest{}, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return importRequest{}, nil
	}

	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	var req importRequest
	if err := decoder.Decode(&req); err != nil {
		return importRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

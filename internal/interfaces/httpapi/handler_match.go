package httpapi

import (
	"net/http"
)

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	items, err := h.fixtureService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	fixtures := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		fixtures = append(fixtures, fixtureToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"fixtures": fixtures})
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := parseMatchID(r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"match": matchToDTO(ctx, item)})
}

func (h *Handler) GetMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchStats")
	defer span.End()

	matchID, err := parseMatchID(r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.statsService.GetMatchStatistics(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match statistics failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"stats": stats})
}

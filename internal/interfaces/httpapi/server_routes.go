package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /api/ping", handler.Ping)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /api/match/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /api/match/{matchID}/stats", handler.GetMatchStats)
	// Generates results for every match whose fixture is still scheduled.
	mux.HandleFunc("POST /api/simulate", handler.SimulateMatches)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /api/import", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunImport)))
}

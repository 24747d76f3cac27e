package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireInternalJobToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	tests := []struct {
		name       string
		configured string
		provided   string
		want       int
	}{
		{name: "not configured", configured: "", provided: "anything", want: http.StatusServiceUnavailable},
		{name: "missing header", configured: "secret", provided: "", want: http.StatusUnauthorized},
		{name: "wrong token", configured: "secret", provided: "secreT", want: http.StatusUnauthorized},
		{name: "valid token", configured: "secret", provided: " secret ", want: http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
			if tt.provided != "" {
				req.Header.Set(internalJobTokenHeader, tt.provided)
			}
			rec := httptest.NewRecorder()

			RequireInternalJobToken(tt.configured, next).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

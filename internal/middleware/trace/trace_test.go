package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"moneyboard/internal/log"
)

func TestHandlerAssignsRequestID(t *testing.T) {
	var seen string
	m := NewMiddleware(nil, nil)
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/categories/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a UUID", seen)
	}
	if rr.Header().Get(HeaderRequestID) != seen {
		t.Errorf("response header = %q, context = %q", rr.Header().Get(HeaderRequestID), seen)
	}
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHandlerKeepsValidIncomingID(t *testing.T) {
	incoming := uuid.NewString()
	tests := map[string]bool{incoming: true, "not-a-uuid": false}

	for header, kept := range tests {
		m := NewMiddleware(nil, nil)
		var seen string
		h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, header)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if (seen == header) != kept {
			t.Errorf("header %q: got id %q, kept=%v", header, seen, kept)
		}
	}
}

func TestHandlerLogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Level: log.DefaultConfig().Level, Component: log.ComponentHTTP})
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.9" })

	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/expenses/", nil))

	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=500", "client_ip=203.0.113.9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if got := m.GetMetrics(); got.TotalRequests != 1 || got.ServerErrors != 1 {
		t.Errorf("metrics = %+v", got)
	}
}

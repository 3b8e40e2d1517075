package log

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moneyboard/internal/core"
)

func TestNewWritesComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentGateway, Output: buf})
	logger.Info("request sent", FieldPath, "/expenses/")

	out := buf.String()
	if !strings.Contains(out, "component=gateway") || !strings.Contains(out, "path=/expenses/") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Config{Level: slog.LevelInfo, Format: "json", Output: buf}).Info("hello")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected JSON output, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestMiddlewareCarriesLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: slog.LevelInfo, Output: buf})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("expected request id in output: %s", buf.String())
	}

	buf.Reset()
	h = Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(buf.String(), "request_id") {
		t.Fatalf("an empty id should not be logged: %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != ComponentApp {
		t.Fatalf("expected fallback logger")
	}
}

func TestStructuredLoggerError(t *testing.T) {
	buf := &bytes.Buffer{}
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: buf}))
	sl.LogError(context.Background(), "create failed", errors.New("boom"), ComponentService, OpCreate, nil)
	out := buf.String()
	if !strings.Contains(out, "error=boom") || !strings.Contains(out, "operation=create") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: buf}))
	ctx := context.Background()

	sl.LogError(ctx, "delete failed", fmt.Errorf("delete category 9: %w", core.ErrNotFound), ComponentStorage, OpDelete, nil)
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error_type=not_found_error") {
		t.Fatalf("not found should log at warn: %s", out)
	}

	buf.Reset()
	sl.LogCategoryChanged(ctx, OpCreate, 4, "Groceries")
	if out := buf.String(); !strings.Contains(out, "Category created") || !strings.Contains(out, "category_id=4") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestErrorTypeOf(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{core.ErrNotFound, ErrorTypeNotFound},
		{fmt.Errorf("wrap: %w", core.ErrInvalidAmount), ErrorTypeValidation},
		{&core.MalformedError{ID: 3, Reason: "missing date"}, ErrorTypeMalformed},
		{context.DeadlineExceeded, ErrorTypeTimeout},
		{errors.New("disk full"), ErrorTypeInternal},
	}
	for _, tc := range cases {
		if got := ErrorTypeOf(tc.err); got != tc.want {
			t.Errorf("ErrorTypeOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

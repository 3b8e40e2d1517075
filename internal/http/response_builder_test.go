package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"moneyboard/internal/core"
	"moneyboard/internal/log"
	"moneyboard/internal/storage"
	"moneyboard/internal/validate"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("X-Test", "1").Body(map[string]int{"id": 7}).Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status: %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" || rec.Header().Get("X-Test") != "1" {
		t.Errorf("headers: %v", rec.Header())
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["id"] != 7 {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestErrorResponseMapping(t *testing.T) {
	s := &Server{logger: log.Discard()}
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("get: %w", core.ErrNotFound), http.StatusNotFound, "Expense not found"},
		{"in use", fmt.Errorf("category 3: %w", storage.ErrCategoryInUse), http.StatusBadRequest, "category 3: category has associated transactions"},
		{"bad month", core.ErrInvalidMonth, http.StatusBadRequest, "invalid month"},
		{"validation", validate.Errors{core.FieldDate: "date_required"}, http.StatusBadRequest, "validation failed"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/expenses/1", nil)
			s.errorResponse(r, "Expense", tc.err).Write(rec)

			if rec.Code != tc.status {
				t.Errorf("status: got %d, want %d", rec.Code, tc.status)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tc.message {
				t.Errorf("message: got %q, want %q", body.Error, tc.message)
			}
		})
	}
}

func TestValidationErrorsAreTranslated(t *testing.T) {
	s := &Server{logger: log.Discard()}
	r := httptest.NewRequest(http.MethodPost, "/api/expenses", nil)
	r.Header.Set("Accept-Language", "es")
	rec := httptest.NewRecorder()
	s.errorResponse(r, "Expense", validate.Errors{core.FieldCategory: "category_required"}).Write(rec)

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Fields[core.FieldCategory] != "La categoría es obligatoria" {
		t.Errorf("unexpected fields %+v", body.Fields)
	}
}

package http

import (
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r, s.now())
	if err != nil {
		s.errorResponse(r, "summary", err).Write(w)
		return
	}
	summary, err := s.dashboard.Summary(r.Context(), p)
	if err != nil {
		s.errorResponse(r, "summary", err).Write(w)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := s.dashboard.Trend(r.Context())
	if err != nil {
		s.errorResponse(r, "trend", err).Write(w)
		return
	}
	NewJSONResponse().Body(trend).Write(w)
}

package http

import (
	"net/http"
	"strings"

	"moneyboard/internal/core"
	"moneyboard/internal/validate"
)

// label is the capitalised entity name used in messages.
func label(kind core.Kind) string {
	s := kind.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *Server) handleListTransactions(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r)
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		txs, err := s.ledger.ListTransactions(r.Context(), kind, f)
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		if txs == nil {
			txs = []core.Transaction{}
		}
		NewJSONResponse().Body(txs).Write(w)
	}
}

func (s *Server) handleGetTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		tx, err := s.ledger.GetTransaction(r.Context(), kind, id)
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		NewJSONResponse().Body(tx).Write(w)
	}
}

// handleCreateTransaction validates the whole draft first so every failing
// field is reported in one response.
func (s *Server) handleCreateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft core.TransactionDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		cats, err := s.ledger.ListCategories(r.Context())
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		if errs := validate.Draft(draft, cats); !errs.Valid() {
			s.errorResponse(r, label(kind), errs).Write(w)
			return
		}

		tx, err := s.ledger.CreateTransaction(r.Context(), kind, draft.Input())
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		NewJSONResponse().Status(http.StatusCreated).Body(tx).Write(w)
	}
}

func (s *Server) handleUpdateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		var patch core.TransactionPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		tx, err := s.ledger.UpdateTransaction(r.Context(), kind, id, patch)
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		NewJSONResponse().Body(tx).Write(w)
	}
}

func (s *Server) handleDeleteTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		if err := s.ledger.DeleteTransaction(r.Context(), kind, id); err != nil {
			s.errorResponse(r, label(kind), err).Write(w)
			return
		}
		MessageResponse(label(kind) + " deleted successfully").Write(w)
	}
}

package http

import (
	"net/http"

	"moneyboard/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewJSONResponse().Body(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	if err := in.Validate(); err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	c, err := s.ledger.CreateCategory(r.Context(), in)
	if err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	var patch core.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	c, err := s.ledger.UpdateCategory(r.Context(), id, patch)
	if err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		s.errorResponse(r, "category", err).Write(w)
		return
	}
	MessageResponse("Category deleted successfully").Write(w)
}

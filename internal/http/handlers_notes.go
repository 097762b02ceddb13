package http

import (
	"net/http"

	applog "monotributo/internal/log"
)

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.svc.Notes.List(r.Context(), scopeOf(r))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(notes).Write(w)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	n, err := s.svc.Notes.Add(r.Context(), scopeOf(r), p.Get("title"), p.Get("content"))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(n).Write(w)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Notes.Delete(r.Context(), scopeOf(r), r.PathValue("noteID")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

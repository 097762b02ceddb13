package http

import (
	"net/http"

	"monotributo/internal/core"
	applog "monotributo/internal/log"
)

func clientFromBody(p *RequestBodyParser) core.Client {
	return core.Client{
		Name:     p.Get("name"),
		CUIT:     p.Get("cuit"),
		Category: p.Get("category"),
		Phone:    p.Get("phone"),
		Email:    p.Get("email"),
		Address:  p.Get("address"),
	}
}

// handleListClients lists the session's clients, filtered by ?q= against
// the name or CUIT.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.Clients.Search(r.Context(), sessionEmail(r), sanitizeInput(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(clients).Write(w)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Clients.Get(r.Context(), sessionEmail(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	c, err := s.svc.Clients.Create(r.Context(), sessionEmail(r), clientFromBody(p))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Client created",
		"client_id", c.ID,
		"category", c.Category,
		"operation", "create")
	NewResponse().Status(http.StatusCreated).
		Header("Location", "/api/clients/"+c.ID).
		JSON(c).
		Write(w)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	id := r.PathValue("id")
	c, err := s.svc.Clients.Update(r.Context(), sessionEmail(r), id, clientFromBody(p))
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	// The category drives the public report.
	s.svc.Reports.Invalidate(r.Context(), id)
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Clients.Delete(r.Context(), sessionEmail(r), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.svc.Reports.Invalidate(r.Context(), id)

	s.logger.InfoContext(r.Context(), "Client deleted", "client_id", id, "operation", "delete")
	NewResponse().Status(http.StatusNoContent).Write(w)
}

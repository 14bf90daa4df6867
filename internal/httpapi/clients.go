package httpapi

import (
	"net/http"

	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/log"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	clients, err := s.clients.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, newClientResponse(c))
	}
	render.JSON(w, r, out)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	client, err := s.clients.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newClientResponse(client))
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	req := &clientRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, r, bindError(err))
		return
	}

	client := domain.NewClient(req.Name, decimal.Zero)
	client.CreatedAt = s.clock.Now()
	req.apply(client)

	if err := s.clients.Create(r.Context(), client); err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "client created", log.FieldClientID, client.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newClientResponse(client))
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req := &clientRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, r, bindError(err))
		return
	}

	client, err := s.clients.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.apply(client)

	if err := s.clients.Update(r.Context(), client); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newClientResponse(client))
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.clients.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "client deleted", log.FieldClientID, id)
	render.NoContent(w, r)
}

package httpapi

import (
	"net/http"

	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/log"
	"github.com/go-chi/render"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := queryFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := s.tasks.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newTaskResponses(tasks))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newTaskResponse(task))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	req := &taskRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, r, bindError(err))
		return
	}

	task := &domain.WorkTask{CreatedAt: s.clock.Now()}
	req.apply(task)

	if err := s.tasks.Create(r.Context(), task); err != nil {
		writeError(w, r, err)
		return
	}

	// Re-read to pick up the joined client for the amount.
	created, err := s.tasks.GetByID(r.Context(), task.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "task created",
		log.FieldTaskID, created.ID, log.FieldClientID, created.ClientID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newTaskResponse(created))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req := &taskRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, r, bindError(err))
		return
	}

	task, err := s.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.apply(task)

	if err := s.tasks.Update(r.Context(), task); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newTaskResponse(updated))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

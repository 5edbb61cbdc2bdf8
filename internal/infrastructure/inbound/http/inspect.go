package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/usecases"
)

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	records := s.log.All()
	if lastParam := r.URL.Query().Get("last"); lastParam != "" {
		if n, err := strconv.Atoi(lastParam); err == nil && n > 0 {
			records = s.log.Last(n)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, usecases.Envelope{
		Status:  "success",
		Message: "Requests retrieved successfully",
		Data:    records,
	})
}

func (s *Server) handleClearRequests(w http.ResponseWriter, _ *http.Request) {
	n := s.log.Count()
	s.log.Clear()
	s.logger.Info("request log cleared", "removed", n)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, usecases.Envelope{
		Status:  "success",
		Message: "Requests cleared",
	})
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	rec, err := s.log.Get(id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		if errors.Is(err, reqlog.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, usecases.ErrorBody{Error: "not_found", Message: "request not found: " + id})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, usecases.ErrorBody{Error: "internal", Message: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, usecases.Envelope{
		Status:  "success",
		Message: "Request retrieved successfully",
		Data:    rec,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"ok": true})
}

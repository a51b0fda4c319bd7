package http

import (
	"context"
	"net/http"
	"time"

	"mywallet/internal/core"
	"mywallet/internal/log"
)

const notifyTestTimeout = 5 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleListByOwner(w http.ResponseWriter, r *http.Request) {
	q, err := ParseOwnerQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.queries.ListByOwner(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, res)
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	q, err := ParsePageQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.queries.ListAll(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, res)
}

// handleExport returns every transaction matching the filters, newest first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.queries.ExportFiltered(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, core.OK(items))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.queries.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, res)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeTransactionRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.writes.Add(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, res)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := DecodeTransactionRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.writes.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, res)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.writes.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, res)
}

// handleNotifyTest publishes the request body as a TEST alert. Delivery is
// best effort; the request is accepted either way.
func (s *Server) handleNotifyTest(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if s.alerts != nil {
		ctx, cancel := context.WithTimeout(r.Context(), notifyTestTimeout)
		defer cancel()
		if err := s.alerts.Publish(ctx, core.AlertEvent{Type: core.AlertTypeTest, Payload: payload}); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Test alert delivery failed",
				log.FieldAlertType, core.AlertTypeTest,
				log.FieldError, err)
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.ipResolver.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, &core.Result[any]{
		Status:  core.StatusFailed,
		Code:    http.StatusTooManyRequests,
		Message: "rate limit exceeded, try again later",
	})
}

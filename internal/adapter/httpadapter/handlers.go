package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/pipeline"
)

const (
	defaultTopTerms = 50
	maxFeedbackBody = 64 << 10
)

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	d, err := domain.ParseISODate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	view, err := s.svc.Day(r.Context(), d)
	if err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	m, err := time.Parse("2006-01", r.PathValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	entries, err := s.svc.Month(r.Context(), m.Year(), m.Month())
	if err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":   m.Format("2006-01"),
		"entries": entries,
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req pipeline.FeedbackRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxFeedbackBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback body")
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	res, err := s.svc.AppendFeedback(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrEmptyFeedback):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.logger.Error("append feedback failed", "error", err)
		writeError(w, http.StatusInternalServerError, "feedback could not be saved")
	case res.Duplicate:
		writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate", "dupe_key": res.Record.DupeKey})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"status": "stored", "record": res.Record})
	}
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var opts domain.KeywordOptions
	if v := q.Get("date"); v != "" {
		d, err := domain.ParseISODate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		opts.Date = d
	}
	if v := q.Get("bigrams"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bigrams must be a boolean")
			return
		}
		opts.Bigrams = b
	}
	top := defaultTopTerms
	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}

	terms, err := s.svc.Keywords(r.Context(), opts, top)
	if err != nil {
		s.logger.Error("keyword summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "keywords unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"terms": terms})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	text, err := s.svc.ContextText(r.Context())
	if err != nil {
		s.logger.Error("load context text failed", "error", err)
		writeError(w, http.StatusInternalServerError, "context unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text) //nolint:errcheck // client went away
}

// unavailable reports a failed event table load. Schema errors name the
// missing column.
func (s *Server) unavailable(w http.ResponseWriter, err error) {
	s.logger.Error("event data unavailable", "error", err)
	writeError(w, http.StatusServiceUnavailable, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

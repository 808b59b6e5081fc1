// Package httpapi serves the journal over a small JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/innervoice/pkg/analysis"
	"github.com/unowned-ai/innervoice/pkg/journal"
	"github.com/unowned-ai/innervoice/pkg/notes"
)

type Handlers struct {
	svc    *journal.Service
	logger *slog.Logger
}

func New(svc *journal.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger}
}

type noteRequest struct {
	Content     string                `json:"content"`
	UserProfile *analysis.UserProfile `json:"userProfile,omitempty"`
}

// Routes returns the API mux.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/notes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListNotes(w, r)
		case http.MethodPost:
			h.CreateNote(w, r)
		default:
			h.error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/notes/related", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.RelatedNotes(w, r)
		} else {
			h.error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/notes/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.SearchNotes(w, r)
		} else {
			h.error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/notes/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetNote(w, r)
		case http.MethodPut:
			h.UpdateNote(w, r)
		case http.MethodDelete:
			h.DeleteNote(w, r)
		default:
			h.error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.Stats(w, r)
		} else {
			h.error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return mux
}

func (h *Handlers) respond(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *Handlers) error(w http.ResponseWriter, message string, status int) {
	h.respond(w, map[string]string{"error": message}, status)
}

// serviceError maps a journal error to a status code.
func (h *Handlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, journal.ErrValidation):
		h.error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, journal.ErrNoteNotFound):
		h.error(w, "Note not found", http.StatusNotFound)
	default:
		h.logger.Error("request failed", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("err", err))
		h.error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.svc.ListNotes(r.Context(), limit, offset)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, list, http.StatusOK)
}

func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.CreateNote(r.Context(), req.Content, req.UserProfile)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, note, http.StatusCreated)
}

func (h *Handlers) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, note, http.StatusOK)
}

func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.UpdateNote(r.Context(), id, req.Content, req.UserProfile)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, note, http.StatusOK)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *Handlers) RelatedNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exclude := uuid.Nil
	if raw := q.Get("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.error(w, "Invalid note ID", http.StatusBadRequest)
			return
		}
		exclude = id
	}

	list, err := h.svc.FindRelated(r.Context(), q.Get("emotion"), exclude)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, list, http.StatusOK)
}

func (h *Handlers) SearchNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := notes.Filter{Query: q.Get("q")}
	for _, e := range strings.Split(q.Get("emotions"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			f.Emotions = append(f.Emotions, e)
		}
	}
	var err error
	if f.From, err = parseTime(q.Get("from")); err != nil {
		h.error(w, "Invalid 'from' date", http.StatusBadRequest)
		return
	}
	if f.To, err = parseTime(q.Get("to")); err != nil {
		h.error(w, "Invalid 'to' date", http.StatusBadRequest)
		return
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	list, err := h.svc.SearchNotes(r.Context(), f)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, list, http.StatusOK)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respond(w, stats, http.StatusOK)
}

func (h *Handlers) noteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/notes/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.error(w, "Invalid note ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// parseTime accepts RFC 3339 or YYYY-MM-DD; empty means unset.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

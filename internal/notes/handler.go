package notes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"noteeasy/internal/identity"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// CreateNote handles POST /notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input NoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	actor := identity.FromContext(r.Context())
	note, err := h.svc.Create(r.Context(), actor, input)
	if err != nil {
		h.writeError(w, "create note", err)
		return
	}

	h.jsonResponse(w, map[string]any{"success": true, "id": note.ID.Hex()}, http.StatusOK)
}

// ListNotes handles GET /notes. Without a limit parameter it returns the
// full ordered array; with one it returns a page plus navigation flags.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		SortBy: r.URL.Query().Get("sortBy"),
		Order:  r.URL.Query().Get("order"),
		Tag:    r.URL.Query().Get("tag"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			h.jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		page, err := h.svc.ListPage(r.Context(), PageQuery{
			ListQuery: q,
			Cursor:    r.URL.Query().Get("cursor"),
			Limit:     limit,
		})
		if err != nil {
			h.writeError(w, "list notes page", err)
			return
		}
		h.jsonResponse(w, page, http.StatusOK)
		return
	}

	noteList, err := h.svc.List(r.Context(), q)
	if err != nil {
		h.writeError(w, "list notes", err)
		return
	}
	h.jsonResponse(w, noteList, http.StatusOK)
}

// GetNote handles GET /notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.jsonError(w, "note ID required", http.StatusBadRequest)
		return
	}

	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get note", err)
		return
	}
	h.jsonResponse(w, note, http.StatusOK)
}

// GetHistory handles GET /notes/{id}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.jsonError(w, "note ID required", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.History(r.Context(), id)
	if err != nil {
		h.writeError(w, "get history", err)
		return
	}
	h.jsonResponse(w, entries, http.StatusOK)
}

// UpdateNote handles PUT /notes/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.jsonError(w, "note ID required", http.StatusBadRequest)
		return
	}

	var input NoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	actor := identity.FromContext(r.Context())
	if err := h.svc.Update(r.Context(), actor, id, input); err != nil {
		h.writeError(w, "update note", err)
		return
	}

	h.jsonResponse(w, map[string]any{"success": true}, http.StatusOK)
}

// DeleteNote handles DELETE /notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.jsonError(w, "note ID required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete note", err)
		return
	}

	h.jsonResponse(w, map[string]any{"success": true}, http.StatusOK)
}

// writeError maps the repository error taxonomy to HTTP. Store failures
// are logged with their cause and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case IsValidation(err):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoteNotFound):
		h.jsonError(w, "note not found", http.StatusNotFound)
	default:
		h.log.Error("failed to "+op, "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

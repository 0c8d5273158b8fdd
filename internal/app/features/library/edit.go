// internal/app/features/library/edit.go
package library

import (
	"net/http"

	"github.com/dalemusser/inforepo/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgSaveFailed = "Could not save changes."

// HandleEdit saves the notes and tags of one resource. The backend
// overwrites both fields, so the card posts the field being edited together
// with the rendered value of the other one.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse edit form failed", err, "Invalid form data.", "/")
		return
	}
	q := r.PostFormValue("query")
	notes := r.PostFormValue("notes")
	tags := r.PostFormValue("tags")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Mutate(), h.Log, "update resource")
	defer cancel()

	notice := ""
	if err := h.API.Update(ctx, id, notes, tags); err != nil {
		h.Log.Error("update resource failed", zap.Error(err), zap.String("id", id))
		notice = msgSaveFailed
	}

	h.refresh(w, r, q, notice)
}

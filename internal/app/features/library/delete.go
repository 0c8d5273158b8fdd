// internal/app/features/library/delete.go
package library

import (
	"net/http"

	"github.com/dalemusser/inforepo/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgDeleteFailed = "Could not delete the resource."

// HandleDelete removes one resource and refreshes the list. There is no
// confirmation step.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse delete form failed", err, "Invalid form data.", "/")
		return
	}
	q := r.PostFormValue("query")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Mutate(), h.Log, "delete resource")
	defer cancel()

	notice := ""
	if err := h.API.Delete(ctx, id); err != nil {
		h.Log.Error("delete resource failed", zap.Error(err), zap.String("id", id))
		notice = msgDeleteFailed
	} else {
		h.Log.Info("resource deleted", zap.String("id", id))
	}

	h.refresh(w, r, q, notice)
}

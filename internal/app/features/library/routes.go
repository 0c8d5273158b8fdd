// internal/app/features/library/routes.go
package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the library at the site root. Optional middleware (rate
// limiting, for example) wraps only the routes that change resources.
//
//	lib := library.NewHandler(api, sessionMgr, seq, errLog, logger, opts)
//	r.Mount("/", library.Routes(lib, ratelimit.Middleware(limiter, logger)))
func Routes(h *Handler, mutating ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// LIST / SEARCH (full page, or the list fragment for HTMX)
	r.Get("/", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(mutating...)

		// CREATE
		r.Post("/upload", h.HandleUpload)

		// INLINE EDIT (fired on blur of notes or tags)
		r.Post("/resources/{id}/edit", h.HandleEdit)

		// DELETE
		r.Post("/resources/{id}/delete", h.HandleDelete)
	})

	return r
}

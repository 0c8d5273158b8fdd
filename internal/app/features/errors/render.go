// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/inforepo/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderBadRequest shows a friendly 400 page with a message.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "Bad request", msg, backURL)
}

// RenderNotFound shows a friendly 404 page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderServerError shows a friendly 500 page with a message.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title),
		Message: msg,
		BackURL: backURL,
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}

// internal/app/features/library/upload.go
package library

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/inforepo/internal/app/backend"
	"github.com/dalemusser/inforepo/internal/app/system/inputval"
	"github.com/dalemusser/inforepo/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	msgUploadMissing = "Choose a file or enter a URL."
	msgUploadFailed  = "Upload failed. Please try again."
	msgUploaded      = "Resource uploaded."
)

// uploadInput defines validation rules for the upload form.
type uploadInput struct {
	URL   string `validate:"omitempty,http_url,max=2048" label:"URL"`
	Notes string `validate:"max=10000" label:"Notes"`
	Tags  string `validate:"max=1000" label:"Tags"`
}

// HandleUpload forwards the upload form to the backend. The file part is
// sent only when a non-empty file was chosen and the url field only when
// non-blank. Input that names neither is rejected without a backend call.
// Once the backend has answered, success or not, the browser is redirected
// to a fresh list with an empty form. The committed query travels in the
// form action's query string so it survives a body that cannot be parsed.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Log.Warn("upload too large", zap.Int64("limit", tooLarge.Limit))
			h.flash(w, r, fmt.Sprintf("File is too large (limit %d MB).", h.MaxUploadBytes>>20), true)
			http.Redirect(w, r, listURL(q), http.StatusSeeOther)
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse upload form failed", err, "Invalid form data.", listURL(q))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := uploadInput{
		URL:   strings.TrimSpace(r.FormValue("url")),
		Notes: r.FormValue("notes"),
		Tags:  r.FormValue("tags"),
	}

	file, header, err := openUpload(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "read upload file failed", err, "Could not read the uploaded file.", listURL(q))
		return
	}
	if file != nil {
		defer file.Close()
	}

	// Re-render with what the user typed so the input is not lost.
	reRender := func(msg string) {
		data := h.buildList(r, q)
		data.Upload = uploadForm{URL: in.URL, Notes: in.Notes, Tags: in.Tags, Error: msg}
		h.renderPage(w, r, data)
	}

	if file == nil && in.URL == "" {
		reRender(msgUploadMissing)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		reRender(res.First())
		return
	}

	req := backend.UploadRequest{
		URL:   in.URL,
		Notes: in.Notes,
		Tags:  in.Tags,
	}
	if file != nil {
		req.File = file
		req.FileName = header.Filename
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "upload resource")
	defer cancel()

	if err := h.API.Upload(ctx, req); err != nil {
		h.Log.Error("upload resource failed",
			zap.Error(err),
			zap.Bool("has_file", file != nil),
			zap.Bool("has_url", in.URL != ""))
		h.flash(w, r, msgUploadFailed, true)
	} else {
		h.Log.Info("resource uploaded",
			zap.Bool("has_file", file != nil),
			zap.Bool("has_url", in.URL != ""))
		h.flash(w, r, msgUploaded, false)
	}

	http.Redirect(w, r, listURL(q), http.StatusSeeOther)
}

// openUpload returns the chosen file, or nil when none was chosen or it is
// empty.
func openUpload(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil, nil
	}
	return file, header, nil
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, msg string, isError bool) {
	if h.Sessions == nil {
		return
	}
	h.Sessions.AddFlash(w, r, msg, isError)
}


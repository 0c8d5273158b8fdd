// internal/app/features/library/list.go
package library

import (
	"net/http"

	"github.com/dalemusser/inforepo/internal/app/system/clientsession"
	"github.com/dalemusser/inforepo/internal/app/system/sequence"
	"github.com/dalemusser/inforepo/internal/app/system/timeouts"
	"github.com/dalemusser/inforepo/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const loadErrorMessage = "Could not load resources."

// ServeList renders the resource list for the query parameter. The value is
// used verbatim; an empty query lists everything.
// HTMX requests targeting the list get only the list fragment.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")

	if isListRequest(r) {
		h.writeList(w, r, q, "")
		return
	}

	h.beginFetch(r)
	data := h.buildList(r, q)
	h.renderPage(w, r, data)
}

// refresh re-runs the listing after a mutation. HTMX callers get the new
// list fragment in this response; plain form posts are redirected back to
// the list with the same query.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request, q, notice string) {
	if isHTMX(r) {
		h.writeList(w, r, q, notice)
		return
	}
	if notice != "" {
		h.flash(w, r, notice, true)
	}
	http.Redirect(w, r, listURL(q), http.StatusSeeOther)
}

// writeList fetches and renders the list fragment, unless a newer fetch was
// started for the same client while this one was in flight. In that case
// the response tells HTMX to leave the page alone, and a pending notice is
// queued as a flash for the next page load.
func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, q, notice string) {
	key, tok, tracked := h.beginFetch(r)

	data := h.buildList(r, q)
	data.Notice = notice

	if tracked && !h.Seq.IsLatest(key, tok) {
		h.Log.Debug("dropping stale list response",
			zap.String("client_id", key),
			zap.Uint64("token", uint64(tok)),
			zap.String("query", q))
		if notice != "" {
			h.flash(w, r, notice, true)
		}
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	templates.RenderSnippet(w, "library_list", data)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, data listData) {
	if h.Sessions != nil {
		data.Flashes = h.Sessions.Flashes(w, r)
	}
	templates.Render(w, r, "library_page", data)
}

// buildList performs the single backend GET for q. A failed fetch leaves
// the list empty and sets LoadError.
func (h *Handler) buildList(r *http.Request, q string) listData {
	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Resources"),
		Query:  q,
		Items:  []card{},
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Fetch(), h.Log, "list resources")
	defer cancel()

	resources, err := h.API.List(ctx, q)
	if err != nil {
		h.Log.Error("list resources failed", zap.Error(err), zap.String("query", q))
		data.LoadError = loadErrorMessage
		return data
	}

	data.Items = make([]card, 0, len(resources))
	for _, res := range resources {
		data.Items = append(data.Items, newCard(res, h.Loc))
	}
	return data
}

// beginFetch takes a sequence token for the requesting client. tracked is
// false when the request has no client id.
func (h *Handler) beginFetch(r *http.Request) (key string, tok sequence.Token, tracked bool) {
	if h.Seq == nil {
		return "", 0, false
	}
	key = clientsession.ClientID(r)
	if key == "" {
		return "", 0, false
	}
	return key, h.Seq.Begin(key), true
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}

func isListRequest(r *http.Request) bool {
	return isHTMX(r) && r.Header.Get("HX-Target") == listTarget
}

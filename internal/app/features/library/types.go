// internal/app/features/library/types.go
package library

import (
	"net/url"
	"time"

	"github.com/dalemusser/inforepo/internal/app/system/viewdata"
	"github.com/dalemusser/inforepo/internal/domain/models"
)

// listTarget is the id of the element HTMX swaps with a refreshed list.
const listTarget = "resource-list"

// dateLayout mirrors a US-locale short date (M/D/YYYY).
const dateLayout = "1/2/2006"

// card is one rendered resource.
type card struct {
	ID         string
	Title      string
	Type       string
	TypeClass  string // CSS class; "type-other" for unrecognized types
	Date       string
	Notes      string
	TagsString string   // value of the tags edit field
	Tags       []string // read-only badges
}

// uploadForm echoes the upload inputs back after a rejected submit.
type uploadForm struct {
	URL   string
	Notes string
	Tags  string
	Error string
}

// TagPreview splits the echoed tags the way the backend will.
func (f uploadForm) TagPreview() []string {
	return models.SplitTags(f.Tags)
}

// listData is the view model for the page and for the list fragment.
type listData struct {
	viewdata.BaseVM

	Query     string
	Items     []card
	LoadError string // set when the listing could not be fetched
	Notice    string // result of the mutation that triggered this refresh

	Upload uploadForm
}

func newCard(res models.Resource, loc *time.Location) card {
	date := ""
	if res.HasCreatedAt() {
		date = res.CreatedAt.In(loc).Format(dateLayout)
	}
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	return card{
		ID:         res.ID,
		Title:      res.Title,
		Type:       res.Type,
		TypeClass:  typeClass(res.Type),
		Date:       date,
		Notes:      res.Notes,
		TagsString: res.TagsString(),
		Tags:       tags,
	}
}

func typeClass(t string) string {
	if norm := models.NormalizeResourceType(t); models.IsKnownResourceType(norm) {
		return "type-" + norm
	}
	return "type-other"
}

// listURL is the page URL that re-runs the listing for query.
func listURL(query string) string {
	return "/?query=" + url.QueryEscape(query)
}

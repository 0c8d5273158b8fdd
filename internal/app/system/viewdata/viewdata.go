// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync"

	"github.com/dalemusser/inforepo/internal/app/system/clientsession"
	"github.com/dalemusser/inforepo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title"),
//	}
type BaseVM struct {
	SiteName    string
	Title       string
	CurrentPath string

	// One-shot messages from the previous request (upload result, etc.)
	Flashes []clientsession.Flash
}

var (
	mu       sync.RWMutex
	siteName = models.DefaultSiteName
)

// Init sets the site name shown in the header. Call once at startup.
func Init(name string) {
	if name == "" {
		return
	}
	mu.Lock()
	siteName = name
	mu.Unlock()
}

// SiteName returns the configured site name.
func SiteName() string {
	mu.RLock()
	defer mu.RUnlock()
	return siteName
}

// NewBaseVM creates a BaseVM for a page. Flashes are filled in by the
// caller when it has a session manager at hand.
func NewBaseVM(r *http.Request, title string) BaseVM {
	return BaseVM{
		SiteName:    SiteName(),
		Title:       title,
		CurrentPath: httpnav.CurrentPath(r),
	}
}

// internal/domain/models/resourcetypes.go
package models

import "strings"

// Resource type identifiers reported by the backend. The type is derived
// from how the resource was ingested and is never edited from the UI.
const (
	ResourceTypePDF   = "pdf"
	ResourceTypeDocx  = "docx"
	ResourceTypeVideo = "video"
	ResourceTypeWeb   = "web"
)

// ResourceTypes is the set of types the UI has labels for. Other values are
// still displayed verbatim.
var ResourceTypes = []string{
	ResourceTypePDF,
	ResourceTypeDocx,
	ResourceTypeVideo,
	ResourceTypeWeb,
}

// NormalizeResourceType folds case and surrounding space so "PDF " and
// "pdf" compare equal. Use it for lookups only; display the raw value.
func NormalizeResourceType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// IsKnownResourceType reports whether t is one of ResourceTypes.
func IsKnownResourceType(t string) bool {
	for _, known := range ResourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

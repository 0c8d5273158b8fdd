// internal/domain/models/sitesettings.go
package models

// DefaultSiteName is shown in the page header when site_name is not configured.
const DefaultSiteName = "Info Repository"

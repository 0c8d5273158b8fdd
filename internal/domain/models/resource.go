package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Resource is a stored item (document, video, or website) as reported by the
// backend. The UI never computes these fields; it mirrors whatever the last
// listing returned.
type Resource struct {
	ID        string
	Title     string
	Type      string // see resourcetypes.go
	CreatedAt time.Time
	Notes     string
	Tags      []string
}

// TagsString renders the tags the way the edit field shows them ("a,b,c").
func (r Resource) TagsString() string {
	return JoinTags(r.Tags)
}

// HasCreatedAt reports whether the backend supplied a usable timestamp.
func (r Resource) HasCreatedAt() bool {
	return !r.CreatedAt.IsZero()
}

// JoinTags comma-joins tags without adding spaces.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags splits a comma string the way the backend does. Empty input
// yields no tags.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// Timestamp accepts the timestamp encodings the backend has been seen to
// produce: RFC 3339 and naive ISO-8601 (treated as UTC).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON leaves the zero time for null, empty, or unparseable values.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		ts.Time = time.Time{}
		return nil
	}
	t, _ := ParseTimestamp(s)
	ts.Time = t
	return nil
}

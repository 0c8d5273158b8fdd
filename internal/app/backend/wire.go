// internal/app/backend/wire.go
package backend

import (
	"encoding/json"
	"strings"

	"github.com/dalemusser/inforepo/internal/domain/models"
	"go.uber.org/zap"
)

// wireResource is the listing item as the backend sends it. Every field is
// optional on the wire; toModel decides what is acceptable.
type wireResource struct {
	ID        *string           `json:"id"`
	Title     *string           `json:"title"`
	Type      *string           `json:"type"`
	Notes     *string           `json:"notes"`
	Tags      []json.RawMessage `json:"tags"`
	CreatedAt models.Timestamp  `json:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// toModel validates one item. Items without an id are unusable (they can be
// neither edited nor deleted) and are rejected. Text fields are kept exactly
// as sent; templates escape them on output.
func (w wireResource) toModel() (models.Resource, bool) {
	id := strings.TrimSpace(deref(w.ID))
	if id == "" {
		return models.Resource{}, false
	}

	tags := make([]string, 0, len(w.Tags))
	for _, raw := range w.Tags {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		tags = append(tags, s)
	}

	return models.Resource{
		ID:        id,
		Title:     deref(w.Title),
		Type:      deref(w.Type),
		CreatedAt: w.CreatedAt.Time,
		Notes:     deref(w.Notes),
		Tags:      tags,
	}, true
}

// decodeListing parses a listing body, dropping and logging items that fail
// validation. The order of accepted items is preserved.
func decodeListing(body []byte, log *zap.Logger) ([]models.Resource, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrInvalidResponse
	}

	out := make([]models.Resource, 0, len(raw))
	for i, item := range raw {
		var w wireResource
		if err := json.Unmarshal(item, &w); err != nil {
			log.Warn("dropping malformed resource", zap.Int("index", i), zap.Error(err))
			continue
		}
		res, ok := w.toModel()
		if !ok {
			log.Warn("dropping resource without id", zap.Int("index", i))
			continue
		}
		if res.Type != "" && !models.IsKnownResourceType(models.NormalizeResourceType(res.Type)) {
			log.Debug("unrecognized resource type", zap.String("id", res.ID), zap.String("type", res.Type))
		}
		out = append(out, res)
	}
	return out, nil
}

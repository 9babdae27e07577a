// Package search keeps a Bleve full-text index of published catalog items.
// It ranks by relevance with stemming and fuzzy matching, which the
// substring engine in internal/match deliberately does not do.
package search

import (
	"strings"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// ItemDocument is the projection of an item stored in the index.
type ItemDocument struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	NameSort   string   `json:"name_sort"` // lowercased name, keyword analyzed for sorting
	Tags       []string `json:"tags,omitempty"`
	Category   string   `json:"category,omitempty"`
	Scale      string   `json:"scale,omitempty"`
	AgeRating  string   `json:"age_rating,omitempty"`
	UploaderID string   `json:"uploader_id,omitempty"`
	CreatedAt  int64    `json:"created_at"` // Unix millis
}

// NewItemDocument projects an item into its index document.
// Tags, category, scale and age rating are lowercased so keyword filters
// behave case-insensitively.
func NewItemDocument(item *domain.Item) *ItemDocument {
	tags := make([]string, 0, len(item.Tags))
	for _, t := range item.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	return &ItemDocument{
		ID:         item.ID,
		Name:       item.Name,
		NameSort:   strings.ToLower(item.Name),
		Tags:       tags,
		Category:   strings.ToLower(item.Category),
		Scale:      strings.ToLower(item.Scale),
		AgeRating:  strings.ToLower(item.AgeRating),
		UploaderID: item.UploaderID,
		CreatedAt:  item.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to the field map Bleve indexes.
// Field names must match the mapping exactly.
func (d *ItemDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"name":       d.Name,
		"name_sort":  d.NameSort,
		"created_at": float64(d.CreatedAt),
	}

	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.Scale != "" {
		m["scale"] = d.Scale
	}
	if d.AgeRating != "" {
		m["age_rating"] = d.AgeRating
	}
	if d.UploaderID != "" {
		m["uploader_id"] = d.UploaderID
	}

	return m
}

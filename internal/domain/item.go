// Package domain holds the figureshelf entities: catalog items, users and
// their per-item collection annotations.
package domain

import (
	"slices"
	"strings"
)

// ItemStatus is where an item sits in the submission lifecycle.
type ItemStatus string

const (
	// ItemStatusPublished items are visible in the catalog.
	ItemStatusPublished ItemStatus = "published"
	// ItemStatusPending items wait in the review queue for a moderator.
	ItemStatusPending ItemStatus = "pending"
	// ItemStatusDraft items are only visible to their uploader.
	ItemStatusDraft ItemStatus = "draft"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPublished, ItemStatusPending, ItemStatusDraft:
		return true
	}
	return false
}

// ImageRef points at an image on the external image host.
type ImageRef struct {
	URL       string `json:"url"`
	DeleteURL string `json:"delete_url,omitempty"`
	BlurHash  string `json:"blur_hash,omitempty"`
}

// Item is a collectible in the shared catalog.
type Item struct {
	Entity
	Name        string     `json:"name"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category"`
	Scale       string     `json:"scale"`
	AgeRating   string     `json:"age_rating"`
	ReleaseDate string     `json:"release_date"` // free-form, e.g. "2024-05"
	Images      []ImageRef `json:"images"`
	UploaderID  string     `json:"uploader_id"`
	Status      ItemStatus `json:"status"`
}

// IsDraft reports whether the item is an unpublished draft.
func (i *Item) IsDraft() bool {
	return i.Status == ItemStatusDraft
}

// IsPublished reports whether the item is visible in the catalog.
func (i *Item) IsPublished() bool {
	return i.Status == ItemStatusPublished
}

// NormalizeTags trims tags, drops empty ones and removes case-insensitive
// duplicates, keeping the first spelling.
func (i *Item) NormalizeTags() {
	seen := make(map[string]struct{}, len(i.Tags))
	out := make([]string, 0, len(i.Tags))
	for _, tag := range i.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	i.Tags = out
}

// HasTag reports whether the item carries tag, ignoring case.
func (i *Item) HasTag(tag string) bool {
	return slices.ContainsFunc(i.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Clone returns a deep copy so snapshot readers never share slices with writers.
func (i *Item) Clone() *Item {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.Images = slices.Clone(i.Images)
	return &c
}

package domain

import "time"

// AnnotationStatus says how an item relates to a user's collection.
type AnnotationStatus string

const (
	AnnotationOwned   AnnotationStatus = "owned"
	AnnotationOrdered AnnotationStatus = "ordered"
	AnnotationWished  AnnotationStatus = "wished"
)

// Valid reports whether s is a known status.
func (s AnnotationStatus) Valid() bool {
	switch s {
	case AnnotationOwned, AnnotationOrdered, AnnotationWished:
		return true
	}
	return false
}

// Annotation is a user's private note about one catalog item: the collection
// entry. Price and Score keep whatever the user typed ("¥12,800", "9/10");
// sorting parses them on demand.
type Annotation struct {
	UserID       string           `json:"user_id"`
	ItemID       string           `json:"item_id"`
	Status       AnnotationStatus `json:"status"`
	Price        string           `json:"price,omitempty"`
	Store        string           `json:"store,omitempty"`
	Score        string           `json:"score,omitempty"`
	PurchaseDate string           `json:"purchase_date,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

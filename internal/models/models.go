package models

import "time"

// SourceID identifies the backend a property record came from.
type SourceID string

const (
	SourceMongoDB     SourceID = "mongodb"
	SourceWooCommerce SourceID = "woocommerce"
)

// Valid reports whether s names a known backend.
func (s SourceID) Valid() bool {
	return s == SourceMongoDB || s == SourceWooCommerce
}

// Image is a property photo with its alt text.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Property is the canonical, source-agnostic listing record produced by the
// normalizer. IDs are source-native ids coerced to string; prices are
// currency-less.
type Property struct {
	ID          string    `json:"id"`
	Source      SourceID  `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Area        int       `json:"area"`
	Floor       int       `json:"floor"`
	Address     string    `json:"address"`
	Images      []Image   `json:"images"`
	Categories  []string  `json:"categories,omitempty"`
	Features    []string  `json:"features,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SourceError describes a per-source upstream failure that was absorbed
// during aggregation.
type SourceError struct {
	Source SourceID `json:"source"`
	Reason string   `json:"reason"`
}

// PropertyList is the aggregated output envelope served to the frontend.
type PropertyList struct {
	Total       int           `json:"total"`
	MongoDB     int           `json:"mongodb"`
	WooCommerce int           `json:"woocommerce"`
	Truncated   bool          `json:"truncated,omitempty"`
	Properties  []Property    `json:"properties"`
	Errors      []SourceError `json:"errors,omitempty"`
}

// BlogPost is a normalized WordPress post.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ContactMessage is an inbound contact-form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

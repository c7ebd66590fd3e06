package model

import "time"

// Product is a catalog entry.  Rating and NumReviews are derived from
// Reviews and are only ever written through ApplyRating.
//
// Fields:
//
//	ID           – primary key identifier.
//	Title        – product name.
//	Description  – free text description.
//	Images       – ordered image URLs (product_images table).
//	Price        – non-negative price.
//	Category     – category label.
//	InStock      – availability flag.
//	PurchaseLink – external link where the product can be bought.
//	Clicks       – number of recorded clicks.
//	Rating       – mean of review ratings, 0 without reviews.
//	NumReviews   – number of reviews.
//	Reviews      – embedded reviews ordered by creation.
type Product struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Images       []string  `json:"images"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	InStock      bool      `json:"inStock"`
	PurchaseLink string    `json:"purchaseLink"`
	Clicks       int64     `json:"clicks"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Review is a single piece of feedback left on a product.  Name is a
// snapshot of the author's display name when the review was written.
type Review struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the analytics snapshot returned by /api/analytics/summary.
type Summary struct {
	Users    int64 `json:"users"`
	Products int64 `json:"products"`
	Clicks   int64 `json:"clicks"`
}

// ProductChanges is a partial product edit.  Nil fields are left as they
// are; a nil Images slice keeps the current images.
type ProductChanges struct {
	Title        *string
	Description  *string
	Images       []string
	Price        *float64
	Category     *string
	InStock      *bool
	PurchaseLink *string
}

// Apply copies the supplied fields onto p.
func (c ProductChanges) Apply(p *Product) {
	if c.Title != nil {
		p.Title = *c.Title
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Images != nil {
		p.Images = append([]string{}, c.Images...)
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
	if c.InStock != nil {
		p.InStock = *c.InStock
	}
	if c.PurchaseLink != nil {
		p.PurchaseLink = *c.PurchaseLink
	}
}

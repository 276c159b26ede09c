package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductCategory string

const (
	CategoryElectronics ProductCategory = "electronics"
	CategoryClothing    ProductCategory = "clothing"
	CategoryBooks       ProductCategory = "books"
	CategoryHome        ProductCategory = "home"
	CategorySports      ProductCategory = "sports"
	CategoryToys        ProductCategory = "toys"
	CategoryOther       ProductCategory = "other"
)

// ValidCategory reports whether c is one of the known product categories.
func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryBooks,
		CategoryHome, CategorySports, CategoryToys, CategoryOther:
		return true
	}
	return false
}

type ProductImage struct {
	URL       string `bson:"url" json:"url"`
	Alt       string `bson:"alt,omitempty" json:"alt,omitempty"`
	IsPrimary bool   `bson:"isPrimary" json:"isPrimary"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Review struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	Price             float64            `bson:"price" json:"price"`
	ComparePrice      float64            `bson:"comparePrice,omitempty" json:"comparePrice,omitempty"`
	Category          ProductCategory    `bson:"category" json:"category"`
	Images            []ProductImage     `bson:"images" json:"images"`
	Stock             int                `bson:"stock" json:"stock"`
	LowStockThreshold int                `bson:"lowStockThreshold" json:"lowStockThreshold"`
	Rating            Rating             `bson:"rating" json:"rating"`
	Reviews           []Review           `bson:"reviews" json:"reviews"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	IsFeatured        bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InStock reports whether the product has any sellable inventory.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// LowStock reports whether inventory has dropped to the alert threshold.
func (p *Product) LowStock() bool {
	return p.Stock > 0 && p.Stock <= p.LowStockThreshold
}

// PrimaryImage returns the URL of the image flagged primary, falling back
// to the first image, or "" if the product has none.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// HasReviewBy reports whether the user already reviewed this product.
func (p *Product) HasReviewBy(userID primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends a review and recomputes the rating aggregate.
// Callers must check HasReviewBy first; one review per user.
func (p *Product) AddReview(review Review) {
	p.Reviews = append(p.Reviews, review)
	total := 0
	for _, r := range p.Reviews {
		total += r.Rating
	}
	p.Rating.Count = len(p.Reviews)
	p.Rating.Average = float64(total) / float64(len(p.Reviews))
}

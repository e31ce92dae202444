// Package catalog holds the product and category entities.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxGalleryImages bounds the number of gallery images per product.
const MaxGalleryImages = 10

// Category groups products.
type Category struct {
	ID    string `gorm:"primaryKey;type:text" json:"id"`
	Name  string `gorm:"not null;type:text" json:"name"`
	Icon  string `gorm:"type:text" json:"icon"`
	Color string `gorm:"type:text" json:"color"`
}

// TableName returns the table name for the Category entity.
func (Category) TableName() string {
	return "categories"
}

// Product is a sellable item. Price is the current price; orders read it at
// composition time.
type Product struct {
	ID              string          `gorm:"primaryKey;type:text" json:"id"`
	Name            string          `gorm:"not null;type:text" json:"name"`
	Description     string          `gorm:"not null;type:text" json:"description"`
	RichDescription string          `gorm:"type:text" json:"richDescription"`
	Image           string          `gorm:"type:text" json:"image"`
	Images          []string        `gorm:"serializer:json" json:"images"`
	Brand           string          `gorm:"type:text" json:"brand"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CategoryID      string          `gorm:"index;not null;type:text" json:"categoryId"`
	Category        *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CountInStock    int             `gorm:"not null;default:0" json:"countInStock"`
	Rating          float64         `gorm:"default:0" json:"rating"`
	NumReviews      int             `gorm:"default:0" json:"numReviews"`
	IsFeatured      bool            `gorm:"index;default:false" json:"isFeatured"`
	DateCreated     time.Time       `gorm:"autoCreateTime" json:"dateCreated"`
}

// TableName returns the table name for the Product entity.
func (Product) TableName() string {
	return "products"
}

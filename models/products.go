package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item offered in the shop.
// PhotoRef is either an absolute URL or a path under /uploads.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PhotoRef    string          `gorm:"column:photo_ref;not null;default:''"`
	Description string          `gorm:"not null;default:''"`
	Category    string          `gorm:"not null;default:'Other'"`
	CreatedAt   time.Time
}

func (p *Product) TableName() string {
	return "products"
}

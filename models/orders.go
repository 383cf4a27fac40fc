package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the audit record of a submitted cart.
type Order struct {
	ID            uint            `gorm:"primaryKey"`
	BuyerChatID   int64           `gorm:"not null;index"`
	BuyerUsername string          `gorm:"not null;default:''"`
	BuyerName     string          `gorm:"not null;default:''"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Lines         []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderLine keeps the name and price exactly as the buyer submitted them.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	Position  int             `gorm:"not null"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (l *OrderLine) TableName() string {
	return "order_lines"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents the canonical catalog listing with its four price tiers.
// Quantity is on-hand stock and may go negative, which the domain treats as a
// backorder signal rather than an error.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	SKU            string          `gorm:"column:sku;not null;uniqueIndex"`
	RetailPrice    decimal.Decimal `gorm:"column:retail_price;type:numeric(12,2);not null"`
	WholesalePrice decimal.Decimal `gorm:"column:wholesale_price;type:numeric(12,2);not null"`
	SpecialPrice   decimal.Decimal `gorm:"column:special_price;type:numeric(12,2);not null"`
	WebPagePrice   decimal.Decimal `gorm:"column:web_page_price;type:numeric(12,2);not null"`
	Quantity       int             `gorm:"column:quantity;not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

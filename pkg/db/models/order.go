package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/retailops-backend/pkg/enums"
)

// Order is the aggregate root of the workflow engine. Version guards every
// update with a compare-and-swap so concurrent edits cannot lose writes or
// double-decrement inventory.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name            string            `gorm:"column:name;not null"`
	BuyerID         uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	Buyer           *Buyer            `gorm:"foreignKey:BuyerID"`
	OrderType       enums.OrderType   `gorm:"column:order_type;type:order_type;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Paid            bool              `gorm:"column:paid;not null;default:false"`
	RequestDate     time.Time         `gorm:"column:request_date;not null"`
	DueDate         *time.Time        `gorm:"column:due_date"`
	FreightPrice    decimal.Decimal   `gorm:"column:freight_price;type:numeric(12,2);not null"`
	AdvancedPayment decimal.Decimal   `gorm:"column:advanced_payment;type:numeric(12,2);not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	FinalAmount     decimal.Decimal   `gorm:"column:final_amount;type:numeric(12,2);not null"`
	Description     *string           `gorm:"column:description"`
	Version         int64             `gorm:"column:version;not null;default:1"`
	Lines           []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

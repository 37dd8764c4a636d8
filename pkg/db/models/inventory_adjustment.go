package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/retailops-backend/pkg/enums"
)

// InventoryAdjustment is the audit trail for every stock mutation the gateway
// applies. Delta is negative for decrements.
type InventoryAdjustment struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	OrderID       *uuid.UUID             `gorm:"column:order_id;type:uuid;index"`
	Delta         int                    `gorm:"column:delta;not null"`
	QuantityAfter int                    `gorm:"column:quantity_after;not null"`
	Reason        enums.AdjustmentReason `gorm:"column:reason;type:adjustment_reason;not null"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}

package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/retailops-backend/pkg/enums"
)

// OrderCreatedEvent signals a freshly persisted order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	OrderType   enums.OrderType `json:"order_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	LineCount   int             `json:"line_count"`
}

// OrderEditedEvent is emitted after an edit rewrites the order's cart and totals.
type OrderEditedEvent struct {
	OrderID           uuid.UUID       `json:"order_id"`
	BuyerID           uuid.UUID       `json:"buyer_id"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	AdvancedPayment   decimal.Decimal `json:"advanced_payment"`
	InventoryAdjusted bool            `json:"inventory_adjusted"`
}

// OrderPaidEvent is emitted when a transition marks the order paid.
type OrderPaidEvent struct {
	OrderID           uuid.UUID       `json:"order_id"`
	BuyerID           uuid.UUID       `json:"buyer_id"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	InventoryAdjusted bool            `json:"inventory_adjusted"`
	PaidAt            time.Time       `json:"paid_at"`
}

// OrderStatusChangedEvent reports any status transition.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	OldStatus enums.OrderStatus `json:"old_status"`
	NewStatus enums.OrderStatus `json:"new_status"`
	Paid      bool              `json:"paid"`
}

// OrderOverdueEvent flags a pending unpaid order past its due date.
type OrderOverdueEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	BuyerID uuid.UUID `json:"buyer_id"`
	DueDate time.Time `json:"due_date"`
}

// InventoryAdjustedEvent records an applied stock decrement.
type InventoryAdjustedEvent struct {
	ProductID     uuid.UUID              `json:"product_id"`
	OrderID       *uuid.UUID             `json:"order_id,omitempty"`
	Delta         int                    `json:"delta"`
	QuantityAfter int                    `json:"quantity_after"`
	Reason        enums.AdjustmentReason `json:"reason"`
}

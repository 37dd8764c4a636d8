package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/retailops-backend/internal/pricing"
	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	"github.com/retailops/retailops-backend/pkg/outbox"
)

// CreateOrderInput carries the caller-provided fields for a new order.
type CreateOrderInput struct {
	Name            string
	BuyerID         uuid.UUID
	OrderType       enums.OrderType
	Cart            []pricing.CartEntry
	FreightPrice    decimal.Decimal
	AdvancedPayment decimal.Decimal
	DueDate         *time.Time
	Description     *string
	Actor           *outbox.ActorRef
}

// EditOrderInput fully replaces the mutable fields of a pending order.
type EditOrderInput struct {
	OrderID         uuid.UUID
	Name            string
	BuyerID         uuid.UUID
	OrderType       enums.OrderType
	Cart            []pricing.CartEntry
	FreightPrice    decimal.Decimal
	AdvancedPayment decimal.Decimal
	DueDate         *time.Time
	Description     *string
	Actor           *outbox.ActorRef
}

// TransitionStatusInput applies a partial status/paid update. Nil fields are
// left untouched.
type TransitionStatusInput struct {
	OrderID uuid.UUID
	Status  *enums.OrderStatus
	Paid    *bool
	Actor   *outbox.ActorRef
}

// TransitionResult reports the updated order plus whether the transition
// triggered an inventory adjustment. Diagnostic is a support aid, not a
// contract.
type TransitionResult struct {
	Order             *models.Order
	InventoryAdjusted bool
	Diagnostic        string
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status  *enums.OrderStatus
	Paid    *bool
	BuyerID *uuid.UUID
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
	HasMore    bool
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops/retailops-backend/pkg/errors"
	"github.com/retailops/retailops-backend/pkg/metrics"
	"github.com/retailops/retailops-backend/pkg/outbox"
	"github.com/retailops/retailops-backend/pkg/outbox/payloads"
)

// DecrementInput describes a single stock decrement.
type DecrementInput struct {
	ProductID uuid.UUID
	Quantity  int
	OrderID   *uuid.UUID
	Reason    enums.AdjustmentReason
}

// Gateway applies stock decrements. Implementations must make the update
// atomic per product row; they are not idempotent, so callers own the
// at-most-once contract per order lifecycle event.
type Gateway interface {
	Decrement(ctx context.Context, tx *gorm.DB, input DecrementInput) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type gateway struct {
	timeout time.Duration
	outbox  outboxPublisher
	metrics *metrics.OrderMetrics
}

// NewGateway builds the default gateway backed by the orders database. The
// outbox publisher and metrics are optional.
func NewGateway(timeout time.Duration, outboxSvc outboxPublisher, orderMetrics *metrics.OrderMetrics) Gateway {
	return &gateway{
		timeout: timeout,
		outbox:  outboxSvc,
		metrics: orderMetrics,
	}
}

// Decrement atomically subtracts quantity from the product's on-hand stock
// and records an audit row. Stock may go negative; the domain reads that as a
// backorder signal. A deadline hit mid-flight is reported as a reconciliation
// error because the adjustment state is unknown to the caller.
func (g *gateway) Decrement(ctx context.Context, tx *gorm.DB, input DecrementInput) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Reason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown adjustment reason %q", input.Reason))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res := tx.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", input.ProductID).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", input.Quantity))
	if res.Error != nil {
		return g.classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"productId": input.ProductID.String()})
	}

	var quantityAfter int
	if err := tx.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", input.ProductID).
		Select("quantity").
		Scan(&quantityAfter).Error; err != nil {
		return g.classify(err)
	}

	adjustment := models.InventoryAdjustment{
		ProductID:     input.ProductID,
		OrderID:       input.OrderID,
		Delta:         -input.Quantity,
		QuantityAfter: quantityAfter,
		Reason:        input.Reason,
	}
	if err := tx.WithContext(ctx).Create(&adjustment).Error; err != nil {
		return g.classify(err)
	}

	if g.outbox != nil {
		event := outbox.DomainEvent{
			EventType:     enums.EventInventoryAdjusted,
			AggregateType: enums.AggregateInventory,
			AggregateID:   input.ProductID,
			Version:       1,
			Data: payloads.InventoryAdjustedEvent{
				ProductID:     input.ProductID,
				OrderID:       input.OrderID,
				Delta:         -input.Quantity,
				QuantityAfter: quantityAfter,
				Reason:        input.Reason,
			},
		}
		if err := g.outbox.Emit(ctx, tx, event); err != nil {
			return g.classify(err)
		}
	}

	g.metrics.IncAdjustment(input.Reason.String())
	return nil
}

func (g *gateway) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeReconciliation, err, "inventory adjustment status unknown")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply inventory adjustment")
}

package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/internal/inventory"
	"github.com/retailops/retailops-backend/internal/pricing"
	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops/retailops-backend/pkg/errors"
	"github.com/retailops/retailops-backend/pkg/metrics"
	"github.com/retailops/retailops-backend/pkg/outbox"
	"github.com/retailops/retailops-backend/pkg/outbox/payloads"
	"github.com/retailops/retailops-backend/pkg/pagination"
)

const (
	diagnosticAdjusted    = "inventory adjusted"
	diagnosticNotAdjusted = "inventory not adjusted"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the order workflow engine. It owns the order state machine and
// the decision of when a mutation owes an inventory decrement.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	EditOrder(ctx context.Context, input EditOrderInput) (*models.Order, error)
	TransitionStatus(ctx context.Context, input TransitionStatusInput) (*TransitionResult, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	products  ProductFinder
	buyers    BuyerFinder
	inventory inventory.Gateway
	outbox    outboxPublisher
	metrics   *metrics.OrderMetrics
	now       func() time.Time
}

// NewService builds the workflow engine with its required collaborators.
// Metrics are optional.
func NewService(
	repo Repository,
	tx txRunner,
	products ProductFinder,
	buyers BuyerFinder,
	gateway inventory.Gateway,
	outboxSvc outboxPublisher,
	orderMetrics *metrics.OrderMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if buyers == nil {
		return nil, fmt.Errorf("buyer finder required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("inventory gateway required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		products:  products,
		buyers:    buyers,
		inventory: gateway,
		outbox:    outboxSvc,
		metrics:   orderMetrics,
		now:       time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	started := time.Now()
	order, err := s.createOrder(ctx, input)
	s.observe("create_order", started, err)
	return order, err
}

func (s *service) createOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateOrderFields(input.Name, input.BuyerID, input.OrderType, input.Cart, input.FreightPrice, input.AdvancedPayment); err != nil {
		return nil, err
	}

	buyer, err := s.loadBuyer(ctx, input.BuyerID)
	if err != nil {
		return nil, err
	}

	lines, totals, err := s.priceCart(ctx, input.Cart, input.OrderType, input.FreightPrice, input.AdvancedPayment)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		Name:            input.Name,
		BuyerID:         buyer.ID,
		OrderType:       input.OrderType,
		Status:          enums.OrderStatusPending,
		Paid:            false,
		RequestDate:     s.now(),
		DueDate:         input.DueDate,
		FreightPrice:    input.FreightPrice,
		AdvancedPayment: input.AdvancedPayment,
		TotalAmount:     totals.TotalAmount,
		FinalAmount:     totals.FinalAmount,
		Description:     input.Description,
		Version:         1,
		Lines:           toLineModels(lines),
	}

	// Creating an order never touches stock. Inventory is reserved lazily at
	// payment or advance time.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         input.Actor,
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				BuyerID:     order.BuyerID,
				OrderType:   order.OrderType,
				TotalAmount: order.TotalAmount,
				FinalAmount: order.FinalAmount,
				LineCount:   len(order.Lines),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) EditOrder(ctx context.Context, input EditOrderInput) (*models.Order, error) {
	started := time.Now()
	order, err := s.editOrder(ctx, input)
	s.observe("edit_order", started, err)
	return order, err
}

func (s *service) editOrder(ctx context.Context, input EditOrderInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := validateOrderFields(input.Name, input.BuyerID, input.OrderType, input.Cart, input.FreightPrice, input.AdvancedPayment); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		// Paid orders are immutable; orders that already took an advance can
		// only move through status transitions. Both checks look at the
		// stored record, not the incoming payload.
		if order.Paid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
		}
		if order.AdvancedPayment.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already has an advance payment")
		}

		buyer, err := s.loadBuyer(ctx, input.BuyerID)
		if err != nil {
			return err
		}

		lines, totals, err := s.priceCart(ctx, input.Cart, input.OrderType, input.FreightPrice, input.AdvancedPayment)
		if err != nil {
			return err
		}

		adjusted := false
		if input.AdvancedPayment.IsPositive() && !buyer.IsChain {
			for _, line := range lines {
				if err := s.inventory.Decrement(ctx, tx, inventory.DecrementInput{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					OrderID:   &order.ID,
					Reason:    enums.AdjustmentReasonOrderAdvance,
				}); err != nil {
					return err
				}
			}
			adjusted = true
		}

		updates := map[string]any{
			"name":             input.Name,
			"buyer_id":         buyer.ID,
			"order_type":       input.OrderType,
			"status":           enums.OrderStatusPending,
			"paid":             false,
			"due_date":         input.DueDate,
			"freight_price":    input.FreightPrice,
			"advanced_payment": input.AdvancedPayment,
			"total_amount":     totals.TotalAmount,
			"final_amount":     totals.FinalAmount,
			"description":      input.Description,
		}
		ok, err := repo.UpdateOrderVersioned(ctx, order.ID, order.Version, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		if !ok {
			s.metrics.IncVersionConflict()
			return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
		}

		if err := repo.ReplaceLines(ctx, order.ID, toLineModels(lines)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order lines")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderEdited,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         input.Actor,
			Data: payloads.OrderEditedEvent{
				OrderID:           order.ID,
				BuyerID:           buyer.ID,
				FinalAmount:       totals.FinalAmount,
				AdvancedPayment:   input.AdvancedPayment,
				InventoryAdjusted: adjusted,
			},
		}); err != nil {
			return err
		}

		updated, err = repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) TransitionStatus(ctx context.Context, input TransitionStatusInput) (*TransitionResult, error) {
	started := time.Now()
	result, err := s.transitionStatus(ctx, input)
	s.observe("transition_status", started, err)
	return result, err
}

func (s *service) transitionStatus(ctx context.Context, input TransitionStatusInput) (*TransitionResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Status == nil && input.Paid == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status or paid required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *input.Status))
	}

	result := &TransitionResult{Diagnostic: diagnosticNotAdjusted}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		buyer, err := s.loadBuyer(ctx, order.BuyerID)
		if err != nil {
			return err
		}

		// Inventory is owed only on the transition into paid, and only when
		// no advance ever pre-decremented stock. Re-paying a paid order is an
		// inventory no-op.
		becomesPaid := input.Paid != nil && *input.Paid && !order.Paid
		if becomesPaid && !order.AdvancedPayment.IsPositive() && !buyer.IsChain {
			for _, line := range order.Lines {
				if err := s.inventory.Decrement(ctx, tx, inventory.DecrementInput{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					OrderID:   &order.ID,
					Reason:    enums.AdjustmentReasonOrderPaid,
				}); err != nil {
					return err
				}
			}
			result.InventoryAdjusted = true
			result.Diagnostic = diagnosticAdjusted
		}

		targetPaid := order.Paid
		if input.Paid != nil {
			targetPaid = *input.Paid
		}

		updates := map[string]any{}
		if input.Status != nil {
			updates["status"] = *input.Status
		}
		if input.Paid != nil {
			updates["paid"] = *input.Paid
		}
		ok, err := repo.UpdateOrderVersioned(ctx, order.ID, order.Version, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		if !ok {
			s.metrics.IncVersionConflict()
			return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
		}

		if input.Status != nil && *input.Status != order.Status {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         input.Actor,
				Data: payloads.OrderStatusChangedEvent{
					OrderID:   order.ID,
					OldStatus: order.Status,
					NewStatus: *input.Status,
					Paid:      targetPaid,
				},
			}); err != nil {
				return err
			}
		}
		if becomesPaid {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         input.Actor,
				Data: payloads.OrderPaidEvent{
					OrderID:           order.ID,
					BuyerID:           order.BuyerID,
					FinalAmount:       order.FinalAmount,
					InventoryAdjusted: result.InventoryAdjusted,
					PaidAt:            s.now(),
				},
			}); err != nil {
				return err
			}
		}

		result.Order, err = repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *filters.Status))
	}
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) loadBuyer(ctx context.Context, buyerID uuid.UUID) (*models.Buyer, error) {
	buyer, err := s.buyers.FindByID(ctx, buyerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}
	return buyer, nil
}

// priceCart loads fresh product snapshots and prices the cart against them.
func (s *service) priceCart(ctx context.Context, cart []pricing.CartEntry, orderType enums.OrderType, freight, advance decimal.Decimal) ([]pricing.Line, pricing.Totals, error) {
	ids := make([]uuid.UUID, 0, len(cart))
	for _, entry := range cart {
		if entry.Quantity > 0 {
			ids = append(ids, entry.ProductID)
		}
	}
	snapshots, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pricing.Totals{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	lines, err := pricing.ComputeLines(cart, snapshots, orderType)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	return lines, pricing.ComputeTotals(lines, freight, advance), nil
}

func (s *service) observe(operation string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.IncOperation(operation, outcome)
	s.metrics.ObserveDuration(operation, time.Since(started))
}

func validateOrderFields(name string, buyerID uuid.UUID, orderType enums.OrderType, cart []pricing.CartEntry, freight, advance decimal.Decimal) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order name required")
	}
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if !orderType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order type %q", orderType))
	}
	if freight.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "freight price must not be negative")
	}
	if advance.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "advanced payment must not be negative")
	}
	// Non-positive quantities are dropped during pricing, not rejected here.
	for _, entry := range cart {
		if entry.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart entries require a product id")
		}
	}
	return nil
}

func toLineModels(lines []pricing.Line) []models.OrderLine {
	out := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, models.OrderLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}
	return out
}

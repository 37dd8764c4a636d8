package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	pkgerrors "github.com/retailops/retailops-backend/pkg/errors"
	"github.com/retailops/retailops-backend/pkg/outbox"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.InventoryAdjustment{}, &models.OutboxEvent{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func mustCreateProduct(t *testing.T, db *gorm.DB, quantity int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:          uuid.New(),
		Name:        "Widget",
		SKU:         uuid.NewString(),
		RetailPrice: decimal.RequireFromString("100.00"),
		Quantity:    quantity,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestDecrementAppliesAtomicUpdateAndAudit(t *testing.T) {
	db := newTestDB(t)
	gw := NewGateway(0, nil, nil)
	ctx := context.Background()

	product := mustCreateProduct(t, db, 10)
	orderID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return gw.Decrement(ctx, tx, DecrementInput{
			ProductID: product.ID,
			Quantity:  3,
			OrderID:   &orderID,
			Reason:    enums.AdjustmentReasonOrderPaid,
		})
	})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", reloaded.Quantity)
	}

	var adjustment models.InventoryAdjustment
	if err := db.First(&adjustment, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load adjustment: %v", err)
	}
	if adjustment.Delta != -3 || adjustment.QuantityAfter != 7 {
		t.Fatalf("unexpected audit row %+v", adjustment)
	}
	if adjustment.OrderID == nil || *adjustment.OrderID != orderID {
		t.Fatalf("audit row should reference the order")
	}
	if adjustment.Reason != enums.AdjustmentReasonOrderPaid {
		t.Fatalf("unexpected reason %s", adjustment.Reason)
	}
}

func TestDecrementAllowsNegativeStock(t *testing.T) {
	db := newTestDB(t)
	gw := NewGateway(0, nil, nil)

	product := mustCreateProduct(t, db, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return gw.Decrement(context.Background(), tx, DecrementInput{
			ProductID: product.ID,
			Quantity:  5,
			Reason:    enums.AdjustmentReasonOrderAdvance,
		})
	})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Quantity != -3 {
		t.Fatalf("backorder should go negative, got %d", reloaded.Quantity)
	}
}

func TestDecrementUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	gw := NewGateway(0, nil, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return gw.Decrement(context.Background(), tx, DecrementInput{
			ProductID: uuid.New(),
			Quantity:  1,
			Reason:    enums.AdjustmentReasonOrderPaid,
		})
	})
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", pkgerrors.As(err).Code())
	}
}

func TestDecrementValidatesInput(t *testing.T) {
	db := newTestDB(t)
	gw := NewGateway(0, nil, nil)
	product := mustCreateProduct(t, db, 10)

	cases := []DecrementInput{
		{ProductID: uuid.Nil, Quantity: 1, Reason: enums.AdjustmentReasonOrderPaid},
		{ProductID: product.ID, Quantity: 0, Reason: enums.AdjustmentReasonOrderPaid},
		{ProductID: product.ID, Quantity: -1, Reason: enums.AdjustmentReasonOrderPaid},
		{ProductID: product.ID, Quantity: 1, Reason: enums.AdjustmentReason("bogus")},
	}
	for i, input := range cases {
		err := db.Transaction(func(tx *gorm.DB) error {
			return gw.Decrement(context.Background(), tx, input)
		})
		if err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation code, got %s", i, pkgerrors.As(err).Code())
		}
	}

	if err := gw.Decrement(context.Background(), nil, DecrementInput{ProductID: product.ID, Quantity: 1, Reason: enums.AdjustmentReasonOrderPaid}); err == nil {
		t.Fatal("expected error without transaction")
	}
}

func TestDecrementEmitsOutboxEvent(t *testing.T) {
	db := newTestDB(t)
	outboxSvc := outbox.NewService(outbox.NewRepository(db), nil)
	gw := NewGateway(0, outboxSvc, nil)

	product := mustCreateProduct(t, db, 4)

	err := db.Transaction(func(tx *gorm.DB) error {
		return gw.Decrement(context.Background(), tx, DecrementInput{
			ProductID: product.ID,
			Quantity:  1,
			Reason:    enums.AdjustmentReasonOrderPaid,
		})
	})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}

	var events []models.OutboxEvent
	if err := db.Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].EventType != enums.EventInventoryAdjusted {
		t.Fatalf("unexpected event type %s", events[0].EventType)
	}
	if events[0].AggregateID != product.ID {
		t.Fatalf("unexpected aggregate id %s", events[0].AggregateID)
	}
}

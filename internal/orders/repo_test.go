package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	"github.com/retailops/retailops-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Buyer{}, &models.Order{}, &models.OrderLine{}))
	return conn
}

func seedBuyer(t *testing.T, db *gorm.DB) *models.Buyer {
	t.Helper()
	buyer := &models.Buyer{Name: "Test Buyer"}
	require.NoError(t, db.Create(buyer).Error)
	return buyer
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID uuid.UUID, lines int) *models.Order {
	t.Helper()
	order := &models.Order{
		Name:        "seed order",
		BuyerID:     buyerID,
		OrderType:   enums.OrderTypeRetail,
		Status:      enums.OrderStatusPending,
		RequestDate: time.Now().UTC(),
		TotalAmount: decimal.RequireFromString("100.00"),
		FinalAmount: decimal.RequireFromString("100.00"),
		Version:     1,
	}
	for i := 0; i < lines; i++ {
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID:   uuid.New(),
			ProductName: "Widget",
			Quantity:    i + 1,
			UnitPrice:   decimal.RequireFromString("10.00"),
			LineTotal:   decimal.RequireFromString("10.00"),
		})
	}
	repo := NewRepository(db)
	created, err := repo.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestCreateAndFindOrderRoundTrip(t *testing.T) {
	db := newTestDB(t)
	buyer := seedBuyer(t, db)
	order := seedOrder(t, db, buyer.ID, 2)

	repo := NewRepository(db)
	found, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "seed order", found.Name)
	assert.Equal(t, buyer.ID, found.BuyerID)
	assert.Len(t, found.Lines, 2)
	assert.Equal(t, int64(1), found.Version)
}

func TestFindOrderNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	_, err := repo.FindOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateOrderVersionedCAS(t *testing.T) {
	db := newTestDB(t)
	buyer := seedBuyer(t, db)
	order := seedOrder(t, db, buyer.ID, 1)
	repo := NewRepository(db)

	ok, err := repo.UpdateOrderVersioned(context.Background(), order.ID, 1, map[string]any{
		"paid": true,
	})
	require.NoError(t, err)
	require.True(t, ok, "expected update to apply at matching version")

	reloaded, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Paid)
	assert.Equal(t, int64(2), reloaded.Version)

	// A writer still holding version 1 must lose.
	ok, err = repo.UpdateOrderVersioned(context.Background(), order.ID, 1, map[string]any{
		"paid": false,
	})
	require.NoError(t, err)
	assert.False(t, ok, "stale version must not apply")
}

func TestReplaceLines(t *testing.T) {
	db := newTestDB(t)
	buyer := seedBuyer(t, db)
	order := seedOrder(t, db, buyer.ID, 2)
	repo := NewRepository(db)

	productID := uuid.New()
	err := repo.ReplaceLines(context.Background(), order.ID, []models.OrderLine{{
		ProductID:   productID,
		ProductName: "Replacement",
		Quantity:    5,
		UnitPrice:   decimal.RequireFromString("20.00"),
		LineTotal:   decimal.RequireFromString("100.00"),
	}})
	require.NoError(t, err)

	reloaded, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	assert.Equal(t, productID, reloaded.Lines[0].ProductID)
	assert.Equal(t, 5, reloaded.Lines[0].Quantity)

	require.NoError(t, repo.ReplaceLines(context.Background(), order.ID, nil))
	reloaded, err = repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Lines)
}

func TestListOrdersPaginatesAndFilters(t *testing.T) {
	db := newTestDB(t)
	buyer := seedBuyer(t, db)
	other := seedBuyer(t, db)
	repo := NewRepository(db)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		order := &models.Order{
			Name:        "order",
			BuyerID:     buyer.ID,
			OrderType:   enums.OrderTypeRetail,
			Status:      enums.OrderStatusPending,
			RequestDate: base,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if i == 4 {
			order.BuyerID = other.ID
			order.Paid = true
		}
		_, err := repo.CreateOrder(context.Background(), order)
		require.NoError(t, err)
	}

	page, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, o := range page.Orders {
		seen[o.ID] = true
	}
	next, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 10, Cursor: page.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, next.Orders, 3)
	assert.False(t, next.HasMore)
	for _, o := range next.Orders {
		assert.False(t, seen[o.ID], "order %s appeared on both pages", o.ID)
	}

	paid := true
	filtered, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 10}, ListFilters{Paid: &paid, BuyerID: &other.ID})
	require.NoError(t, err)
	assert.Len(t, filtered.Orders, 1)
}

func TestFindPendingUnpaidBefore(t *testing.T) {
	db := newTestDB(t)
	buyer := seedBuyer(t, db)
	repo := NewRepository(db)

	now := time.Now().UTC()
	overdue := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	mk := func(due *time.Time, status enums.OrderStatus, paid bool) {
		t.Helper()
		order := &models.Order{
			Name:        "order",
			BuyerID:     buyer.ID,
			OrderType:   enums.OrderTypeRetail,
			Status:      status,
			Paid:        paid,
			RequestDate: now,
			DueDate:     due,
		}
		_, err := repo.CreateOrder(context.Background(), order)
		require.NoError(t, err)
	}

	mk(&overdue, enums.OrderStatusPending, false) // overdue
	mk(&overdue, enums.OrderStatusPending, true)  // paid, excluded
	mk(&overdue, enums.OrderStatusCancelled, false)
	mk(&future, enums.OrderStatusPending, false)
	mk(nil, enums.OrderStatusPending, false)

	found, err := repo.FindPendingUnpaidBefore(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, enums.OrderStatusPending, found[0].Status)
	assert.False(t, found[0].Paid)
}

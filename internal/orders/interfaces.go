package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/pagination"
)

// Repository defines persistence operations for order aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []models.OrderLine) error
	// UpdateOrderVersioned applies updates only when the stored version still
	// matches expectedVersion, bumping the version on success. A false return
	// with nil error means the compare-and-swap lost.
	UpdateOrderVersioned(ctx context.Context, orderID uuid.UUID, expectedVersion int64, updates map[string]any) (bool, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	FindPendingUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

// ProductFinder loads current product snapshots for pricing.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// BuyerFinder loads buyer records for validation and chain exemption checks.
type BuyerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
}

package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	"github.com/retailops/retailops-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []models.OrderLine) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) UpdateOrderVersioned(ctx context.Context, orderID uuid.UUID, expectedVersion int64, updates map[string]any) (bool, error) {
	payload := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		payload[k] = v
	}
	payload["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, expectedVersion).
		Updates(payload)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Paid != nil {
		query = query.Where("paid = ?", *filters.Paid)
	}
	if filters.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filters.BuyerID)
	}

	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Order
	err = query.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{}
	if len(rows) > limit {
		list.HasMore = true
		rows = rows[:limit]
	}
	list.Orders = rows
	if list.HasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}.Encode()
	}
	return list, nil
}

func (r *repository) FindPendingUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND paid = ? AND due_date IS NOT NULL AND due_date < ?",
			enums.OrderStatusPending, false, cutoff).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}

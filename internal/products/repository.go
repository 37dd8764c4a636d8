package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
)

// Repository exposes catalog reads for the order workflow. Pricing snapshots
// always come from the live product rows, never from stored order lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a single product. Soft-deleted rows are excluded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the requested products keyed by ID. Missing or soft-deleted
// products are simply absent from the result; callers decide whether absence
// is fatal.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	snapshots := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return snapshots, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		snapshots[row.ID] = row
	}
	return snapshots, nil
}

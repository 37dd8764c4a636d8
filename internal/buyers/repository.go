package buyer

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
)

// Repository exposes buyer reads for the order workflow.
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

// FindByID loads a buyer record.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	var buyer models.Buyer
	if err := r.db.WithContext(ctx).First(&buyer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &buyer, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Buyer represents a customer account. Chain buyers carry their own stock and
// are exempt from inventory adjustments.
type Buyer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     *string   `gorm:"column:email"`
	Phone     *string   `gorm:"column:phone"`
	IsChain   bool      `gorm:"column:is_chain;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

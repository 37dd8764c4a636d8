package buyer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Buyer{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestFindByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := &models.Buyer{ID: uuid.New(), Name: "Corner Store", IsChain: true}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("create buyer: %v", err)
	}

	found, err := repo.FindByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Name != "Corner Store" || !found.IsChain {
		t.Fatalf("unexpected buyer %+v", found)
	}

	if _, err := repo.FindByID(ctx, uuid.New()); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected record not found, got %v", err)
	}
}

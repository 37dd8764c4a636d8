package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	"github.com/retailops/retailops-backend/pkg/outbox/payloads"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.OutboxEvent{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)

	orderID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Actor:         &ActorRef{Source: "api"},
		Data:          payloads.OrderCreatedEvent{OrderID: orderID, LineCount: 2},
		Version:       1,
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, event)
	}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	var row models.OutboxEvent
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("fetch event: %v", err)
	}
	if row.EventType != enums.EventOrderCreated {
		t.Fatalf("unexpected event type %s", row.EventType)
	}
	if row.AggregateID != orderID {
		t.Fatalf("unexpected aggregate id %s", row.AggregateID)
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.EventID == "" {
		t.Fatal("expected envelope event id")
	}
	if envelope.Actor == nil || envelope.Actor.Source != "api" {
		t.Fatalf("unexpected actor %+v", envelope.Actor)
	}

	var data payloads.OrderCreatedEvent
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.OrderID != orderID || data.LineCount != 2 {
		t.Fatalf("unexpected payload %+v", data)
	}
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(newTestDB(t)), nil)
	if err := svc.Emit(context.Background(), nil, DomainEvent{}); err == nil {
		t.Fatal("expected error without transaction")
	}
}

func TestEmitIfNotExistsDeduplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)

	orderID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventOrderOverdue,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Data:          payloads.OrderOverdueEvent{OrderID: orderID},
		Version:       1,
	}

	for i := 0; i < 2; i++ {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExists(context.Background(), tx, event)
		}); err != nil {
			t.Fatalf("emit %d failed: %v", i, err)
		}
	}

	var count int64
	if err := db.Model(&models.OutboxEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single event, got %d", count)
	}
}

package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/retailops/retailops-backend/pkg/db/models"
	"github.com/retailops/retailops-backend/pkg/enums"
	"github.com/retailops/retailops-backend/pkg/logger"
	"github.com/retailops/retailops-backend/pkg/outbox"
	"github.com/retailops/retailops-backend/pkg/outbox/payloads"
)

const defaultOverdueGrace = 24 * time.Hour

type overdueOrderReader interface {
	FindPendingUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderOverdueJobParams configure the overdue order sweep.
type OrderOverdueJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Orders overdueOrderReader
	Outbox outboxEmitter
	Grace  time.Duration
}

// NewOrderOverdueJob builds the cron job that flags pending unpaid orders
// whose due date passed more than the grace period ago.
func NewOrderOverdueJob(params OrderOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultOverdueGrace
	}
	return &orderOverdueJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		outbox: params.Outbox,
		grace:  grace,
		now:    time.Now,
	}, nil
}

type orderOverdueJob struct {
	logg   *logger.Logger
	db     txRunner
	orders overdueOrderReader
	outbox outboxEmitter
	grace  time.Duration
	now    func() time.Time
}

func (j *orderOverdueJob) Name() string { return "order-overdue" }

func (j *orderOverdueJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	overdue, err := j.orders.FindPendingUnpaidBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query overdue orders: %w", err)
	}
	var errs []error
	count := 0
	for _, order := range overdue {
		if err := j.emitOverdue(ctx, order); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "failed": len(errs)})
	j.logg.Info(logCtx, "order overdue sweep complete")
	return multierr.Combine(errs...)
}

func (j *orderOverdueJob) emitOverdue(ctx context.Context, order models.Order) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderOverdue,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    j.now().UTC(),
			Data: payloads.OrderOverdueEvent{
				OrderID: order.ID,
				BuyerID: order.BuyerID,
				DueDate: derefTime(order.DueDate),
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}

func derefTime(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retailops/retailops-backend/api/controllers"
	ordercontrollers "github.com/retailops/retailops-backend/api/controllers/orders"
	"github.com/retailops/retailops-backend/api/middleware"
	internalorders "github.com/retailops/retailops-backend/internal/orders"
	"github.com/retailops/retailops-backend/pkg/config"
	"github.com/retailops/retailops-backend/pkg/db"
	"github.com/retailops/retailops-backend/pkg/logger"
	"github.com/retailops/retailops-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	idemStore redis.IdempotencyStore,
	ordersSvc internalorders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Get("/api/v1/orders", ordercontrollers.List(ordersSvc, logg))
		r.Post("/api/v1/orders", ordercontrollers.Create(ordersSvc, logg))
		r.Get("/api/v1/orders/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
		r.Put("/api/v1/orders/{orderId}", ordercontrollers.Edit(ordersSvc, logg))
		r.Patch("/api/v1/orders/{orderId}/status", ordercontrollers.Transition(ordersSvc, logg))
	})

	return r
}

package controllers

import (
	"net/http"

	"github.com/retailops/retailops-backend/api/responses"
	"github.com/retailops/retailops-backend/pkg/config"
	"github.com/retailops/retailops-backend/pkg/db"
	pkgerrors "github.com/retailops/retailops-backend/pkg/errors"
	"github.com/retailops/retailops-backend/pkg/logger"
	"github.com/retailops/retailops-backend/pkg/redis"
)

const envHeader = "X-RetailOps-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unreachable").
						WithDetails(map[string]any{"dependency": "database"}))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unreachable").
						WithDetails(map[string]any{"dependency": "redis"}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

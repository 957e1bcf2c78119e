package controllers

import (
	"net/http"

	"github.com/tollnet/interop-backoffice/api/responses"
	"github.com/tollnet/interop-backoffice/pkg/config"
	"github.com/tollnet/interop-backoffice/pkg/db"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/logger"
	"github.com/tollnet/interop-backoffice/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteResult(w, r, map[string]string{"status": "live", "env": cfg.App.Env})
	}
}

func HealthReady(logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}
		if err := redisP.Ping(ctx); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unreachable"))
			return
		}
		responses.WriteResult(w, r, map[string]string{"status": "ready"})
	}
}

package controllers

import (
	"net/http"

	"github.com/tollnet/interop-backoffice/api/middleware"
	"github.com/tollnet/interop-backoffice/api/responses"
	"github.com/tollnet/interop-backoffice/api/validators"
	"github.com/tollnet/interop-backoffice/internal/auth"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func Login(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Login(ctx, body.Username, body.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func Logout(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accessID := middleware.AccessIDFromContext(ctx)
		if accessID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "active session required"))
			return
		}

		if err := service.Logout(ctx, accessID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

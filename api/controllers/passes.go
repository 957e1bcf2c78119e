package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tollnet/interop-backoffice/api/responses"
	"github.com/tollnet/interop-backoffice/api/validators"
	"github.com/tollnet/interop-backoffice/internal/passes"
	"github.com/tollnet/interop-backoffice/pkg/logger"
)

func TollStationPasses(service passes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stationID, err := validators.StationID(chi.URLParam(r, "stationID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, to, err := validators.DateRange(chi.URLParam(r, "date_from"), chi.URLParam(r, "date_to"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.StationPasses(ctx, stationID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func PassAnalysis(service passes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stationOpID, err := validators.OperatorID("stationOpID", chi.URLParam(r, "stationOpID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		tagOpID, err := validators.OperatorID("tagOpID", chi.URLParam(r, "tagOpID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, to, err := validators.DateRange(chi.URLParam(r, "date_from"), chi.URLParam(r, "date_to"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.PassAnalysis(ctx, stationOpID, tagOpID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func PassesCost(service passes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tollOpID, err := validators.OperatorID("tollOpID", chi.URLParam(r, "tollOpID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		tagOpID, err := validators.OperatorID("tagOpID", chi.URLParam(r, "tagOpID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, to, err := validators.DateRange(chi.URLParam(r, "date_from"), chi.URLParam(r, "date_to"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.PassesCost(ctx, tollOpID, tagOpID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func ChargesBy(service passes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tollOpID, err := validators.OperatorID("tollOpID", chi.URLParam(r, "tollOpID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, to, err := validators.DateRange(chi.URLParam(r, "date_from"), chi.URLParam(r, "date_to"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.ChargesBy(ctx, tollOpID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

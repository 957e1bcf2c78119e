package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tollnet/interop-backoffice/api/middleware"
	"github.com/tollnet/interop-backoffice/api/responses"
	"github.com/tollnet/interop-backoffice/api/validators"
	"github.com/tollnet/interop-backoffice/internal/reports"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/logger"
)

// rangedReport factors the dashboard handlers that take the caller's
// operator plus an inclusive day range.
func rangedReport[T any](logg *logger.Logger, query func(ctx context.Context, operatorID string, from, to time.Time) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller := middleware.OperatorIDFromContext(ctx)
		if caller == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
			return
		}
		from, to, err := validators.DateRange(chi.URLParam(r, "date_from"), chi.URLParam(r, "date_to"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := query(ctx, caller, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func TrafficVariation(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return rangedReport(logg, service.TrafficVariation)
}

func TrafficVariationPerRoad(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller := middleware.OperatorIDFromContext(ctx)
		if caller == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
			return
		}
		road, err := validators.RoadName(chi.URLParam(r, "road"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, to, err := validators.DateRange(chi.URLParam(r, "date_from"), chi.URLParam(r, "date_to"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.TrafficVariationPerRoad(ctx, caller, road, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func Roads(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller := middleware.OperatorIDFromContext(ctx)
		if caller == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
			return
		}

		result, err := service.Roads(ctx, caller)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func TrafficDistribution(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return rangedReport(logg, service.TrafficDistribution)
}

func RevenueDistribution(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return rangedReport(logg, service.RevenueDistribution)
}

func PopularStations(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return rangedReport(logg, service.PopularStations)
}

func DebtChart(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return rangedReport(logg, service.DebtChart)
}

func OwedAmounts(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return rangedReport(logg, service.OwedAmounts)
}

package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tollnet/interop-backoffice/api/middleware"
	"github.com/tollnet/interop-backoffice/api/responses"
	"github.com/tollnet/interop-backoffice/api/validators"
	"github.com/tollnet/interop-backoffice/internal/debts"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/logger"
)

// defaultHistoryMonths is the trailing window for the debt history chart.
const defaultHistoryMonths = 12

func Settle(service debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller := middleware.OperatorIDFromContext(ctx)
		if caller == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
			return
		}
		creditorID, err := validators.OperatorID("creditorID", chi.URLParam(r, "creditorID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Settle(ctx, caller, caller, creditorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func VerifyPayment(service debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller := middleware.OperatorIDFromContext(ctx)
		if caller == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
			return
		}
		debtorID, err := validators.OperatorID("debtorID", chi.URLParam(r, "debtorID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.VerifyPayment(ctx, caller, caller, debtorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func NotSettled(service debts.Service, logg *logger.Logger) http.HandlerFunc {
	return callerDebtQuery(logg, service.NotSettled)
}

func TotalNotSettled(service debts.Service, logg *logger.Logger) http.HandlerFunc {
	return callerDebtQuery(logg, service.TotalNotSettled)
}

func NotVerified(service debts.Service, logg *logger.Logger) http.HandlerFunc {
	return callerDebtQuery(logg, service.NotVerified)
}

func TotalNotVerified(service debts.Service, logg *logger.Logger) http.HandlerFunc {
	return callerDebtQuery(logg, service.TotalNotVerified)
}

func DebtHistory(service debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller := middleware.OperatorIDFromContext(ctx)
		if caller == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
			return
		}
		debtorID, err := validators.OperatorID("debtorID", chi.URLParam(r, "debtorID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		months := defaultHistoryMonths
		if raw := r.URL.Query().Get("months"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "months must be a positive integer"))
				return
			}
			months = parsed
		}

		result, err := service.History(ctx, caller, debtorID, months)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

// callerDebtQuery factors the four caller-scoped aggregate listings.
func callerDebtQuery[T any](logg *logger.Logger, query func(ctx context.Context, operatorID string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller := middleware.OperatorIDFromContext(ctx)
		if caller == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
			return
		}

		result, err := query(ctx, caller)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

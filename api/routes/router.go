package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tollnet/interop-backoffice/api/controllers"
	"github.com/tollnet/interop-backoffice/api/middleware"
	"github.com/tollnet/interop-backoffice/internal/auth"
	"github.com/tollnet/interop-backoffice/internal/debts"
	"github.com/tollnet/interop-backoffice/internal/operators"
	"github.com/tollnet/interop-backoffice/internal/passes"
	"github.com/tollnet/interop-backoffice/internal/reports"
	"github.com/tollnet/interop-backoffice/internal/stations"
	"github.com/tollnet/interop-backoffice/pkg/auth/session"
	"github.com/tollnet/interop-backoffice/pkg/config"
	"github.com/tollnet/interop-backoffice/pkg/db"
	"github.com/tollnet/interop-backoffice/pkg/logger"
	"github.com/tollnet/interop-backoffice/pkg/metrics"
	"github.com/tollnet/interop-backoffice/pkg/redis"
)

// Deps carries everything the router hands to controllers. cmd/api builds
// one of these after wiring config, storage and the domain services.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Sessions session.AccessSessionChecker
	Registry prometheus.Gatherer

	Auth      auth.Service
	Passes    passes.Service
	Debts     debts.Service
	Reports   reports.Service
	Stations  stations.Service
	Operators operators.Service

	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if d.HTTPMetrics != nil {
		r.Use(middleware.Metrics(d.HTTPMetrics))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Post("/api/login", controllers.Login(d.Auth, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Post("/logout", controllers.Logout(d.Auth, logg))

		r.Get("/tollStationPasses/{stationID}/{date_from}/{date_to}", controllers.TollStationPasses(d.Passes, logg))
		r.Get("/passAnalysis/{stationOpID}/{tagOpID}/{date_from}/{date_to}", controllers.PassAnalysis(d.Passes, logg))
		r.Get("/passesCost/{tollOpID}/{tagOpID}/{date_from}/{date_to}", controllers.PassesCost(d.Passes, logg))
		r.Get("/chargesBy/{tollOpID}/{date_from}/{date_to}", controllers.ChargesBy(d.Passes, logg))

		r.Get("/notSettled", controllers.NotSettled(d.Debts, logg))
		r.Get("/totalNotSettled", controllers.TotalNotSettled(d.Debts, logg))
		r.Get("/notVerified", controllers.NotVerified(d.Debts, logg))
		r.Get("/totalNotVerified", controllers.TotalNotVerified(d.Debts, logg))
		r.Post("/settle/{creditorID}", controllers.Settle(d.Debts, logg))
		r.Post("/verifyPayment/{debtorID}", controllers.VerifyPayment(d.Debts, logg))
		r.Get("/debtHistory/{debtorID}", controllers.DebtHistory(d.Debts, logg))

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/trafficVariation/{date_from}/{date_to}", controllers.TrafficVariation(d.Reports, logg))
			r.Get("/trafficVariation/{road}/{date_from}/{date_to}", controllers.TrafficVariationPerRoad(d.Reports, logg))
			r.Get("/roads", controllers.Roads(d.Reports, logg))
			r.Get("/trafficDistribution/{date_from}/{date_to}", controllers.TrafficDistribution(d.Reports, logg))
			r.Get("/revenueDistribution/{date_from}/{date_to}", controllers.RevenueDistribution(d.Reports, logg))
			r.Get("/popularStations/{date_from}/{date_to}", controllers.PopularStations(d.Reports, logg))
			r.Get("/debtChart/{date_from}/{date_to}", controllers.DebtChart(d.Reports, logg))
			r.Get("/owedAmounts/{date_from}/{date_to}", controllers.OwedAmounts(d.Reports, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Get("/healthcheck", controllers.HealthCheck(d.Stations, logg))
			r.Post("/resetstations", controllers.ResetStations(d.Stations, cfg.Stations, logg))
			r.Post("/resetpasses", controllers.ResetPasses(d.Stations, logg))
			r.Post("/addpasses", controllers.AddPasses(d.Stations, logg))
			r.Post("/usermod", controllers.Usermod(d.Operators, logg))
			r.Get("/users", controllers.Users(d.Operators, logg))
		})
	})

	return r
}

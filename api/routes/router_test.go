package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tollnet/interop-backoffice/internal/auth"
	"github.com/tollnet/interop-backoffice/internal/debts"
	"github.com/tollnet/interop-backoffice/internal/operators"
	"github.com/tollnet/interop-backoffice/internal/passes"
	"github.com/tollnet/interop-backoffice/internal/reports"
	"github.com/tollnet/interop-backoffice/internal/stations"
	pkgauth "github.com/tollnet/interop-backoffice/pkg/auth"
	"github.com/tollnet/interop-backoffice/pkg/config"
	"github.com/tollnet/interop-backoffice/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, string, string) (*auth.LoginResult, error) {
	return &auth.LoginResult{Token: "stub"}, nil
}

func (stubAuthService) Logout(context.Context, string) error {
	return nil
}

type stubPassesService struct{}

func (stubPassesService) StationPasses(context.Context, string, time.Time, time.Time) (*passes.StationPassesResult, error) {
	return &passes.StationPassesResult{}, nil
}

func (stubPassesService) PassAnalysis(context.Context, string, string, time.Time, time.Time) (*passes.PassAnalysisResult, error) {
	return &passes.PassAnalysisResult{}, nil
}

func (stubPassesService) PassesCost(context.Context, string, string, time.Time, time.Time) (*passes.PassesCostResult, error) {
	return &passes.PassesCostResult{}, nil
}

func (stubPassesService) ChargesBy(context.Context, string, time.Time, time.Time) (*passes.ChargesByResult, error) {
	return &passes.ChargesByResult{}, nil
}

type stubDebtsService struct{}

func (stubDebtsService) Settle(context.Context, string, string, string) (*debts.SettleResult, error) {
	return &debts.SettleResult{DebtsSettled: 1}, nil
}

func (stubDebtsService) VerifyPayment(context.Context, string, string, string) (*debts.VerifyResult, error) {
	return &debts.VerifyResult{DebtsVerified: 1}, nil
}

func (stubDebtsService) NotSettled(context.Context, string) (*debts.OwedResult, error) {
	return &debts.OwedResult{}, nil
}

func (stubDebtsService) TotalNotSettled(context.Context, string) (*debts.TotalResult, error) {
	return &debts.TotalResult{}, nil
}

func (stubDebtsService) NotVerified(context.Context, string) (*debts.OwedResult, error) {
	return &debts.OwedResult{}, nil
}

func (stubDebtsService) TotalNotVerified(context.Context, string) (*debts.TotalResult, error) {
	return &debts.TotalResult{}, nil
}

func (stubDebtsService) History(context.Context, string, string, int) (*debts.HistoryResult, error) {
	return &debts.HistoryResult{}, nil
}

type stubReportsService struct{}

func (stubReportsService) TrafficVariation(context.Context, string, time.Time, time.Time) (*reports.TrafficSeriesResult, error) {
	return &reports.TrafficSeriesResult{}, nil
}

func (stubReportsService) TrafficVariationPerRoad(context.Context, string, string, time.Time, time.Time) (*reports.TrafficSeriesResult, error) {
	return &reports.TrafficSeriesResult{}, nil
}

func (stubReportsService) Roads(context.Context, string) (*reports.RoadsResult, error) {
	return &reports.RoadsResult{}, nil
}

func (stubReportsService) TrafficDistribution(context.Context, string, time.Time, time.Time) (*reports.TrafficDistributionResult, error) {
	return &reports.TrafficDistributionResult{}, nil
}

func (stubReportsService) RevenueDistribution(context.Context, string, time.Time, time.Time) (*reports.RevenueDistributionResult, error) {
	return &reports.RevenueDistributionResult{}, nil
}

func (stubReportsService) PopularStations(context.Context, string, time.Time, time.Time) (*reports.PopularStationsResult, error) {
	return &reports.PopularStationsResult{}, nil
}

func (stubReportsService) DebtChart(context.Context, string, time.Time, time.Time) (*reports.AmountSeriesResult, error) {
	return &reports.AmountSeriesResult{}, nil
}

func (stubReportsService) OwedAmounts(context.Context, string, time.Time, time.Time) (*reports.OwedAmountsResult, error) {
	return &reports.OwedAmountsResult{}, nil
}

type stubStationsService struct{}

func (stubStationsService) ResetStations(context.Context, io.Reader) (*stations.ResetResult, error) {
	return &stations.ResetResult{RowsAffected: 1}, nil
}

func (stubStationsService) ResetPasses(context.Context) (*stations.ResetResult, error) {
	return &stations.ResetResult{RowsAffected: 1}, nil
}

func (stubStationsService) AddPasses(context.Context, io.Reader) (*stations.ResetResult, error) {
	return &stations.ResetResult{RowsAffected: 1}, nil
}

func (stubStationsService) HealthCheck(context.Context) (*stations.HealthResult, error) {
	return &stations.HealthResult{Status: "OK"}, nil
}

type stubOperatorsService struct{}

func (stubOperatorsService) List(context.Context) ([]operators.Account, error) {
	return []operators.Account{{ID: "NAO"}}, nil
}

func (stubOperatorsService) Upsert(context.Context, string, string, string, string, bool) (*operators.Account, error) {
	return &operators.Account{ID: "NAO"}, nil
}

func (stubOperatorsService) EnsureAdmin(context.Context) error {
	return nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "9115"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "tollnet-test", ExpirationMinutes: 120},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:    testRouterConfig(),
		Logger:    logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		DB:        stubPinger{},
		Redis:     stubPinger{},
		Sessions:  stubSessions{},
		Auth:      stubAuthService{},
		Passes:    stubPassesService{},
		Debts:     stubDebtsService{},
		Reports:   stubReportsService{},
		Stations:  stubStationsService{},
		Operators: stubOperatorsService{},
	})
}

func mintRouterToken(t *testing.T, admin bool) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testRouterConfig().JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		OperatorID: "NAO",
		Username:   "nao-console",
		Admin:      admin,
		JTI:        "router-jti",
	})
	require.NoError(t, err)
	return token
}

func TestRouterHealthIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notSettled", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterServesAuthedRoutes(t *testing.T) {
	router := newTestRouter(t)
	token := mintRouterToken(t, false)

	paths := []string{
		"/api/notSettled",
		"/api/tollStationPasses/NAO01/20220101/20220131",
		"/api/dashboard/roads",
		"/api/dashboard/trafficVariation/20220101/20220131",
		"/api/dashboard/trafficVariation/A1/20220101/20220131",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterAdminGroupRequiresAdmin(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, true))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package debts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
)

type fakeDebtRepo struct {
	operators []string
	months    []string
	debts     []*models.Debt
}

func (f *fakeDebtRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeDebtRepo) Create(_ context.Context, debt *models.Debt) error {
	f.debts = append(f.debts, debt)
	return nil
}

func (f *fakeDebtRepo) MarkSettled(_ context.Context, debtorID, creditorID string) (int64, error) {
	var n int64
	for _, d := range f.debts {
		if d.DebtorID == debtorID && d.CreditorID == creditorID && !d.Settled && !d.Verified {
			d.Settled = true
			n++
		}
	}
	return n, nil
}

func (f *fakeDebtRepo) MarkVerified(_ context.Context, debtorID, creditorID string) (int64, error) {
	var n int64
	for _, d := range f.debts {
		if d.DebtorID == debtorID && d.CreditorID == creditorID && d.Settled && !d.Verified {
			d.Verified = true
			n++
		}
	}
	return n, nil
}

func (f *fakeDebtRepo) UnsettledTotals(_ context.Context, debtorID string) ([]PairTotal, error) {
	return groupTotals(f.debts, func(d *models.Debt) (string, bool) {
		return d.CreditorID, d.DebtorID == debtorID && !d.Settled
	}), nil
}

func (f *fakeDebtRepo) UnverifiedTotals(_ context.Context, creditorID string) ([]PairTotal, error) {
	return groupTotals(f.debts, func(d *models.Debt) (string, bool) {
		return d.DebtorID, d.CreditorID == creditorID && d.Settled && !d.Verified
	}), nil
}

func groupTotals(debts []*models.Debt, match func(*models.Debt) (string, bool)) []PairTotal {
	sums := map[string]decimal.Decimal{}
	order := []string{}
	for _, d := range debts {
		key, ok := match(d)
		if !ok {
			continue
		}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] = sums[key].Add(d.Amount)
	}
	out := make([]PairTotal, 0, len(order))
	for _, key := range order {
		out = append(out, PairTotal{OperatorID: key, Total: sums[key]})
	}
	return out
}

func (f *fakeDebtRepo) ListByPair(_ context.Context, debtorID, creditorID string, from, to time.Time) ([]models.Debt, error) {
	var out []models.Debt
	for _, d := range f.debts {
		if d.DebtorID == debtorID && d.CreditorID == creditorID &&
			!d.CreatedAt.Before(from) && d.CreatedAt.Before(to) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDebtRepo) OperatorIDs(_ context.Context) ([]string, error) {
	return f.operators, nil
}

func (f *fakeDebtRepo) Months(_ context.Context, from, to string) ([]string, error) {
	var out []string
	// months are stored newest first already
	for _, m := range f.months {
		if m >= from && m <= to {
			out = append(out, m)
		}
	}
	return out, nil
}

func newDebtService(t *testing.T, repo Repository) *service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time {
		return time.Date(2022, 4, 10, 14, 0, 0, 0, time.UTC)
	}
	return impl
}

func openDebt(debtor, creditor, amount string, created time.Time) *models.Debt {
	return &models.Debt{
		DebtorID:   debtor,
		CreditorID: creditor,
		Amount:     decimal.RequireFromString(amount),
		CreatedAt:  created,
	}
}

func seededDebtRepo() *fakeDebtRepo {
	jan := time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC)
	return &fakeDebtRepo{
		operators: []string{"EG", "GE", "NAO"},
		months:    []string{"2022-04", "2022-03", "2022-02", "2022-01", "2021-12", "2021-11"},
		debts: []*models.Debt{
			openDebt("EG", "NAO", "10.0", jan),
			openDebt("EG", "NAO", "5.0", jan.AddDate(0, 0, 3)),
			openDebt("EG", "GE", "2.5", jan),
		},
	}
}

func TestSettleLifecycle(t *testing.T) {
	repo := seededDebtRepo()
	svc := newDebtService(t, repo)
	ctx := context.Background()

	owed, err := svc.NotSettled(ctx, "EG")
	require.NoError(t, err)
	require.Len(t, owed.OpList, 2)
	assert.Equal(t, OperatorAmount{OpID: "GE", Amount: 2.5}, owed.OpList[0])
	assert.Equal(t, OperatorAmount{OpID: "NAO", Amount: 15.0}, owed.OpList[1])

	res, err := svc.Settle(ctx, "EG", "EG", "NAO")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DebtsSettled)

	// The settled pair drops to zero in the unsettled view but the row stays.
	owed, err = svc.NotSettled(ctx, "EG")
	require.NoError(t, err)
	assert.Equal(t, OperatorAmount{OpID: "NAO", Amount: 0}, owed.OpList[1])

	// The creditor now sees the settled amount pending verification.
	pending, err := svc.NotVerified(ctx, "NAO")
	require.NoError(t, err)
	require.Len(t, pending.OpList, 2)
	assert.Equal(t, OperatorAmount{OpID: "EG", Amount: 15.0}, pending.OpList[0])
	assert.Equal(t, OperatorAmount{OpID: "GE", Amount: 0}, pending.OpList[1])
}

func TestSettleIdempotent(t *testing.T) {
	repo := seededDebtRepo()
	svc := newDebtService(t, repo)
	ctx := context.Background()

	_, err := svc.Settle(ctx, "EG", "EG", "NAO")
	require.NoError(t, err)

	// Nothing open remains for the pair: the retry is a reported no-op.
	_, err = svc.Settle(ctx, "EG", "EG", "NAO")
	assert.True(t, pkgerrors.IsNoContent(err))
}

func TestVerifyRequiresSettledRows(t *testing.T) {
	repo := seededDebtRepo()
	svc := newDebtService(t, repo)
	ctx := context.Background()

	// Open rows cannot be verified directly.
	_, err := svc.VerifyPayment(ctx, "NAO", "NAO", "EG")
	assert.True(t, pkgerrors.IsNoContent(err))

	_, err = svc.Settle(ctx, "EG", "EG", "NAO")
	require.NoError(t, err)

	res, err := svc.VerifyPayment(ctx, "NAO", "NAO", "EG")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DebtsVerified)

	for _, d := range repo.debts {
		if d.Verified {
			assert.True(t, d.Settled)
		}
	}
}

func TestLifecycleAuthorization(t *testing.T) {
	svc := newDebtService(t, seededDebtRepo())
	ctx := context.Background()

	// A caller other than the named debtor cannot settle.
	_, err := svc.Settle(ctx, "GE", "EG", "NAO")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	// A caller other than the named creditor cannot verify.
	_, err = svc.VerifyPayment(ctx, "GE", "NAO", "EG")
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestTotalNotSettled(t *testing.T) {
	repo := seededDebtRepo()
	svc := newDebtService(t, repo)
	ctx := context.Background()

	total, err := svc.TotalNotSettled(ctx, "EG")
	require.NoError(t, err)
	assert.Equal(t, 17.5, total.TotalAmount)

	// An operator with no unsettled rows at all gets NoContent, not zero.
	_, err = svc.TotalNotSettled(ctx, "GE")
	assert.True(t, pkgerrors.IsNoContent(err))
}

func TestHistoryGapFilling(t *testing.T) {
	repo := seededDebtRepo()
	repo.debts = append(repo.debts,
		openDebt("EG", "NAO", "3.0", time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)))
	svc := newDebtService(t, repo)

	res, err := svc.History(context.Background(), "NAO", "EG", 4)
	require.NoError(t, err)

	assert.Equal(t, "2022-01", res.PeriodFrom)
	assert.Equal(t, "2022-04", res.PeriodTo)
	require.Len(t, res.MonthlyDebts, 4)

	// Newest first; February had no accruals and still appears as zero.
	assert.Equal(t, MonthAmount{Month: "2022-04", Amount: 0}, res.MonthlyDebts[0])
	assert.Equal(t, MonthAmount{Month: "2022-03", Amount: 3.0}, res.MonthlyDebts[1])
	assert.Equal(t, MonthAmount{Month: "2022-02", Amount: 0}, res.MonthlyDebts[2])
	assert.Equal(t, MonthAmount{Month: "2022-01", Amount: 15.0}, res.MonthlyDebts[3])
}

func TestHistoryRejectsEmptyWindow(t *testing.T) {
	svc := newDebtService(t, seededDebtRepo())

	_, err := svc.History(context.Background(), "NAO", "EG", 0)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

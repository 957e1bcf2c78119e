package debts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/money"
)

const (
	stampLayout = "2006-01-02 15:04"
	monthLayout = "2006-01"
)

// Service drives the debt lifecycle: open rows are settled by the debtor,
// settled rows are verified by the creditor, and both transitions are
// forward-only. Read shapes aggregate over the stored rows on every call.
type Service interface {
	Settle(ctx context.Context, callerID, debtorID, creditorID string) (*SettleResult, error)
	VerifyPayment(ctx context.Context, callerID, creditorID, debtorID string) (*VerifyResult, error)
	NotSettled(ctx context.Context, debtorID string) (*OwedResult, error)
	TotalNotSettled(ctx context.Context, debtorID string) (*TotalResult, error)
	NotVerified(ctx context.Context, creditorID string) (*OwedResult, error)
	TotalNotVerified(ctx context.Context, creditorID string) (*TotalResult, error)
	History(ctx context.Context, creditorID, debtorID string, months int) (*HistoryResult, error)
}

type SettleResult struct {
	DebtorID         string `json:"debtorID"`
	CreditorID       string `json:"creditorID"`
	RequestTimestamp string `json:"requestTimestamp"`
	DebtsSettled     int64  `json:"debtsSettled"`
}

type VerifyResult struct {
	CreditorID       string `json:"creditorID"`
	DebtorID         string `json:"debtorID"`
	RequestTimestamp string `json:"requestTimestamp"`
	DebtsVerified    int64  `json:"debtsVerified"`
}

// OperatorAmount is one counterparty row in an owed/pending listing. Zero is
// a valid amount: every other operator appears even with no matching debts.
type OperatorAmount struct {
	OpID   string  `json:"opID"`
	Amount float64 `json:"amount"`
}

type OwedResult struct {
	OpID             string           `json:"opID"`
	RequestTimestamp string           `json:"requestTimestamp"`
	OpList           []OperatorAmount `json:"opList"`
}

type TotalResult struct {
	OpID             string  `json:"opID"`
	RequestTimestamp string  `json:"requestTimestamp"`
	TotalAmount      float64 `json:"totalAmount"`
}

type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type HistoryResult struct {
	CreditorID       string        `json:"creditorID"`
	DebtorID         string        `json:"debtorID"`
	RequestTimestamp string        `json:"requestTimestamp"`
	PeriodFrom       string        `json:"periodFrom"`
	PeriodTo         string        `json:"periodTo"`
	MonthlyDebts     []MonthAmount `json:"monthlyDebts"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the lifecycle manager with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("debt repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Settle transitions every open debt for the ordered pair. Only the named
// debtor may settle; a pair with nothing open is a no-op reported as
// NoContent.
func (s *service) Settle(ctx context.Context, callerID, debtorID, creditorID string) (*SettleResult, error) {
	if callerID == "" || callerID != debtorID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "only the debtor may settle a debt")
	}
	if debtorID == creditorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debtor and creditor must differ")
	}

	affected, err := s.repo.MarkSettled(ctx, debtorID, creditorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling debts")
	}
	if affected == 0 {
		return nil, pkgerrors.NoContent("no open debts for the specified pair")
	}

	return &SettleResult{
		DebtorID:         debtorID,
		CreditorID:       creditorID,
		RequestTimestamp: s.now().Format(stampLayout),
		DebtsSettled:     affected,
	}, nil
}

// VerifyPayment transitions every settled, unverified debt for the ordered
// pair. Only the named creditor may verify.
func (s *service) VerifyPayment(ctx context.Context, callerID, creditorID, debtorID string) (*VerifyResult, error) {
	if callerID == "" || callerID != creditorID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "only the creditor may verify a payment")
	}
	if debtorID == creditorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debtor and creditor must differ")
	}

	affected, err := s.repo.MarkVerified(ctx, debtorID, creditorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying debts")
	}
	if affected == 0 {
		return nil, pkgerrors.NoContent("no settled debts awaiting verification for the specified pair")
	}

	return &VerifyResult{
		CreditorID:       creditorID,
		DebtorID:         debtorID,
		RequestTimestamp: s.now().Format(stampLayout),
		DebtsVerified:    affected,
	}, nil
}

func (s *service) NotSettled(ctx context.Context, debtorID string) (*OwedResult, error) {
	totals, err := s.repo.UnsettledTotals(ctx, debtorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing unsettled debts")
	}
	return s.owedResult(ctx, debtorID, totals)
}

func (s *service) NotVerified(ctx context.Context, creditorID string) (*OwedResult, error) {
	totals, err := s.repo.UnverifiedTotals(ctx, creditorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing unverified debts")
	}
	return s.owedResult(ctx, creditorID, totals)
}

// owedResult joins grouped totals against the full operator roster so every
// counterparty appears, zero-valued when nothing matched.
func (s *service) owedResult(ctx context.Context, selfID string, totals []PairTotal) (*OwedResult, error) {
	ids, err := s.repo.OperatorIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing operators")
	}

	byOp := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		byOp[t.OperatorID] = t.Total
	}

	list := make([]OperatorAmount, 0, len(ids))
	for _, id := range ids {
		if id == selfID {
			continue
		}
		list = append(list, OperatorAmount{
			OpID:   id,
			Amount: money.Rounded1(byOp[id]),
		})
	}
	if len(list) == 0 {
		return nil, pkgerrors.NoContent("no counterparty operators registered")
	}

	return &OwedResult{
		OpID:             selfID,
		RequestTimestamp: s.now().Format(stampLayout),
		OpList:           list,
	}, nil
}

func (s *service) TotalNotSettled(ctx context.Context, debtorID string) (*TotalResult, error) {
	totals, err := s.repo.UnsettledTotals(ctx, debtorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing unsettled debts")
	}
	return s.totalResult(debtorID, totals)
}

func (s *service) TotalNotVerified(ctx context.Context, creditorID string) (*TotalResult, error) {
	totals, err := s.repo.UnverifiedTotals(ctx, creditorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing unverified debts")
	}
	return s.totalResult(creditorID, totals)
}

// totalResult reports the scalar sum. No matching rows at all means a NULL
// sum upstream, surfaced as NoContent rather than a zero.
func (s *service) totalResult(selfID string, totals []PairTotal) (*TotalResult, error) {
	if len(totals) == 0 {
		return nil, pkgerrors.NoContent("no matching debts")
	}

	amounts := make([]decimal.Decimal, 0, len(totals))
	for _, t := range totals {
		amounts = append(amounts, t.Total)
	}
	sum := money.Sum(amounts...)

	return &TotalResult{
		OpID:             selfID,
		RequestTimestamp: s.now().Format(stampLayout),
		TotalAmount:      money.Rounded1(sum),
	}, nil
}

// History reports monthly accrual totals for the pair over the trailing
// window, gap-filled from the calendar so quiet months show as zero, newest
// month first.
func (s *service) History(ctx context.Context, creditorID, debtorID string, months int) (*HistoryResult, error) {
	if months <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "history window must cover at least one month")
	}

	now := s.now()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -(months - 1), 0)
	fromMonth := start.Format(monthLayout)
	toMonth := end.Format(monthLayout)

	bins, err := s.repo.Months(ctx, fromMonth, toMonth)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading calendar months")
	}
	if len(bins) == 0 {
		return nil, pkgerrors.NoContent("no calendar months in the requested window")
	}

	rows, err := s.repo.ListByPair(ctx, debtorID, creditorID, start, end.AddDate(0, 1, 0))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing pair debts")
	}

	byMonth := map[string]decimal.Decimal{}
	for _, d := range rows {
		key := d.CreatedAt.Format(monthLayout)
		byMonth[key] = byMonth[key].Add(d.Amount)
	}

	series := make([]MonthAmount, 0, len(bins))
	for _, m := range bins {
		series = append(series, MonthAmount{
			Month:  m,
			Amount: money.Rounded1(byMonth[m]),
		})
	}

	return &HistoryResult{
		CreditorID:       creditorID,
		DebtorID:         debtorID,
		RequestTimestamp: now.Format(stampLayout),
		PeriodFrom:       fromMonth,
		PeriodTo:         toMonth,
		MonthlyDebts:     series,
	}, nil
}

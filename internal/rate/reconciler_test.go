package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"nbprates/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func midTable(day string, rates ...domain.TableRate) domain.RateTable {
	return domain.RateTable{Table: domain.TableMid, EffectiveDate: date(day), Rates: rates}
}

func bidAskTable(day string, rates ...domain.TableRate) domain.RateTable {
	return domain.RateTable{Table: domain.TableBidAsk, EffectiveDate: date(day), Rates: rates}
}

// --- MergeTables ---

func TestMergeTables_CopiesMidOntoBidAskRecord(t *testing.T) {
	mid := []domain.RateTable{midTable("2024-01-01", domain.TableRate{Code: "USD", Name: "dolar amerykański", Mid: dec("4.0")})}
	bidAsk := []domain.RateTable{bidAskTable("2024-01-01", domain.TableRate{Code: "USD", Name: "dolar amerykański", Bid: dec("3.9"), Ask: dec("4.1")})}

	merged := MergeTables(mid, bidAsk)

	require.Len(t, merged, 1)
	got := merged[0]
	require.Equal(t, "USD", got.Code)
	require.Equal(t, "dolar amerykański", got.Name)
	require.True(t, got.EffectiveDate.Equal(date("2024-01-01")))
	require.True(t, got.Mid.Decimal.Equal(decimal.RequireFromString("4.0")))
	require.True(t, got.Bid.Decimal.Equal(decimal.RequireFromString("3.9")))
	require.True(t, got.Ask.Decimal.Equal(decimal.RequireFromString("4.1")))
}

func TestMergeTables_DropsUnmatchedEntries(t *testing.T) {
	mid := []domain.RateTable{
		midTable("2024-01-01",
			domain.TableRate{Code: "USD", Mid: dec("4.0")},
			domain.TableRate{Code: "THB", Mid: dec("0.11")}, // mid-only currency
		),
		midTable("2024-01-02", domain.TableRate{Code: "USD", Mid: dec("4.02")}), // no bid/ask table that day
	}
	bidAsk := []domain.RateTable{
		bidAskTable("2024-01-01",
			domain.TableRate{Code: "USD", Bid: dec("3.9"), Ask: dec("4.1")},
			domain.TableRate{Code: "XDR", Bid: dec("5.2"), Ask: dec("5.4")}, // bid/ask-only currency
		),
		bidAskTable("2024-01-03", domain.TableRate{Code: "USD", Bid: dec("3.95"), Ask: dec("4.15")}),
	}

	merged := MergeTables(mid, bidAsk)

	require.Len(t, merged, 1)
	require.Equal(t, "USD", merged[0].Code)
	require.True(t, merged[0].EffectiveDate.Equal(date("2024-01-01")))
}

func TestMergeTables_FirstBidAskMatchWins(t *testing.T) {
	mid := []domain.RateTable{midTable("2024-01-01", domain.TableRate{Code: "EUR", Mid: dec("4.3")})}
	bidAsk := []domain.RateTable{
		bidAskTable("2024-01-01", domain.TableRate{Code: "EUR", Bid: dec("4.2"), Ask: dec("4.4")}),
		bidAskTable("2024-01-01", domain.TableRate{Code: "EUR", Bid: dec("9.9"), Ask: dec("9.9")}),
	}

	merged := MergeTables(mid, bidAsk)

	require.Len(t, merged, 1)
	require.True(t, merged[0].Bid.Decimal.Equal(decimal.RequireFromString("4.2")))
}

func TestMergeTables_IgnoresTimeOfDay(t *testing.T) {
	mid := []domain.RateTable{{EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Rates: []domain.TableRate{{Code: "CHF", Mid: dec("4.6")}}}}
	bidAsk := []domain.RateTable{{EffectiveDate: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC), Rates: []domain.TableRate{{Code: "CHF", Bid: dec("4.5"), Ask: dec("4.7")}}}}

	require.Len(t, MergeTables(mid, bidAsk), 1)
}

func TestMergeTables_Empty(t *testing.T) {
	require.Empty(t, MergeTables(nil, nil))
	require.Empty(t, MergeTables([]domain.RateTable{midTable("2024-01-01", domain.TableRate{Code: "USD", Mid: dec("4")})}, nil))
}

// --- Reconcile ---

func TestReconciler_Reconcile_InsertsNewAndUpdatesExisting(t *testing.T) {
	repo := new(MockRateRepository)
	cache := new(MockRateCache)
	rec := NewReconciler(repo, cache)

	usd := validRate("usd", date("2024-01-01"))
	eur := validRate("EUR", date("2024-01-01"))
	usdKey := domain.RateKey{Code: "USD", EffectiveDate: date("2024-01-01")}
	eurKey := domain.RateKey{Code: "EUR", EffectiveDate: date("2024-01-01")}

	repo.On("ExistingKeys", mock.Anything, []domain.RateKey{usdKey, eurKey}).
		Return(map[domain.RateKey]struct{}{eurKey: {}}, nil).Once()
	repo.On("SaveBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		inserts := args.Get(1).([]domain.Rate)
		updates := args.Get(2).([]domain.Rate)
		require.Len(t, inserts, 1)
		require.Equal(t, "USD", inserts[0].Code)
		require.NotEqual(t, uuid.Nil, inserts[0].ID)
		require.Len(t, updates, 1)
		require.Equal(t, "EUR", updates[0].Code)
		require.Equal(t, uuid.Nil, updates[0].ID)
	}).Once()
	cache.On("CleanBatch", []domain.RateKey{usdKey, eurKey}).Return().Once()

	res, err := rec.Reconcile(context.Background(), []domain.Rate{usd, eur})

	require.NoError(t, err)
	require.Equal(t, ReconcileResult{Inserted: 1, Updated: 1}, res)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestReconciler_Reconcile_InvalidCandidateAbortsBatch(t *testing.T) {
	cases := []struct {
		name    string
		broken  domain.Rate
		wantErr error
	}{
		{name: "bad code", broken: validRate("E1R", date("2024-01-01")), wantErr: ErrInvalidCode},
		{name: "zero mid", broken: func() domain.Rate { r := validRate("EUR", date("2024-01-01")); r.Mid = dec("0"); return r }(), wantErr: ErrInvalidMid},
		{name: "missing bid", broken: func() domain.Rate { r := validRate("EUR", date("2024-01-01")); r.Bid = decimal.NullDecimal{}; return r }(), wantErr: ErrInvalidAskBid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRateRepository)
			rec := NewReconciler(repo, nil)

			_, err := rec.Reconcile(context.Background(), []domain.Rate{validRate("USD", date("2024-01-01")), tc.broken})

			require.ErrorIs(t, err, tc.wantErr)
			require.ErrorIs(t, err, domain.ErrInvalidData)
			repo.AssertNotCalled(t, "ExistingKeys", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReconciler_Reconcile_SaveErrorLeavesCacheUntouched(t *testing.T) {
	repo := new(MockRateRepository)
	cache := new(MockRateCache)
	rec := NewReconciler(repo, cache)

	repo.On("ExistingKeys", mock.Anything, mock.Anything).Return(map[domain.RateKey]struct{}{}, nil).Once()
	repo.On("SaveBatch", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("tx aborted")).Once()

	_, err := rec.Reconcile(context.Background(), []domain.Rate{validRate("USD", date("2024-01-01"))})

	require.ErrorContains(t, err, "failed to save rates")
	cache.AssertNotCalled(t, "CleanBatch", mock.Anything)
}

func TestReconciler_Reconcile_ExistingKeysError(t *testing.T) {
	repo := new(MockRateRepository)
	rec := NewReconciler(repo, nil)

	repo.On("ExistingKeys", mock.Anything, mock.Anything).Return(nil, errors.New("conn reset")).Once()

	_, err := rec.Reconcile(context.Background(), []domain.Rate{validRate("USD", date("2024-01-01"))})

	require.ErrorContains(t, err, "failed to check existing rates")
	repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_Reconcile_EmptyIsNoop(t *testing.T) {
	repo := new(MockRateRepository)
	rec := NewReconciler(repo, nil)

	res, err := rec.Reconcile(context.Background(), nil)

	require.NoError(t, err)
	require.Equal(t, ReconcileResult{}, res)
	repo.AssertExpectations(t)
}

func TestReconciler_Reconcile_SameKeyTwice_LastWins(t *testing.T) {
	repo := new(MockRateRepository)
	rec := NewReconciler(repo, nil)

	first := validRate("usd", date("2024-01-01"))
	second := validRate("USD", date("2024-01-01"))
	second.Mid = dec("4.2")
	eur := validRate("EUR", date("2024-01-01"))
	usdKey := domain.RateKey{Code: "USD", EffectiveDate: date("2024-01-01")}
	eurKey := domain.RateKey{Code: "EUR", EffectiveDate: date("2024-01-01")}

	repo.On("ExistingKeys", mock.Anything, []domain.RateKey{usdKey, eurKey}).
		Return(map[domain.RateKey]struct{}{usdKey: {}}, nil).Once()
	repo.On("SaveBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		inserts := args.Get(1).([]domain.Rate)
		updates := args.Get(2).([]domain.Rate)
		require.Len(t, inserts, 1)
		require.Equal(t, "EUR", inserts[0].Code)
		require.Len(t, updates, 1)
		require.Equal(t, "USD", updates[0].Code)
		require.True(t, updates[0].Mid.Decimal.Equal(decimal.RequireFromString("4.2")))
	}).Once()

	res, err := rec.Reconcile(context.Background(), []domain.Rate{first, eur, second})

	require.NoError(t, err)
	require.Equal(t, ReconcileResult{Inserted: 1, Updated: 1}, res)
	repo.AssertExpectations(t)
}

func TestReconciler_Reconcile_SameNewKeyTwice_InsertedOnce(t *testing.T) {
	repo := new(MockRateRepository)
	rec := NewReconciler(repo, nil)

	repo.On("ExistingKeys", mock.Anything, mock.Anything).Return(map[domain.RateKey]struct{}{}, nil).Once()
	repo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(in []domain.Rate) bool { return len(in) == 1 }), []domain.Rate(nil)).
		Return(nil).Once()

	res, err := rec.Reconcile(context.Background(), []domain.Rate{
		validRate("chf", date("2024-01-01")),
		validRate("CHF", date("2024-01-01")),
	})

	require.NoError(t, err)
	require.Equal(t, ReconcileResult{Inserted: 1}, res)
	repo.AssertExpectations(t)
}

package adapters

import (
	"context"
	"time"

	"nbprates/internal/domain"
)

// RateFeed fetches published rate tables from the external provider.
type RateFeed interface {
	FetchTables(ctx context.Context, table string, from, to time.Time) ([]domain.RateTable, error)
}

type RateRepository interface {
	Get(ctx context.Context, code string, date time.Time) (domain.Rate, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.Rate, error)
	// ListRange returns rates of one currency with from <= date <= to, ordered by date ascending.
	ListRange(ctx context.Context, code string, from, to time.Time) ([]domain.Rate, error)
	DistinctCodes(ctx context.Context) ([]string, error)
	ExistingKeys(ctx context.Context, keys []domain.RateKey) (map[domain.RateKey]struct{}, error)
	Insert(ctx context.Context, rate domain.Rate) error
	Update(ctx context.Context, rate domain.Rate) (domain.Rate, error)
	// SaveBatch inserts and updates rates in a single transaction.
	SaveBatch(ctx context.Context, inserts []domain.Rate, updates []domain.Rate) error
	Delete(ctx context.Context, code string, date time.Time) error
}

type RateCache interface {
	Get(key domain.RateKey) (domain.Rate, bool)
	Set(rate domain.Rate)
	CleanBatch(keys []domain.RateKey)
}

package rate

import (
	"context"
	"fmt"
	"time"

	"nbprates/internal/adapters"
	"nbprates/internal/domain"
	"nbprates/internal/metrics"

	"github.com/sirupsen/logrus"
)

const defaultWindowDays = 14

// Refresher runs one fetch-merge-reconcile cycle over a trailing window of days.
type Refresher struct {
	feed       adapters.RateFeed
	reconciler *Reconciler
	metrics    *metrics.RefreshMetrics
	windowDays int
	now        func() time.Time
}

func (r *Refresher) Refresh(ctx context.Context) (ReconcileResult, error) {
	start := time.Now()
	res, err := r.refresh(ctx)
	if r.metrics != nil {
		r.metrics.ObserveCycle(time.Since(start), res.Inserted, res.Updated, err)
	}
	return res, err
}

func (r *Refresher) refresh(ctx context.Context) (ReconcileResult, error) {
	to := r.now()
	from := to.AddDate(0, 0, -r.windowDays)

	midTables, err := r.feed.FetchTables(ctx, domain.TableMid, from, to)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to fetch table %s: %w", domain.TableMid, err)
	}
	bidAskTables, err := r.feed.FetchTables(ctx, domain.TableBidAsk, from, to)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to fetch table %s: %w", domain.TableBidAsk, err)
	}

	merged := MergeTables(midTables, bidAskTables)
	if len(merged) == 0 {
		logrus.Infof("Nothing to reconcile for %s..%s", from.Format(time.DateOnly), to.Format(time.DateOnly))
		return ReconcileResult{}, nil
	}

	res, err := r.reconciler.Reconcile(ctx, merged)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to reconcile %d merged rates: %w", len(merged), err)
	}
	return res, nil
}

func NewRefresher(feed adapters.RateFeed, reconciler *Reconciler, m *metrics.RefreshMetrics, windowDays int, now func() time.Time) *Refresher {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	if now == nil {
		now = time.Now
	}
	return &Refresher{feed: feed, reconciler: reconciler, metrics: m, windowDays: windowDays, now: now}
}

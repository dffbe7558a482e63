package rate

import (
	"context"
	"fmt"
	"strings"

	"nbprates/internal/adapters"
	"nbprates/internal/domain"

	"github.com/google/uuid"
)

type ReconcileResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// MergeTables joins the mid-rate tables with the bid/ask tables on code and effective date.
// Entries present in only one of them are dropped. Output follows the order of the mid tables.
func MergeTables(midTables, bidAskTables []domain.RateTable) []domain.Rate {
	midRates := flatten(midTables)
	bidAskRates := flatten(bidAskTables)

	// first entry wins, a code/date pair is not expected twice in one source
	byKey := make(map[domain.RateKey]domain.Rate, len(bidAskRates))
	for _, r := range bidAskRates {
		if _, ok := byKey[r.Key()]; !ok {
			byKey[r.Key()] = r
		}
	}

	merged := make([]domain.Rate, 0, len(midRates))
	for _, mr := range midRates {
		r, ok := byKey[mr.Key()]
		if !ok {
			continue
		}
		r.Mid = mr.Mid
		merged = append(merged, r)
	}
	return merged
}

func flatten(tables []domain.RateTable) []domain.Rate {
	var rates []domain.Rate
	for _, table := range tables {
		for _, tr := range table.Rates {
			rates = append(rates, domain.Rate{
				Code:          tr.Code,
				Name:          tr.Name,
				Mid:           tr.Mid,
				Bid:           tr.Bid,
				Ask:           tr.Ask,
				EffectiveDate: domain.DateOf(table.EffectiveDate),
			})
		}
	}
	return rates
}

// Reconciler applies candidate rates to the store: unknown keys are inserted, known keys updated.
type Reconciler struct {
	repo  adapters.RateRepository
	cache adapters.RateCache
}

// Reconcile validates the whole batch before touching the store; one invalid rate aborts it.
func (r *Reconciler) Reconcile(ctx context.Context, candidates []domain.Rate) (ReconcileResult, error) {
	if len(candidates) == 0 {
		return ReconcileResult{}, nil
	}

	normalized, err := normalizeBatch(candidates)
	if err != nil {
		return ReconcileResult{}, err
	}
	normalized = dedupeByKey(normalized)

	keys := make([]domain.RateKey, 0, len(normalized))
	for _, c := range normalized {
		keys = append(keys, c.Key())
	}
	existing, err := r.repo.ExistingKeys(ctx, keys)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to check existing rates: %w", err)
	}

	var inserts, updates []domain.Rate
	for _, c := range normalized {
		if _, ok := existing[c.Key()]; ok {
			updates = append(updates, c)
			continue
		}
		c.ID = uuid.New()
		inserts = append(inserts, c)
	}

	if err = r.repo.SaveBatch(ctx, inserts, updates); err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to save rates: %w", err)
	}
	r.evict(keys)

	return ReconcileResult{Inserted: len(inserts), Updated: len(updates)}, nil
}

func (r *Reconciler) evict(keys []domain.RateKey) {
	if r.cache != nil {
		r.cache.CleanBatch(keys)
	}
}

func normalizeBatch(rates []domain.Rate) ([]domain.Rate, error) {
	normalized := make([]domain.Rate, 0, len(rates))
	for _, rt := range rates {
		if err := ValidateRate(rt); err != nil {
			return nil, err
		}
		normalized = append(normalized, normalize(rt))
	}
	return normalized, nil
}

// dedupeByKey keeps one rate per key: the last one given, at the position of the first.
func dedupeByKey(rates []domain.Rate) []domain.Rate {
	seen := make(map[domain.RateKey]int, len(rates))
	out := rates[:0:0]
	for _, r := range rates {
		if i, ok := seen[r.Key()]; ok {
			out[i] = r
			continue
		}
		seen[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}

func normalize(r domain.Rate) domain.Rate {
	r.Code = strings.ToUpper(r.Code)
	r.EffectiveDate = domain.DateOf(r.EffectiveDate)
	return r
}

func NewReconciler(repo adapters.RateRepository, cache adapters.RateCache) *Reconciler {
	return &Reconciler{repo: repo, cache: cache}
}

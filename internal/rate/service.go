package rate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"nbprates/internal/adapters"
	"nbprates/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChartWindowDays is the number of days before today covered by ChartData.
const ChartWindowDays = 14

const chartLabelLayout = "2 Jan"

var errEmptyBatch = fmt.Errorf("%w: the list of rates cannot be empty", domain.ErrInvalidData)

type Service struct {
	repo       adapters.RateRepository
	cache      adapters.RateCache
	reconciler *Reconciler
	now        func() time.Time
}

func (s *Service) GetRate(ctx context.Context, code string, date time.Time) (domain.Rate, error) {
	if err := ValidateCode(code); err != nil {
		return domain.Rate{}, err
	}
	key := domain.RateKey{Code: strings.ToUpper(code), EffectiveDate: domain.DateOf(date)}

	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			return r, nil
		}
	}

	r, err := s.repo.Get(ctx, key.Code, key.EffectiveDate)
	if err != nil {
		return domain.Rate{}, err
	}
	if s.cache != nil {
		// a write evicting this key between Get and Set leaves the old value cached until the TTL expires
		s.cache.Set(r)
	}
	return r, nil
}

func (s *Service) GetRates(ctx context.Context, date time.Time) ([]domain.Rate, error) {
	return s.repo.ListByDate(ctx, domain.DateOf(date))
}

func (s *Service) GetAvailableCodes(ctx context.Context) ([]string, error) {
	codes, err := s.repo.DistinctCodes(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(codes)
	return slices.Compact(codes), nil
}

// GetExchangeRates lists today's rates.
func (s *Service) GetExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.repo.ListByDate(ctx, s.today())
	if err != nil {
		return nil, err
	}

	views := make([]domain.ExchangeRate, 0, len(rates))
	for _, r := range rates {
		views = append(views, domain.ExchangeRate{
			Code: r.Code,
			Name: r.Name,
			Mid:  r.Mid.Decimal,
			Bid:  r.Bid.Decimal,
			Ask:  r.Ask.Decimal,
		})
	}
	return views, nil
}

// ConvertRate multiplies amount by targetMid/sourceMid using today's rates.
func (s *Service) ConvertRate(ctx context.Context, source, target string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateCode(source); err != nil {
		return decimal.Zero, err
	}
	if err := ValidateCode(target); err != nil {
		return decimal.Zero, err
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	today := s.today()
	sourceRate, err := s.GetRate(ctx, source, today)
	if err != nil {
		return decimal.Zero, err
	}
	targetRate, err := s.GetRate(ctx, target, today)
	if err != nil {
		return decimal.Zero, err
	}

	if err = ValidateMid(sourceRate.Code, sourceRate.Mid); err != nil {
		return decimal.Zero, err
	}
	if err = ValidateMid(targetRate.Code, targetRate.Mid); err != nil {
		return decimal.Zero, err
	}

	ratio := targetRate.Mid.Decimal.Div(sourceRate.Mid.Decimal)
	return amount.Mul(ratio), nil
}

func (s *Service) ChartData(ctx context.Context, code string) (domain.ChartSeries, error) {
	if err := ValidateCode(code); err != nil {
		return domain.ChartSeries{}, err
	}
	code = strings.ToUpper(code)

	to := s.today()
	from := to.AddDate(0, 0, -ChartWindowDays)
	rates, err := s.repo.ListRange(ctx, code, from, to)
	if err != nil {
		return domain.ChartSeries{}, err
	}

	points := make([]domain.ChartPoint, 0, len(rates))
	for _, r := range rates {
		points = append(points, domain.ChartPoint{
			Label: r.EffectiveDate.Format(chartLabelLayout),
			Mid:   r.Mid.Decimal,
		})
	}
	return domain.ChartSeries{Code: code, Points: points}, nil
}

func (s *Service) AddRate(ctx context.Context, r domain.Rate) (domain.Rate, error) {
	if err := ValidateCode(r.Code); err != nil {
		return domain.Rate{}, err
	}
	r = normalize(r)

	exists, err := s.exists(ctx, r.Key())
	if err != nil {
		return domain.Rate{}, err
	}
	if exists {
		return domain.Rate{}, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, r.Key())
	}

	if err = ValidateRate(r); err != nil {
		return domain.Rate{}, err
	}

	r.ID = uuid.New()
	if err = s.repo.Insert(ctx, r); err != nil {
		return domain.Rate{}, err
	}
	return r, nil
}

// AddRates inserts all rates or none of them.
func (s *Service) AddRates(ctx context.Context, rates []domain.Rate) ([]domain.Rate, error) {
	if len(rates) == 0 {
		return nil, errEmptyBatch
	}

	toAdd, err := normalizeBatch(rates)
	if err != nil {
		return nil, err
	}

	keys := make([]domain.RateKey, 0, len(toAdd))
	for i := range toAdd {
		toAdd[i].ID = uuid.New()
		keys = append(keys, toAdd[i].Key())
	}

	existing, err := s.repo.ExistingKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if _, ok := existing[k]; ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, k)
		}
	}

	if err = s.repo.SaveBatch(ctx, toAdd, nil); err != nil {
		return nil, err
	}
	return toAdd, nil
}

func (s *Service) UpdateRate(ctx context.Context, r domain.Rate) (domain.Rate, error) {
	if err := ValidateCode(r.Code); err != nil {
		return domain.Rate{}, err
	}
	r = normalize(r)

	exists, err := s.exists(ctx, r.Key())
	if err != nil {
		return domain.Rate{}, err
	}
	if !exists {
		return domain.Rate{}, fmt.Errorf("%w: %s", domain.ErrNotFound, r.Key())
	}

	if err = ValidateRate(r); err != nil {
		return domain.Rate{}, err
	}

	updated, err := s.repo.Update(ctx, r)
	if err != nil {
		return domain.Rate{}, err
	}
	s.evict(r.Key())
	return updated, nil
}

// UpdateRates upserts the batch: rates with an unknown key are inserted, the rest updated.
func (s *Service) UpdateRates(ctx context.Context, rates []domain.Rate) (ReconcileResult, error) {
	if len(rates) == 0 {
		return ReconcileResult{}, errEmptyBatch
	}
	return s.reconciler.Reconcile(ctx, rates)
}

func (s *Service) DeleteRate(ctx context.Context, code string, date time.Time) error {
	if err := ValidateCode(code); err != nil {
		return err
	}
	key := domain.RateKey{Code: strings.ToUpper(code), EffectiveDate: domain.DateOf(date)}

	if err := s.repo.Delete(ctx, key.Code, key.EffectiveDate); err != nil {
		return err
	}
	s.evict(key)
	return nil
}

func (s *Service) exists(ctx context.Context, key domain.RateKey) (bool, error) {
	_, err := s.repo.Get(ctx, key.Code, key.EffectiveDate)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) evict(key domain.RateKey) {
	if s.cache != nil {
		s.cache.CleanBatch([]domain.RateKey{key})
	}
}

func (s *Service) today() time.Time {
	return domain.DateOf(s.now())
}

func NewService(repo adapters.RateRepository, cache adapters.RateCache, reconciler *Reconciler, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, cache: cache, reconciler: reconciler, now: now}
}

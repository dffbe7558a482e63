package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nbprates/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

const rateColumns = `id, code, name, mid, bid, ask, effective_date`

type RateRepository struct {
	pool *pgxpool.Pool
}

func (r *RateRepository) Get(ctx context.Context, code string, date time.Time) (domain.Rate, error) {
	const q = `select ` + rateColumns + ` from currencies where code = $1 and effective_date = $2;`

	rate, err := scanRate(r.pool.QueryRow(ctx, q, code, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rate{}, fmt.Errorf("%w: %s@%s", domain.ErrNotFound, code, date.Format(time.DateOnly))
		}
		return domain.Rate{}, fmt.Errorf("failed to select rate %q for %s: %w", code, date.Format(time.DateOnly), err)
	}
	return rate, nil
}

func (r *RateRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.Rate, error) {
	const q = `select ` + rateColumns + ` from currencies where effective_date = $1 order by code;`

	rows, err := r.pool.Query(ctx, q, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for %s: %w", date.Format(time.DateOnly), err)
	}
	return collectRates(rows)
}

func (r *RateRepository) ListRange(ctx context.Context, code string, from, to time.Time) ([]domain.Rate, error) {
	const q = `
		select ` + rateColumns + ` from currencies
		where code = $1 and effective_date between $2 and $3
		order by effective_date;
	`

	rows, err := r.pool.Query(ctx, q, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate history for %q: %w", code, err)
	}
	return collectRates(rows)
}

func (r *RateRepository) DistinctCodes(ctx context.Context) ([]string, error) {
	const q = `select distinct code from currencies order by code;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency codes: %w", err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan currency codes: %w", err)
	}
	return codes, nil
}

type keyRow struct {
	Code          string `json:"code"`
	EffectiveDate string `json:"effective_date"`
}

func (r *RateRepository) ExistingKeys(ctx context.Context, keys []domain.RateKey) (map[domain.RateKey]struct{}, error) {
	existing := make(map[domain.RateKey]struct{})
	if len(keys) == 0 {
		return existing, nil
	}

	payload := make([]keyRow, 0, len(keys))
	for _, k := range keys {
		payload = append(payload, keyRow{Code: k.Code, EffectiveDate: k.EffectiveDate.Format(time.DateOnly)})
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rate keys: %w", err)
	}

	const q = `
		with input_rows as (
		  select * from json_to_recordset($1::json) as r(code text, effective_date date)
		)
		select c.code, c.effective_date
		from currencies c join input_rows ir on c.code = ir.code and c.effective_date = ir.effective_date;
	`

	rows, err := r.pool.Query(ctx, q, json.RawMessage(payloadJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to query existing rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k domain.RateKey
		if err = rows.Scan(&k.Code, &k.EffectiveDate); err != nil {
			return nil, fmt.Errorf("failed to scan rate key: %w", err)
		}
		k.EffectiveDate = domain.DateOf(k.EffectiveDate)
		existing[k] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing rates: %w", err)
	}
	return existing, nil
}

func (r *RateRepository) Insert(ctx context.Context, rate domain.Rate) error {
	const q = `insert into currencies (` + rateColumns + `) values ($1, $2, $3, $4, $5, $6, $7);`

	_, err := r.pool.Exec(ctx, q, rate.ID, rate.Code, rate.Name, rate.Mid, rate.Bid, rate.Ask, rate.EffectiveDate)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, rate.Key())
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: rate %s must be positive", domain.ErrInvalidData, rate.Key())
		}
		return fmt.Errorf("failed to insert rate %s: %w", rate.Key(), err)
	}
	return nil
}

func (r *RateRepository) Update(ctx context.Context, rate domain.Rate) (domain.Rate, error) {
	const q = `
		update currencies set name = $3, mid = $4, bid = $5, ask = $6
		where code = $1 and effective_date = $2
		returning ` + rateColumns + `;
	`

	updated, err := scanRate(r.pool.QueryRow(ctx, q, rate.Code, rate.EffectiveDate, rate.Name, rate.Mid, rate.Bid, rate.Ask))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rate{}, fmt.Errorf("%w: %s", domain.ErrNotFound, rate.Key())
		}
		if isCheckViolation(err) {
			return domain.Rate{}, fmt.Errorf("%w: rate %s must be positive", domain.ErrInvalidData, rate.Key())
		}
		return domain.Rate{}, fmt.Errorf("failed to update rate %s: %w", rate.Key(), err)
	}
	return updated, nil
}

type batchRow struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Mid           string    `json:"mid"`
	Bid           string    `json:"bid"`
	Ask           string    `json:"ask"`
	EffectiveDate string    `json:"effective_date"`
}

func toBatchRows(rates []domain.Rate) []batchRow {
	rows := make([]batchRow, 0, len(rates))
	for _, rt := range rates {
		rows = append(rows, batchRow{
			ID:            rt.ID,
			Code:          rt.Code,
			Name:          rt.Name,
			Mid:           rt.Mid.Decimal.String(),
			Bid:           rt.Bid.Decimal.String(),
			Ask:           rt.Ask.Decimal.String(),
			EffectiveDate: rt.EffectiveDate.Format(time.DateOnly),
		})
	}
	return rows
}

// SaveBatch writes inserts and updates in one transaction; on any error nothing is written.
func (r *RateRepository) SaveBatch(ctx context.Context, inserts []domain.Rate, updates []domain.Rate) error {
	if len(inserts) == 0 && len(updates) == 0 {
		return nil
	}

	const insertQ = `
		insert into currencies (` + rateColumns + `)
		select id, code, name, mid, bid, ask, effective_date
		from json_to_recordset($1::json) as r(id uuid, code text, name text, mid numeric, bid numeric, ask numeric, effective_date date);
	`
	const updateQ = `
		with input_rows as (
		  select * from json_to_recordset($1::json)
		    as r(code text, name text, mid numeric, bid numeric, ask numeric, effective_date date)
		)
		update currencies c
		set name = ir.name, mid = ir.mid, bid = ir.bid, ask = ir.ask
		from input_rows ir
		where c.code = ir.code and c.effective_date = ir.effective_date;
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if len(inserts) > 0 {
		payloadJSON, marshalErr := json.Marshal(toBatchRows(inserts))
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal inserted rates: %w", marshalErr)
		}
		if _, err = tx.Exec(ctx, insertQ, json.RawMessage(payloadJSON)); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
			}
			if isCheckViolation(err) {
				return fmt.Errorf("%w: %w", domain.ErrInvalidData, err)
			}
			return fmt.Errorf("failed to insert %d rates: %w", len(inserts), err)
		}
	}

	if len(updates) > 0 {
		payloadJSON, marshalErr := json.Marshal(toBatchRows(updates))
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal updated rates: %w", marshalErr)
		}
		if _, err = tx.Exec(ctx, updateQ, json.RawMessage(payloadJSON)); err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("%w: %w", domain.ErrInvalidData, err)
			}
			return fmt.Errorf("failed to update %d rates: %w", len(updates), err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *RateRepository) Delete(ctx context.Context, code string, date time.Time) error {
	const q = `delete from currencies where code = $1 and effective_date = $2;`

	tag, err := r.pool.Exec(ctx, q, code, date)
	if err != nil {
		return fmt.Errorf("failed to delete rate %q for %s: %w", code, date.Format(time.DateOnly), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s@%s", domain.ErrNotFound, code, date.Format(time.DateOnly))
	}
	return nil
}

func scanRate(row pgx.Row) (domain.Rate, error) {
	var rate domain.Rate
	if err := row.Scan(
		&rate.ID,
		&rate.Code,
		&rate.Name,
		&rate.Mid,
		&rate.Bid,
		&rate.Ask,
		&rate.EffectiveDate,
	); err != nil {
		return domain.Rate{}, err
	}
	rate.EffectiveDate = domain.DateOf(rate.EffectiveDate)
	return rate, nil
}

func collectRates(rows pgx.Rows) ([]domain.Rate, error) {
	defer rows.Close()

	rates := make([]domain.Rate, 0, 64)
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rates: %w", err)
	}
	return rates, nil
}

func isUniqueViolation(err error) bool {
	return hasPgCode(err, uniqueViolation)
}

func isCheckViolation(err error) bool {
	return hasPgCode(err, checkViolation)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rate is a single currency quote against the base currency for one calendar day.
type Rate struct {
	ID            uuid.UUID
	Code          string
	Name          string
	Mid           decimal.NullDecimal
	Bid           decimal.NullDecimal
	Ask           decimal.NullDecimal
	EffectiveDate time.Time
}

func (r Rate) Key() RateKey {
	return RateKey{Code: r.Code, EffectiveDate: DateOf(r.EffectiveDate)}
}

// RateKey is the uniqueness key of a stored rate.
type RateKey struct {
	Code          string
	EffectiveDate time.Time
}

func (k RateKey) String() string {
	return k.Code + "@" + k.EffectiveDate.Format(time.DateOnly)
}

// DateOf drops the time-of-day part, keeping the calendar date t has in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExchangeRate is the read-only projection used by the current rates listing.
type ExchangeRate struct {
	Code string
	Name string
	Mid  decimal.Decimal
	Bid  decimal.Decimal
	Ask  decimal.Decimal
}

type ChartPoint struct {
	Label string
	Mid   decimal.Decimal
}

type ChartSeries struct {
	Code   string
	Points []ChartPoint
}

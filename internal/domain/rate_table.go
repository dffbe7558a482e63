package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableMid    = "A"
	TableBidAsk = "C"
)

// RateTable is one published table snapshot of the external provider.
type RateTable struct {
	Table         string
	No            string
	EffectiveDate time.Time
	Rates         []TableRate
}

type TableRate struct {
	Code string
	Name string
	Mid  decimal.NullDecimal
	Bid  decimal.NullDecimal
	Ask  decimal.NullDecimal
}

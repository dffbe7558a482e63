package rate

import (
	"fmt"
	"regexp"

	"nbprates/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCode   = fmt.Errorf("%w: invalid currency code", domain.ErrInvalidData)
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", domain.ErrInvalidData)
	ErrInvalidMid    = fmt.Errorf("%w: null or zero mid value", domain.ErrInvalidData)
	ErrInvalidAskBid = fmt.Errorf("%w: incorrect ask/bid value", domain.ErrInvalidData)
)

var codePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w %q", ErrInvalidCode, code)
	}
	return nil
}

func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w %s", ErrInvalidAmount, amount)
	}
	return nil
}

func ValidateMid(code string, mid decimal.NullDecimal) error {
	if !isPositive(mid) {
		return fmt.Errorf("%w for currency %q", ErrInvalidMid, code)
	}
	return nil
}

func ValidateAskBid(code string, ask, bid decimal.NullDecimal) error {
	if !isPositive(ask) || !isPositive(bid) {
		return fmt.Errorf("%w for currency %q", ErrInvalidAskBid, code)
	}
	return nil
}

// ValidateRate checks everything a rate must satisfy before it is written.
func ValidateRate(r domain.Rate) error {
	if err := ValidateCode(r.Code); err != nil {
		return err
	}
	if err := ValidateMid(r.Code, r.Mid); err != nil {
		return err
	}
	return ValidateAskBid(r.Code, r.Ask, r.Bid)
}

// absent and zero are the same thing here
func isPositive(v decimal.NullDecimal) bool {
	return v.Valid && v.Decimal.IsPositive()
}

package domain

import (
	"github.com/shopspring/decimal"
)

// CostRecord is the per-artist row from the cost ledger: a running
// deductible balance offset against revenue before the share rate applies.
// Exactly one record must exist per artist; absence is an error, never a
// zero-default.
type CostRecord struct {
	Artist           string          `json:"artist"`
	PreviousBalance  decimal.Decimal `json:"previous_balance"`
	CurrentDeduction decimal.Decimal `json:"current_deduction"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	ShareRate        decimal.Decimal `json:"share_rate"`
}

// Validate checks the share rate is a 0-1 fraction.
func (c CostRecord) Validate() error {
	if c.ShareRate.IsNegative() || c.ShareRate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidShareRate
	}

	return nil
}

// FindCostRecord locates the single cost record for an artist.
func FindCostRecord(records []CostRecord, artist string) (CostRecord, error) {
	var (
		found CostRecord
		count int
	)

	for _, r := range records {
		if r.Artist == artist {
			found = r
			count++
		}
	}

	switch count {
	case 0:
		return CostRecord{}, ErrMissingCostRecord
	case 1:
		return found, nil
	default:
		return CostRecord{}, ErrAmbiguousCostRecord
	}
}

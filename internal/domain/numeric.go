package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces a raw ledger cell into a finite decimal. Source
// spreadsheets mix plain numbers, strings with thousands separators, blanks
// and nulls; anything that cannot be read as a number resolves to zero so
// that binding never fails mid-table. Silently zeroed rows surface later as
// reconciliation mismatches rather than aborting the batch.
func ParseAmount(value any) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// ParseRate reads a share rate cell. Rates follow the same lossy-but-safe
// policy as amounts; range checking happens in the cost record itself.
func ParseRate(value any) decimal.Decimal {
	return ParseAmount(value)
}

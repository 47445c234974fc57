package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/artistpay/settler/internal/domain"
)

// MetricRevenue is the metric every batch reconciles.
const MetricRevenue = "revenue"

// ReconcileInput carries everything needed to cross-check a finished batch
// against the source ledger's own summary figures.
type ReconcileInput struct {
	Settlements []*domain.ArtistSettlement

	// Declared totals from the ledger summary row, if one was present.
	Declared []domain.DeclaredMetric

	// Recomputed totals for metrics the settlements cannot re-derive
	// (e.g. views), summed over detail rows by the caller.
	ExtraRecomputed map[string]decimal.Decimal

	// PerArtistDeclared holds per-artist declared revenue, when the
	// source carries one figure per artist.
	PerArtistDeclared map[string]decimal.Decimal

	Tolerance decimal.Decimal
}

// BuildReconciliationReport independently re-derives totals and compares
// them to any declared totals. Mismatches are reported data, never errors:
// the batch still completes and hands the discrepancy to an operator.
func BuildReconciliationReport(input ReconcileInput) *domain.ReconciliationReport {
	recomputedRevenue := decimal.Zero
	for _, s := range input.Settlements {
		recomputedRevenue = recomputedRevenue.Add(s.TotalRevenue)
	}

	report := &domain.ReconciliationReport{
		TotalArtists: len(input.Settlements),
		Matches:      true,
		Tolerance:    input.Tolerance,
	}

	declaredByName := make(map[string]decimal.Decimal, len(input.Declared))
	for _, d := range input.Declared {
		declaredByName[d.Name] = d.Total
	}

	appendCheck := func(name string, recomputed decimal.Decimal) {
		check := domain.MetricCheck{
			Name:       name,
			Recomputed: recomputed,
			Matches:    true,
		}

		if declared, ok := declaredByName[name]; ok {
			check.Declared = declared
			check.Delta = declared.Sub(recomputed)
			// Zero tolerance means strict equality.
			check.Matches = check.Delta.IsZero() || check.Delta.Abs().LessThan(input.Tolerance)
		}

		if !check.Matches {
			report.Matches = false
		}

		report.Checks = append(report.Checks, check)
	}

	appendCheck(MetricRevenue, recomputedRevenue)

	for _, d := range input.Declared {
		if d.Name == MetricRevenue {
			continue
		}
		appendCheck(d.Name, input.ExtraRecomputed[d.Name])
	}

	if len(input.PerArtistDeclared) > 0 {
		report.PerArtistDelta = make(map[string]decimal.Decimal)

		for _, s := range input.Settlements {
			declared, ok := input.PerArtistDeclared[s.Artist]
			if !ok {
				continue
			}

			delta := declared.Sub(s.TotalRevenue)
			if !delta.IsZero() && delta.Abs().GreaterThanOrEqual(input.Tolerance) {
				report.PerArtistDelta[s.Artist] = delta
				report.Matches = false
			}
		}
	}

	return report
}

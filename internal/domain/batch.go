package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArtistStatus is the per-artist processing state. Terminal states are
// final; there are no retries, since failures here are data-quality issues
// requiring human correction.
type ArtistStatus string

const (
	StatusPending    ArtistStatus = "pending"
	StatusProcessing ArtistStatus = "processing"
	StatusSucceeded  ArtistStatus = "succeeded"
	StatusFailed     ArtistStatus = "failed"
)

// ArtistFailure records one artist the batch could not settle, with a
// human-readable reason retained for later reporting.
type ArtistFailure struct {
	Artist string `json:"artist"`
	Reason string `json:"reason"`
}

// BatchRunResult is the outcome ledger of one batch. Succeeded and failed
// are disjoint; together with NotAttempted they cover the full artist set
// extracted from the revenue ledger.
type BatchRunResult struct {
	Succeeded    []*ArtistSettlement `json:"succeeded"`
	Failed       []ArtistFailure     `json:"failed"`
	NotAttempted []string            `json:"not_attempted,omitempty"`
	TotalArtists int                 `json:"total_artists"`
}

// SucceededArtists returns the artists settled, in batch order.
func (r *BatchRunResult) SucceededArtists() []string {
	artists := make([]string, 0, len(r.Succeeded))
	for _, s := range r.Succeeded {
		artists = append(artists, s.Artist)
	}

	return artists
}

// Covered reports whether every artist in the input set ended up succeeded,
// failed, or explicitly not attempted. No artist may be skipped silently.
func (r *BatchRunResult) Covered() bool {
	return len(r.Succeeded)+len(r.Failed)+len(r.NotAttempted) == r.TotalArtists
}

// MetricCheck is one declared-vs-recomputed comparison in a reconciliation
// report. Mismatches are reported data, not errors.
type MetricCheck struct {
	Name       string          `json:"name"`
	Declared   decimal.Decimal `json:"declared"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Delta      decimal.Decimal `json:"delta"`
	Matches    bool            `json:"matches"`
}

// ReconciliationReport cross-checks independently recomputed totals against
// the source ledger's own summary figures.
type ReconciliationReport struct {
	TotalArtists   int                        `json:"total_artists"`
	Checks         []MetricCheck              `json:"checks"`
	Matches        bool                       `json:"matches"`
	PerArtistDelta map[string]decimal.Decimal `json:"per_artist_delta,omitempty"`
	Tolerance      decimal.Decimal            `json:"tolerance"`
}

// BatchRun is a persisted batch execution: the result ledger plus its
// reconciliation report.
type BatchRun struct {
	ID             string                `json:"id"`
	Result         *BatchRunResult       `json:"result"`
	Reconciliation *ReconciliationReport `json:"reconciliation,omitempty"`
	StartedAt      time.Time             `json:"started_at"`
	FinishedAt     time.Time             `json:"finished_at"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/artistpay/settler/internal/domain"
)

// RunResponse represents a batch run in API responses. Per-artist detail is
// summarized; the settlement endpoint serves the full statement.
type RunResponse struct {
	ID             string                  `json:"id"`
	TotalArtists   int                     `json:"total_artists"`
	Succeeded      []SettlementSummary     `json:"succeeded"`
	Failed         []FailureResponse       `json:"failed"`
	NotAttempted   []string                `json:"not_attempted,omitempty"`
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
	StartedAt      time.Time               `json:"started_at"`
	FinishedAt     time.Time               `json:"finished_at"`
}

// SettlementSummary is the one-line view of a settled artist.
type SettlementSummary struct {
	Artist        string          `json:"artist"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	PayableAmount decimal.Decimal `json:"payable_amount"`
}

// FailureResponse represents a per-artist failure in API responses.
type FailureResponse struct {
	Artist string `json:"artist"`
	Reason string `json:"reason"`
}

// MetricCheckResponse is one declared-vs-recomputed comparison.
type MetricCheckResponse struct {
	Name       string          `json:"name"`
	Declared   decimal.Decimal `json:"declared"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Delta      decimal.Decimal `json:"delta"`
	Matches    bool            `json:"matches"`
}

// ReconciliationResponse represents a reconciliation report.
type ReconciliationResponse struct {
	TotalArtists   int                        `json:"total_artists"`
	Checks         []MetricCheckResponse      `json:"checks"`
	Matches        bool                       `json:"matches"`
	PerArtistDelta map[string]decimal.Decimal `json:"per_artist_delta,omitempty"`
	Tolerance      decimal.Decimal            `json:"tolerance"`
}

// RunFromDomain converts a domain batch run to a response.
func RunFromDomain(run *domain.BatchRun) *RunResponse {
	resp := &RunResponse{
		ID:           run.ID,
		TotalArtists: run.Result.TotalArtists,
		Succeeded:    make([]SettlementSummary, len(run.Result.Succeeded)),
		Failed:       make([]FailureResponse, len(run.Result.Failed)),
		NotAttempted: run.Result.NotAttempted,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}

	for i, s := range run.Result.Succeeded {
		resp.Succeeded[i] = SettlementSummary{
			Artist:        s.Artist,
			TotalRevenue:  s.TotalRevenue,
			PayableAmount: s.Distribution.PayableAmount,
		}
	}

	for i, f := range run.Result.Failed {
		resp.Failed[i] = FailureResponse{Artist: f.Artist, Reason: f.Reason}
	}

	if run.Reconciliation != nil {
		resp.Reconciliation = ReconciliationFromDomain(run.Reconciliation)
	}

	return resp
}

// ReconciliationFromDomain converts a domain reconciliation report.
func ReconciliationFromDomain(report *domain.ReconciliationReport) *ReconciliationResponse {
	checks := make([]MetricCheckResponse, len(report.Checks))
	for i, c := range report.Checks {
		checks[i] = MetricCheckResponse{
			Name:       c.Name,
			Declared:   c.Declared,
			Recomputed: c.Recomputed,
			Delta:      c.Delta,
			Matches:    c.Matches,
		}
	}

	return &ReconciliationResponse{
		TotalArtists:   report.TotalArtists,
		Checks:         checks,
		Matches:        report.Matches,
		PerArtistDelta: report.PerArtistDelta,
		Tolerance:      report.Tolerance,
	}
}

// ServiceRowResponse is one aggregated statement row.
type ServiceRowResponse struct {
	Album         string          `json:"album"`
	MajorCategory string          `json:"major_category"`
	MinorCategory string          `json:"minor_category"`
	ServiceName   string          `json:"service_name"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// AlbumRowResponse is one per-album rollup row.
type AlbumRowResponse struct {
	Album   string          `json:"album"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SettlementResponse represents one artist's full settlement statement.
type SettlementResponse struct {
	ID                    string               `json:"id"`
	Artist                string               `json:"artist"`
	ServiceRows           []ServiceRowResponse `json:"service_rows"`
	AlbumRows             []AlbumRowResponse   `json:"album_rows"`
	TotalRevenue          decimal.Decimal      `json:"total_revenue"`
	PriorCostBalance      decimal.Decimal      `json:"prior_cost_balance"`
	DeductionApplied      decimal.Decimal      `json:"deduction_applied"`
	RemainingCostBalance  decimal.Decimal      `json:"remaining_cost_balance"`
	RevenueAfterDeduction decimal.Decimal      `json:"revenue_after_deduction"`
	ShareRate             decimal.Decimal      `json:"share_rate"`
	PayableAmount         decimal.Decimal      `json:"payable_amount"`
	CreatedAt             time.Time            `json:"created_at"`
}

// SettlementFromDomain converts a domain settlement to a response.
func SettlementFromDomain(s *domain.ArtistSettlement) *SettlementResponse {
	serviceRows := make([]ServiceRowResponse, len(s.ServiceRows))
	for i, r := range s.ServiceRows {
		serviceRows[i] = ServiceRowResponse{
			Album:         r.Album,
			MajorCategory: r.MajorCategory,
			MinorCategory: r.MinorCategory,
			ServiceName:   r.ServiceName,
			Revenue:       r.Revenue,
		}
	}

	albumRows := make([]AlbumRowResponse, len(s.AlbumRows))
	for i, r := range s.AlbumRows {
		albumRows[i] = AlbumRowResponse{Album: r.Album, Revenue: r.Revenue}
	}

	return &SettlementResponse{
		ID:                    s.ID,
		Artist:                s.Artist,
		ServiceRows:           serviceRows,
		AlbumRows:             albumRows,
		TotalRevenue:          s.TotalRevenue,
		PriorCostBalance:      s.Deduction.PriorCostBalance,
		DeductionApplied:      s.Deduction.DeductionApplied,
		RemainingCostBalance:  s.Deduction.RemainingCostBalance,
		RevenueAfterDeduction: s.Deduction.RevenueAfterDeduction,
		ShareRate:             s.Distribution.ShareRate,
		PayableAmount:         s.Distribution.PayableAmount,
		CreatedAt:             s.CreatedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DeductionRecord captures the cost offset applied to an artist's revenue
// for the period. RevenueAfterDeduction may be negative: an artist can owe
// more than they earned this period, and that is a valid business state,
// not an error.
type DeductionRecord struct {
	PriorCostBalance      decimal.Decimal `json:"prior_cost_balance"`
	DeductionApplied      decimal.Decimal `json:"deduction_applied"`
	RemainingCostBalance  decimal.Decimal `json:"remaining_cost_balance"`
	RevenueAfterDeduction decimal.Decimal `json:"revenue_after_deduction"`
}

// DistributionRecord is the final revenue share applied after deduction.
type DistributionRecord struct {
	ShareRate     decimal.Decimal `json:"share_rate"`
	PayableAmount decimal.Decimal `json:"payable_amount"`
}

// ArtistSettlement is the complete computed result for one artist for one
// period. Created fresh per run and never mutated afterwards.
type ArtistSettlement struct {
	ID           string              `json:"id"`
	Artist       string              `json:"artist"`
	ServiceRows  []ServiceSummaryRow `json:"service_rows"`
	AlbumRows    []AlbumSummaryRow   `json:"album_rows"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	Deduction    DeductionRecord     `json:"deduction"`
	Distribution DistributionRecord  `json:"distribution"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Validate cross-checks the settlement's internal totals: service-level
// revenue, album-level revenue and TotalRevenue must agree exactly.
func (s *ArtistSettlement) Validate() error {
	serviceTotal := decimal.Zero
	for _, r := range s.ServiceRows {
		serviceTotal = serviceTotal.Add(r.Revenue)
	}

	albumTotal := decimal.Zero
	for _, r := range s.AlbumRows {
		albumTotal = albumTotal.Add(r.Revenue)
	}

	if !serviceTotal.Equal(s.TotalRevenue) {
		return fmt.Errorf("service rows sum to %s, total revenue is %s",
			serviceTotal.String(), s.TotalRevenue.String())
	}

	if !albumTotal.Equal(s.TotalRevenue) {
		return fmt.Errorf("album rows sum to %s, total revenue is %s",
			albumTotal.String(), s.TotalRevenue.String())
	}

	return nil
}

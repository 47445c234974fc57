package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/artistpay/settler/internal/domain"
)

// SettlementUseCase runs the per-artist pipeline: aggregation, deduction
// and distribution. All arithmetic is exact decimal; nothing is rounded
// until presentation.
type SettlementUseCase struct {
	idGen IDGenerator
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(idGen IDGenerator) *SettlementUseCase {
	return &SettlementUseCase{idGen: idGen}
}

// Aggregate filters revenue rows to one artist, groups them by
// (album, major, minor, service) and rolls the result up by album.
// Returns domain.ErrNoRevenueData when the artist has no rows.
func (uc *SettlementUseCase) Aggregate(artist string, rows []domain.RevenueRow) ([]domain.ServiceSummaryRow, []domain.AlbumSummaryRow, decimal.Decimal, error) {
	type groupKey struct {
		album, major, minor, service string
	}

	sums := make(map[groupKey]decimal.Decimal)

	// Keys in first-appearance order keep the pre-sort row order
	// deterministic, which the stable taxonomy sort then preserves on ties.
	var keys []groupKey

	for _, r := range rows {
		if r.Artist != artist {
			continue
		}

		k := groupKey{album: r.Album, major: r.MajorCategory, minor: r.MinorCategory, service: r.ServiceName}
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}
		sums[k] = sums[k].Add(r.NetRevenue)
	}

	if len(keys) == 0 {
		return nil, nil, decimal.Zero, domain.ErrNoRevenueData
	}

	serviceRows := make([]domain.ServiceSummaryRow, 0, len(keys))
	for _, k := range keys {
		serviceRows = append(serviceRows, domain.ServiceSummaryRow{
			Album:         k.album,
			MajorCategory: k.major,
			MinorCategory: k.minor,
			ServiceName:   k.service,
			Revenue:       sums[k],
		})
	}
	domain.SortServiceRows(serviceRows)

	albumSums := make(map[string]decimal.Decimal)

	var albums []string
	for _, r := range serviceRows {
		if _, ok := albumSums[r.Album]; !ok {
			albums = append(albums, r.Album)
		}
		albumSums[r.Album] = albumSums[r.Album].Add(r.Revenue)
	}

	albumRows := make([]domain.AlbumSummaryRow, 0, len(albums))
	total := decimal.Zero
	for _, a := range albums {
		albumRows = append(albumRows, domain.AlbumSummaryRow{Album: a, Revenue: albumSums[a]})
		total = total.Add(albumSums[a])
	}
	domain.SortAlbumRows(albumRows)

	return serviceRows, albumRows, total, nil
}

// Deduct applies the artist's cost record to the aggregated total. The
// post-deduction revenue may be negative and is deliberately not clamped.
func (uc *SettlementUseCase) Deduct(totalRevenue decimal.Decimal, cost domain.CostRecord) domain.DeductionRecord {
	return domain.DeductionRecord{
		PriorCostBalance:      cost.PreviousBalance,
		DeductionApplied:      cost.CurrentDeduction,
		RemainingCostBalance:  cost.CurrentBalance,
		RevenueAfterDeduction: totalRevenue.Sub(cost.CurrentDeduction),
	}
}

// Distribute applies the share rate to post-deduction revenue.
func (uc *SettlementUseCase) Distribute(deduction domain.DeductionRecord, cost domain.CostRecord) domain.DistributionRecord {
	return domain.DistributionRecord{
		ShareRate:     cost.ShareRate,
		PayableAmount: deduction.RevenueAfterDeduction.Mul(cost.ShareRate),
	}
}

// BuildSettlement assembles the full settlement for one artist. Cost lookup
// fails on both a missing and an ambiguous record; a default is never
// silently picked.
func (uc *SettlementUseCase) BuildSettlement(artist string, revenue []domain.RevenueRow, costs []domain.CostRecord, now time.Time) (*domain.ArtistSettlement, error) {
	serviceRows, albumRows, total, err := uc.Aggregate(artist, revenue)
	if err != nil {
		return nil, err
	}

	cost, err := domain.FindCostRecord(costs, artist)
	if err != nil {
		return nil, err
	}

	if err := cost.Validate(); err != nil {
		return nil, err
	}

	deduction := uc.Deduct(total, cost)
	distribution := uc.Distribute(deduction, cost)

	settlement := &domain.ArtistSettlement{
		ID:           uc.idGen.Generate(),
		Artist:       artist,
		ServiceRows:  serviceRows,
		AlbumRows:    albumRows,
		TotalRevenue: total,
		Deduction:    deduction,
		Distribution: distribution,
		CreatedAt:    now,
	}

	if err := settlement.Validate(); err != nil {
		return nil, err
	}

	return settlement, nil
}

package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RevenueRow is a single transaction-level fact from the revenue ledger.
// Immutable once bound.
type RevenueRow struct {
	Artist        string
	Album         string
	MajorCategory string
	MinorCategory string
	ServiceName   string
	NetRevenue    decimal.Decimal
}

// ServiceSummaryRow is one aggregated row per unique
// (album, major, minor, service) for a single artist.
type ServiceSummaryRow struct {
	Album         string          `json:"album"`
	MajorCategory string          `json:"major_category"`
	MinorCategory string          `json:"minor_category"`
	ServiceName   string          `json:"service_name"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// AlbumSummaryRow is the per-album rollup of service summary rows.
type AlbumSummaryRow struct {
	Album   string          `json:"album"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Statement rows follow the layout of the issued settlement document, not
// lexical order: domestic before overseas before YouTube, and so on down
// the taxonomy. Values missing from a list sort after all listed ones.
var (
	majorCategoryOrder = []string{"국내", "해외", "YouTube"}
	minorCategoryOrder = []string{"광고수익", "구독수익", "기타", "스트리밍"}
	serviceNameOrder   = []string{"기타 서비스", "스트리밍", "스트리밍 (음원)", "Art Track", "Sound Recording"}
)

func rankIn(order []string, value string) int {
	for i, v := range order {
		if v == value {
			return i
		}
	}

	return len(order)
}

// SortServiceRows orders service summary rows by album name, then by the
// fixed category taxonomy. The sort is stable: rows tied on every key keep
// their grouping order, so re-running aggregation on the same input yields
// identical output.
func SortServiceRows(rows []ServiceSummaryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		if a.Album != b.Album {
			return a.Album < b.Album
		}

		ra, rb := rankIn(majorCategoryOrder, a.MajorCategory), rankIn(majorCategoryOrder, b.MajorCategory)
		if ra != rb {
			return ra < rb
		}

		ra, rb = rankIn(minorCategoryOrder, a.MinorCategory), rankIn(minorCategoryOrder, b.MinorCategory)
		if ra != rb {
			return ra < rb
		}

		ra, rb = rankIn(serviceNameOrder, a.ServiceName), rankIn(serviceNameOrder, b.ServiceName)

		return ra < rb
	})
}

// SortAlbumRows orders album rollup rows alphabetically by album name.
func SortAlbumRows(rows []AlbumSummaryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Album < rows[j].Album
	})
}

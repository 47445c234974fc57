package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger column names as they appear in the source spreadsheets.
const (
	ColArtist        = "앨범아티스트"
	ColAlbum         = "앨범명"
	ColMajorCategory = "대분류"
	ColMinorCategory = "중분류"
	ColServiceName   = "서비스명"
	ColNetRevenue    = "매출 순수익"

	ColCostArtist       = "아티스트명"
	ColPreviousBalance  = "전월 잔액"
	ColCurrentDeduction = "당월 차감액"
	ColCurrentBalance   = "당월 잔액"
	ColShareRate        = "정산 요율"

	// ColViews appears only in ledgers exported with a summary row.
	ColViews = "조회수"
)

// RevenueColumns are required in the revenue ledger.
var RevenueColumns = []string{
	ColArtist,
	ColAlbum,
	ColMajorCategory,
	ColMinorCategory,
	ColServiceName,
	ColNetRevenue,
}

// CostColumns are required in the cost ledger.
var CostColumns = []string{
	ColCostArtist,
	ColPreviousBalance,
	ColCurrentDeduction,
	ColCurrentBalance,
	ColShareRate,
}

// Row is a single ledger row keyed by column name.
type Row map[string]any

// Table is an in-memory ledger as handed over by a collaborator. The engine
// never parses files itself.
type Table struct {
	Columns []string
	Rows    []Row
}

// DeclaredMetric is a pre-computed grand total carried by the source ledger
// (summary-row pattern), kept for reconciliation.
type DeclaredMetric struct {
	Name  string
	Total decimal.Decimal
}

// Problem describes a single validation finding.
type Problem struct {
	Ledger string
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Ledger, p.Reason)
}

// ValidateLedgers checks both input tables before any computation starts.
// An empty result means the batch may proceed; anything else is fatal for
// the whole run.
func ValidateLedgers(revenue, cost Table) []Problem {
	var problems []Problem

	problems = append(problems, validateTable("revenue", revenue, RevenueColumns)...)
	problems = append(problems, validateTable("cost", cost, CostColumns)...)

	return problems
}

func validateTable(name string, t Table, required []string) []Problem {
	var problems []Problem

	if len(t.Rows) == 0 {
		problems = append(problems, Problem{Ledger: name, Reason: ErrEmptyLedger.Error()})
	}

	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}

	for _, c := range required {
		if !present[c] {
			problems = append(problems, Problem{
				Ledger: name,
				Reason: fmt.Sprintf("%s: %q", ErrMissingColumn.Error(), c),
			})
		}
	}

	return problems
}

// BindRevenueRows converts a validated revenue table into typed rows.
// Amounts are normalized column-wise here so aggregation downstream only
// ever sees clean decimals.
func BindRevenueRows(t Table) []RevenueRow {
	rows := make([]RevenueRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, RevenueRow{
			Artist:        cellString(r[ColArtist]),
			Album:         cellString(r[ColAlbum]),
			MajorCategory: cellString(r[ColMajorCategory]),
			MinorCategory: cellString(r[ColMinorCategory]),
			ServiceName:   cellString(r[ColServiceName]),
			NetRevenue:    ParseAmount(r[ColNetRevenue]),
		})
	}

	return rows
}

// BindCostRecords converts a validated cost table into typed records.
func BindCostRecords(t Table) []CostRecord {
	records := make([]CostRecord, 0, len(t.Rows))
	for _, r := range t.Rows {
		records = append(records, CostRecord{
			Artist:           cellString(r[ColCostArtist]),
			PreviousBalance:  ParseAmount(r[ColPreviousBalance]),
			CurrentDeduction: ParseAmount(r[ColCurrentDeduction]),
			CurrentBalance:   ParseAmount(r[ColCurrentBalance]),
			ShareRate:        ParseRate(r[ColShareRate]),
		})
	}

	return records
}

// UniqueArtists extracts the batch artist set from revenue rows, unique and
// in order of first appearance.
func UniqueArtists(rows []RevenueRow) []string {
	seen := make(map[string]bool)

	var artists []string
	for _, r := range rows {
		if r.Artist == "" || seen[r.Artist] {
			continue
		}
		seen[r.Artist] = true
		artists = append(artists, r.Artist)
	}

	return artists
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}

// Package ingest reads ledger exports into the in-memory tables the
// settlement engine consumes. The engine itself never touches files.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/artistpay/settler/internal/domain"
)

// legacyNetRevenueColumn is the pre-2025 export name for net revenue.
const legacyNetRevenueColumn = "권리사정산금액"

// summaryRowMarker labels the grand-total row some exports carry as their
// first data row.
const summaryRowMarker = "합계"

// ReadRevenueCSV parses a revenue ledger export. A grand-total summary row
// at the top is stripped from the table and returned as declared metrics
// for reconciliation.
func ReadRevenueCSV(r io.Reader) (domain.Table, []domain.DeclaredMetric, error) {
	table, err := readTable(r)
	if err != nil {
		return domain.Table{}, nil, fmt.Errorf("revenue ledger: %w", err)
	}

	for i, c := range table.Columns {
		if c == legacyNetRevenueColumn {
			table.Columns[i] = domain.ColNetRevenue
		}
	}
	for _, row := range table.Rows {
		if v, ok := row[legacyNetRevenueColumn]; ok {
			row[domain.ColNetRevenue] = v
			delete(row, legacyNetRevenueColumn)
		}
	}

	var declared []domain.DeclaredMetric
	if len(table.Rows) > 0 && isSummaryRow(table.Rows[0]) {
		summary := table.Rows[0]
		table.Rows = table.Rows[1:]

		declared = append(declared, domain.DeclaredMetric{
			Name:  "revenue",
			Total: domain.ParseAmount(summary[domain.ColNetRevenue]),
		})

		if v, ok := summary[domain.ColViews]; ok {
			declared = append(declared, domain.DeclaredMetric{
				Name:  domain.ColViews,
				Total: domain.ParseAmount(v),
			})
		}
	}

	return table, declared, nil
}

// ReadCostCSV parses a cost ledger export.
func ReadCostCSV(r io.Reader) (domain.Table, error) {
	table, err := readTable(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("cost ledger: %w", err)
	}

	return table, nil
}

// LoadLedgers reads both ledger files from disk.
func LoadLedgers(revenuePath, costPath string) (domain.Table, domain.Table, []domain.DeclaredMetric, error) {
	rf, err := os.Open(revenuePath)
	if err != nil {
		return domain.Table{}, domain.Table{}, nil, fmt.Errorf("open revenue ledger: %w", err)
	}
	defer rf.Close()

	revenue, declared, err := ReadRevenueCSV(rf)
	if err != nil {
		return domain.Table{}, domain.Table{}, nil, err
	}

	cf, err := os.Open(costPath)
	if err != nil {
		return domain.Table{}, domain.Table{}, nil, fmt.Errorf("open cost ledger: %w", err)
	}
	defer cf.Close()

	cost, err := ReadCostCSV(cf)
	if err != nil {
		return domain.Table{}, domain.Table{}, nil, err
	}

	return revenue, cost, declared, nil
}

func readTable(r io.Reader) (domain.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	table := domain.Table{Columns: columns}
	lineNum := 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("line %d: %w", lineNum, err)
		}

		row := make(domain.Row, len(columns))
		for i, c := range columns {
			row[c] = strings.TrimSpace(record[i])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// isSummaryRow reports whether a row is the pre-computed grand total rather
// than a transaction: the artist cell carries the total marker or is blank
// while an amount is present.
func isSummaryRow(row domain.Row) bool {
	artist := strings.TrimSpace(fmt.Sprintf("%v", orEmpty(row[domain.ColArtist])))
	if artist == summaryRowMarker {
		return true
	}

	return artist == "" && !domain.ParseAmount(row[domain.ColNetRevenue]).IsZero()
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

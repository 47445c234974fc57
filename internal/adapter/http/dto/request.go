package dto

import (
	"github.com/shopspring/decimal"

	"github.com/artistpay/settler/internal/domain"
	"github.com/artistpay/settler/internal/usecase"
)

// TableRequest carries one ledger as column names plus row maps keyed by
// column name, mirroring the spreadsheet exports.
type TableRequest struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// ToDomain converts to a domain table.
func (t TableRequest) ToDomain() domain.Table {
	rows := make([]domain.Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = domain.Row(r)
	}

	return domain.Table{Columns: t.Columns, Rows: rows}
}

// DeclaredMetricRequest is a grand total the source ledger declared about
// itself, submitted for reconciliation.
type DeclaredMetricRequest struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// CreateRunRequest represents a request to execute a settlement batch.
type CreateRunRequest struct {
	Revenue           TableRequest               `json:"revenue"`
	Cost              TableRequest               `json:"cost"`
	Declared          []DeclaredMetricRequest    `json:"declared,omitempty"`
	PerArtistDeclared map[string]decimal.Decimal `json:"per_artist_declared,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRunRequest) ToUseCaseInput() usecase.RunInput {
	declared := make([]domain.DeclaredMetric, len(r.Declared))
	for i, d := range r.Declared {
		declared[i] = domain.DeclaredMetric{Name: d.Name, Total: d.Total}
	}

	return usecase.RunInput{
		Revenue:           r.Revenue.ToDomain(),
		Cost:              r.Cost.ToDomain(),
		Declared:          declared,
		PerArtistDeclared: r.PerArtistDeclared,
	}
}

package ingest

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/artistpay/settler/internal/domain"
)

const revenueHeader = "앨범아티스트,앨범명,대분류,중분류,서비스명,매출 순수익"

func TestReadRevenueCSV(t *testing.T) {
	input := revenueHeader + "\n" +
		"A,First,국내,스트리밍,스트리밍,1000\n" +
		"A,First,해외,스트리밍,Art Track,\"1,500\"\n"

	table, declared, err := ReadRevenueCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRevenueCSV() error = %v", err)
	}

	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if len(declared) != 0 {
		t.Fatalf("declared = %v, want none", declared)
	}

	rows := domain.BindRevenueRows(table)
	if rows[1].NetRevenue.String() != "1500" {
		t.Errorf("second row revenue = %s, want 1500", rows[1].NetRevenue)
	}
	if rows[0].Artist != "A" || rows[0].ServiceName != "스트리밍" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
}

func TestReadRevenueCSV_LegacyColumn(t *testing.T) {
	input := "앨범아티스트,앨범명,대분류,중분류,서비스명,권리사정산금액\n" +
		"A,First,국내,스트리밍,스트리밍,700\n"

	table, _, err := ReadRevenueCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRevenueCSV() error = %v", err)
	}

	if problems := domain.ValidateLedgers(table, costFixture(t)); len(problems) != 0 {
		t.Fatalf("validation problems after rename: %v", problems)
	}

	rows := domain.BindRevenueRows(table)
	if rows[0].NetRevenue.String() != "700" {
		t.Errorf("revenue = %s, want 700", rows[0].NetRevenue)
	}
}

func TestReadRevenueCSV_SummaryRow(t *testing.T) {
	input := "앨범아티스트,앨범명,대분류,중분류,서비스명,매출 순수익,조회수\n" +
		"합계,,,,,\"2,500\",\"10,000\"\n" +
		"A,First,국내,스트리밍,스트리밍,1000,4000\n" +
		"B,Second,해외,구독수익,Art Track,1500,6000\n"

	table, declared, err := ReadRevenueCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRevenueCSV() error = %v", err)
	}

	if len(table.Rows) != 2 {
		t.Fatalf("rows after stripping summary = %d, want 2", len(table.Rows))
	}
	if len(declared) != 2 {
		t.Fatalf("declared metrics = %d, want 2", len(declared))
	}

	if declared[0].Name != "revenue" || declared[0].Total.String() != "2500" {
		t.Errorf("declared revenue = %+v, want revenue 2500", declared[0])
	}
	if declared[1].Name != domain.ColViews || declared[1].Total.String() != "10000" {
		t.Errorf("declared views = %+v, want 조회수 10000", declared[1])
	}
}

func TestReadRevenueCSV_BlankArtistSummary(t *testing.T) {
	input := revenueHeader + "\n" +
		",,,,,3000\n" +
		"A,First,국내,스트리밍,스트리밍,3000\n"

	table, declared, err := ReadRevenueCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRevenueCSV() error = %v", err)
	}

	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.Rows))
	}
	if len(declared) != 1 || declared[0].Total.String() != "3000" {
		t.Fatalf("declared = %+v, want revenue 3000", declared)
	}
}

func TestReadRevenueCSV_EmptyInput(t *testing.T) {
	_, _, err := ReadRevenueCSV(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestReadCostCSV(t *testing.T) {
	input := "아티스트명,전월 잔액,당월 차감액,당월 잔액,정산 요율\n" +
		"A,500,300,200,0.5\n"

	table, err := ReadCostCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCostCSV() error = %v", err)
	}

	records := domain.BindCostRecords(table)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].ShareRate.String() != "0.5" {
		t.Errorf("share rate = %s, want 0.5", records[0].ShareRate)
	}
}

func TestReadCostCSV_RaggedRow(t *testing.T) {
	input := "아티스트명,전월 잔액,당월 차감액,당월 잔액,정산 요율\n" +
		"A,500,300,200,0.5\n" +
		"B,100\n"

	_, err := ReadCostCSV(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for ragged row")
	}

	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error should name the offending line, got %v", err)
	}
}

func TestLoadLedgers_MissingFile(t *testing.T) {
	_, _, _, err := LoadLedgers("/nonexistent/revenue.csv", "/nonexistent/cost.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
	if !strings.Contains(err.Error(), "open revenue ledger") {
		t.Errorf("error should mention the revenue ledger, got %v", err)
	}
}

func costFixture(t *testing.T) domain.Table {
	t.Helper()

	return domain.Table{
		Columns: domain.CostColumns,
		Rows: []domain.Row{{
			domain.ColCostArtist:       "A",
			domain.ColPreviousBalance:  "0",
			domain.ColCurrentDeduction: "0",
			domain.ColCurrentBalance:   "0",
			domain.ColShareRate:        "0.5",
		}},
	}
}

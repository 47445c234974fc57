package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/artistpay/settler/internal/domain"
)

func TestCreateRunRequest_ToUseCaseInput(t *testing.T) {
	raw := `{
		"revenue": {
			"columns": ["앨범아티스트", "매출 순수익"],
			"rows": [{"앨범아티스트": "A", "매출 순수익": "1,000"}]
		},
		"cost": {
			"columns": ["아티스트명", "정산 요율"],
			"rows": [{"아티스트명": "A", "정산 요율": 0.5}]
		},
		"declared": [{"name": "revenue", "total": "1000"}],
		"per_artist_declared": {"A": "1000"}
	}`

	var req CreateRunRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	input := req.ToUseCaseInput()

	if len(input.Revenue.Rows) != 1 || len(input.Cost.Rows) != 1 {
		t.Fatalf("unexpected tables: %+v", input)
	}

	if got := domain.ParseAmount(input.Revenue.Rows[0][domain.ColNetRevenue]); got.String() != "1000" {
		t.Errorf("revenue cell parsed to %s, want 1000", got)
	}

	if len(input.Declared) != 1 || !input.Declared[0].Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected declared metrics: %+v", input.Declared)
	}

	if !input.PerArtistDeclared["A"].Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected per-artist declared: %+v", input.PerArtistDeclared)
	}
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/artistpay/settler/internal/domain"
)

func sampleRun() *domain.BatchRun {
	settlement := &domain.ArtistSettlement{
		ID:           "stl-1",
		Artist:       "A",
		TotalRevenue: decimal.NewFromInt(1000),
		Distribution: domain.DistributionRecord{
			ShareRate:     decimal.RequireFromString("0.5"),
			PayableAmount: decimal.NewFromInt(350),
		},
		CreatedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	return &domain.BatchRun{
		ID: "run-1",
		Result: &domain.BatchRunResult{
			Succeeded:    []*domain.ArtistSettlement{settlement},
			Failed:       []domain.ArtistFailure{{Artist: "B", Reason: "no cost record for artist"}},
			TotalArtists: 2,
		},
		StartedAt:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 15, 0, 0, 5, 0, time.UTC),
	}
}

func TestRunRepositorySaveRun(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newRunRepositoryWithConn(mockPool)
	run := sampleRun()

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO settlement_runs")).
		WithArgs(run.ID, 2, pgxmock.AnyArg(), pgxmock.AnyArg(), run.StartedAt, run.FinishedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO settlements")).
		WithArgs(run.ID, 0, "A", run.Result.Succeeded[0].Distribution.PayableAmount, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO settlement_failures")).
		WithArgs(run.ID, 0, "B", "no cost record for artist").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()
	mockPool.ExpectRollback()

	if err := repo.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestRunRepositorySaveRunRollsBackOnError(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newRunRepositoryWithConn(mockPool)
	run := sampleRun()

	insertErr := errors.New("insert failed")

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO settlement_runs")).
		WithArgs(run.ID, 2, pgxmock.AnyArg(), pgxmock.AnyArg(), run.StartedAt, run.FinishedAt).
		WillReturnError(insertErr)
	mockPool.ExpectRollback()

	if err := repo.SaveRun(context.Background(), run); !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestRunRepositoryGetRun(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newRunRepositoryWithConn(mockPool)
	run := sampleRun()

	settlementJSON, err := json.Marshal(run.Result.Succeeded[0])
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM settlement_runs")).
		WithArgs(run.ID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "total_artists", "not_attempted", "reconciliation", "started_at", "finished_at",
		}).AddRow(run.ID, 2, []byte(`[]`), []byte(nil), run.StartedAt, run.FinishedAt))
	mockPool.ExpectQuery(regexp.QuoteMeta("FROM settlements")).
		WithArgs(run.ID).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(settlementJSON))
	mockPool.ExpectQuery(regexp.QuoteMeta("FROM settlement_failures")).
		WithArgs(run.ID).
		WillReturnRows(pgxmock.NewRows([]string{"artist", "reason"}).
			AddRow("B", "no cost record for artist"))

	got, err := repo.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got.ID != run.ID || got.Result.TotalArtists != 2 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if len(got.Result.Succeeded) != 1 || got.Result.Succeeded[0].Artist != "A" {
		t.Fatalf("unexpected settlements: %+v", got.Result.Succeeded)
	}
	if !got.Result.Succeeded[0].Distribution.PayableAmount.Equal(decimal.NewFromInt(350)) {
		t.Errorf("payable = %s, want 350", got.Result.Succeeded[0].Distribution.PayableAmount)
	}
	if len(got.Result.Failed) != 1 || got.Result.Failed[0].Artist != "B" {
		t.Fatalf("unexpected failures: %+v", got.Result.Failed)
	}

	assertExpectations(t, mockPool)
}

func TestRunRepositoryGetRunNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newRunRepositoryWithConn(mockPool)

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM settlement_runs")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetRun(context.Background(), "missing")
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunRepositoryGetSettlementNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newRunRepositoryWithConn(mockPool)

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM settlements")).
		WithArgs("run-1", "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetSettlement(context.Background(), "run-1", "missing")
	if !errors.Is(err, domain.ErrSettlementNotFound) {
		t.Fatalf("expected ErrSettlementNotFound, got %v", err)
	}
}

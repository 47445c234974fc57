package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artistpay/settler/internal/domain"
)

type dbConn interface {
	pgxPool
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunRepository implements usecase.BatchRunRepository. Settlements and
// reconciliation reports are stored as JSONB documents; the relational
// columns carry only what queries filter on.
type RunRepository struct {
	db      dbConn
	txm     *TxManager
	retrier *Retrier
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return newRunRepositoryWithConn(pool)
}

func newRunRepositoryWithConn(db dbConn) *RunRepository {
	return &RunRepository{
		db:      db,
		txm:     newTxManagerWithPool(db),
		retrier: NewRetrier(),
	}
}

// SaveRun persists a finished run atomically: the run row, every settlement
// and every failure commit together or not at all.
func (r *RunRepository) SaveRun(ctx context.Context, run *domain.BatchRun) error {
	return r.retrier.Retry(ctx, func() error {
		return r.saveRun(ctx, run)
	})
}

func (r *RunRepository) saveRun(ctx context.Context, run *domain.BatchRun) error {
	tx, err := r.txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	pgxTx := tx.(*Tx).PgxTx()

	var reconciliationJSON []byte
	if run.Reconciliation != nil {
		reconciliationJSON, err = json.Marshal(run.Reconciliation)
		if err != nil {
			return fmt.Errorf("marshal reconciliation: %w", err)
		}
	}

	notAttemptedJSON, err := json.Marshal(run.Result.NotAttempted)
	if err != nil {
		return fmt.Errorf("marshal not attempted: %w", err)
	}

	query := `
		INSERT INTO settlement_runs (
			id, total_artists, not_attempted, reconciliation, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := pgxTx.Exec(ctx, query,
		run.ID,
		run.Result.TotalArtists,
		notAttemptedJSON,
		reconciliationJSON,
		run.StartedAt,
		run.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	settlementQuery := `
		INSERT INTO settlements (run_id, position, artist, payable_amount, data)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i, s := range run.Result.Succeeded {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal settlement for %s: %w", s.Artist, err)
		}

		if _, err := pgxTx.Exec(ctx, settlementQuery,
			run.ID, i, s.Artist, s.Distribution.PayableAmount, data,
		); err != nil {
			return fmt.Errorf("insert settlement for %s: %w", s.Artist, err)
		}
	}

	failureQuery := `
		INSERT INTO settlement_failures (run_id, position, artist, reason)
		VALUES ($1, $2, $3, $4)
	`

	for i, f := range run.Result.Failed {
		if _, err := pgxTx.Exec(ctx, failureQuery, run.ID, i, f.Artist, f.Reason); err != nil {
			return fmt.Errorf("insert failure for %s: %w", f.Artist, err)
		}
	}

	return tx.Commit(ctx)
}

// GetRun fetches a persisted run with its settlements and failures, in
// batch order.
func (r *RunRepository) GetRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	query := `
		SELECT id, total_artists, not_attempted, reconciliation, started_at, finished_at
		FROM settlement_runs
		WHERE id = $1
	`

	run := &domain.BatchRun{Result: &domain.BatchRunResult{}}

	var notAttemptedJSON, reconciliationJSON []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Result.TotalArtists,
		&notAttemptedJSON,
		&reconciliationJSON,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	if notAttemptedJSON != nil {
		if err := json.Unmarshal(notAttemptedJSON, &run.Result.NotAttempted); err != nil {
			return nil, fmt.Errorf("unmarshal not attempted: %w", err)
		}
	}

	if reconciliationJSON != nil {
		run.Reconciliation = &domain.ReconciliationReport{}
		if err := json.Unmarshal(reconciliationJSON, run.Reconciliation); err != nil {
			return nil, fmt.Errorf("unmarshal reconciliation: %w", err)
		}
	}

	if run.Result.Succeeded, err = r.loadSettlements(ctx, id); err != nil {
		return nil, err
	}

	if run.Result.Failed, err = r.loadFailures(ctx, id); err != nil {
		return nil, err
	}

	return run, nil
}

func (r *RunRepository) loadSettlements(ctx context.Context, runID string) ([]*domain.ArtistSettlement, error) {
	query := `
		SELECT data
		FROM settlements
		WHERE run_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*domain.ArtistSettlement
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}

		var s domain.ArtistSettlement
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("unmarshal settlement: %w", err)
		}
		settlements = append(settlements, &s)
	}

	return settlements, rows.Err()
}

func (r *RunRepository) loadFailures(ctx context.Context, runID string) ([]domain.ArtistFailure, error) {
	query := `
		SELECT artist, reason
		FROM settlement_failures
		WHERE run_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var failures []domain.ArtistFailure
	for rows.Next() {
		var f domain.ArtistFailure
		if err := rows.Scan(&f.Artist, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		failures = append(failures, f)
	}

	return failures, rows.Err()
}

// GetSettlement fetches one artist's settlement from a persisted run.
func (r *RunRepository) GetSettlement(ctx context.Context, runID, artist string) (*domain.ArtistSettlement, error) {
	query := `
		SELECT data
		FROM settlements
		WHERE run_id = $1 AND artist = $2
	`

	var data []byte
	err := r.db.QueryRow(ctx, query, runID, artist).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSettlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query settlement: %w", err)
	}

	var s domain.ArtistSettlement
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal settlement: %w", err)
	}

	return &s, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/artistpay/settler/internal/domain"
)

// BatchUseCase drives the settlement pipeline once per artist, isolates
// per-artist failures and assembles the batch ledger plus reconciliation
// report. It is the only component aware of the full artist set.
type BatchUseCase struct {
	settlementUC *SettlementUseCase
	runRepo      BatchRunRepository
	idGen        IDGenerator
	progress     ProgressSink
	recorder     RunRecorder
	cache        Cache
	cacheTTL     time.Duration
	logger       zerolog.Logger
	workers      int
	tolerance    decimal.Decimal
}

// BatchOption configures optional collaborators.
type BatchOption func(*BatchUseCase)

// WithRunRepository persists finished runs.
func WithRunRepository(repo BatchRunRepository) BatchOption {
	return func(uc *BatchUseCase) { uc.runRepo = repo }
}

// WithProgressSink emits (processed, total, artist) after each unit.
func WithProgressSink(sink ProgressSink) BatchOption {
	return func(uc *BatchUseCase) { uc.progress = sink }
}

// WithRunRecorder records batch observations for metrics.
func WithRunRecorder(rec RunRecorder) BatchOption {
	return func(uc *BatchUseCase) { uc.recorder = rec }
}

// WithRunCache serves repeated run lookups from cache. Runs are immutable
// once saved, so staleness is not a concern.
func WithRunCache(cache Cache, ttl time.Duration) BatchOption {
	return func(uc *BatchUseCase) {
		uc.cache = cache
		uc.cacheTTL = ttl
	}
}

// WithWorkers bounds the worker pool.
func WithWorkers(n int) BatchOption {
	return func(uc *BatchUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// WithTolerance overrides the reconciliation tolerance.
func WithTolerance(t decimal.Decimal) BatchOption {
	return func(uc *BatchUseCase) {
		if !t.IsNegative() {
			uc.tolerance = t
		}
	}
}

// NewBatchUseCase creates a new BatchUseCase.
func NewBatchUseCase(settlementUC *SettlementUseCase, idGen IDGenerator, logger zerolog.Logger, opts ...BatchOption) *BatchUseCase {
	uc := &BatchUseCase{
		settlementUC: settlementUC,
		idGen:        idGen,
		logger:       logger,
		workers:      4,
		tolerance:    decimal.NewFromInt(1),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// RunInput is one batch: both ledgers as in-memory tables plus any summary
// figures the source declared about itself.
type RunInput struct {
	Revenue domain.Table
	Cost    domain.Table

	Declared          []domain.DeclaredMetric
	PerArtistDeclared map[string]decimal.Decimal
}

// artistOutcome is the tagged result of one unit of work.
type artistOutcome struct {
	settlement *domain.ArtistSettlement
	failure    *domain.ArtistFailure
	attempted  bool
}

// Run executes one full batch. Validation problems abort before any
// per-artist processing; per-artist errors are converted into failure
// entries and never abort sibling artists. If the context is cancelled,
// artists not yet started are reported as not attempted.
func (uc *BatchUseCase) Run(ctx context.Context, input RunInput) (*domain.BatchRun, error) {
	startedAt := time.Now().UTC()

	if problems := domain.ValidateLedgers(input.Revenue, input.Cost); len(problems) > 0 {
		for _, p := range problems {
			uc.logger.Error().Str("ledger", p.Ledger).Str("reason", p.Reason).Msg("ledger validation failed")
		}

		return nil, fmt.Errorf("%w: %d problems, first: %s", domain.ErrInvalidLedgers, len(problems), problems[0])
	}

	revenueRows := domain.BindRevenueRows(input.Revenue)
	costRecords := domain.BindCostRecords(input.Cost)

	artists := domain.UniqueArtists(revenueRows)
	if len(artists) == 0 {
		return nil, domain.ErrNoArtists
	}

	uc.logger.Info().
		Int("artists", len(artists)).
		Int("revenue_rows", len(revenueRows)).
		Int("workers", uc.workers).
		Msg("starting settlement batch")

	outcomes := uc.processArtists(ctx, artists, revenueRows, costRecords, startedAt)

	result := &domain.BatchRunResult{TotalArtists: len(artists)}
	for i, o := range outcomes {
		switch {
		case !o.attempted:
			result.NotAttempted = append(result.NotAttempted, artists[i])
		case o.failure != nil:
			result.Failed = append(result.Failed, *o.failure)
		default:
			result.Succeeded = append(result.Succeeded, o.settlement)
		}
	}

	run := &domain.BatchRun{
		ID:         uc.idGen.Generate(),
		Result:     result,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}

	if len(result.Succeeded) > 0 {
		run.Reconciliation = BuildReconciliationReport(ReconcileInput{
			Settlements:       result.Succeeded,
			Declared:          input.Declared,
			ExtraRecomputed:   uc.recomputeExtraMetrics(input),
			PerArtistDeclared: input.PerArtistDeclared,
			Tolerance:         uc.tolerance,
		})

		if !run.Reconciliation.Matches {
			uc.logger.Warn().
				Str("run_id", run.ID).
				Msg("reconciliation mismatch between declared and recomputed totals")
		}
	}

	uc.logger.Info().
		Str("run_id", run.ID).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Int("not_attempted", len(result.NotAttempted)).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("settlement batch finished")

	if uc.recorder != nil {
		reconciled := run.Reconciliation == nil || run.Reconciliation.Matches
		uc.recorder.ObserveRun(len(result.Succeeded), len(result.Failed), reconciled, run.FinishedAt.Sub(run.StartedAt))
	}

	if uc.runRepo != nil {
		if err := uc.runRepo.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	return run, nil
}

// processArtists fans the artist set out over a bounded worker pool.
// Outcomes land in a slice indexed by artist position, so batch order is
// first-appearance order regardless of scheduling. Accumulator updates are
// isolated appends keyed by artist; the only shared counter is the one
// feeding the progress sink.
func (uc *BatchUseCase) processArtists(ctx context.Context, artists []string, revenueRows []domain.RevenueRow, costRecords []domain.CostRecord, now time.Time) []artistOutcome {
	outcomes := make([]artistOutcome, len(artists))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)

	sem := make(chan struct{}, uc.workers)

dispatch:
	for i, artist := range artists {
		// Artists not yet started stay unattempted; callers report them
		// separately from failures.
		if ctx.Err() != nil {
			break dispatch
		}

		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, artist string) {
			defer wg.Done()
			defer func() { <-sem }()

			outcomes[i] = uc.settleOne(artist, revenueRows, costRecords, now)

			mu.Lock()
			processed++
			done := processed
			mu.Unlock()

			if uc.progress != nil {
				uc.progress.Progress(done, len(artists), artist)
			}
		}(i, artist)
	}

	wg.Wait()

	return outcomes
}

// settleOne runs one unit of work. Errors become failure entries here, at
// the orchestrator boundary, so they never cross it as control flow.
func (uc *BatchUseCase) settleOne(artist string, revenueRows []domain.RevenueRow, costRecords []domain.CostRecord, now time.Time) artistOutcome {
	settlement, err := uc.settlementUC.BuildSettlement(artist, revenueRows, costRecords, now)
	if err != nil {
		uc.logger.Warn().Str("artist", artist).Err(err).Msg("artist settlement failed")

		return artistOutcome{
			failure:   &domain.ArtistFailure{Artist: artist, Reason: err.Error()},
			attempted: true,
		}
	}

	if uc.recorder != nil {
		uc.recorder.ObserveSettlement(artist, settlement.Distribution.PayableAmount.String())
	}

	return artistOutcome{settlement: settlement, attempted: true}
}

// recomputeExtraMetrics sums declared non-revenue metric columns over the
// detail rows, independently of aggregation.
func (uc *BatchUseCase) recomputeExtraMetrics(input RunInput) map[string]decimal.Decimal {
	extra := make(map[string]decimal.Decimal)

	for _, d := range input.Declared {
		if d.Name == MetricRevenue {
			continue
		}

		total := decimal.Zero
		for _, row := range input.Revenue.Rows {
			total = total.Add(domain.ParseAmount(row[d.Name]))
		}
		extra[d.Name] = total
	}

	return extra
}

// GetRun fetches a persisted run, preferring the cache when configured.
func (uc *BatchUseCase) GetRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	if uc.runRepo == nil {
		return nil, domain.ErrRunNotFound
	}

	cacheKey := "run:" + id

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, cacheKey); err == nil {
			var run domain.BatchRun
			if err := json.Unmarshal([]byte(cached), &run); err == nil {
				return &run, nil
			}
		}
	}

	run, err := uc.runRepo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(run); err == nil {
			// Cache errors only cost the next lookup a repo round trip.
			_ = uc.cache.Set(ctx, cacheKey, string(data), uc.cacheTTL)
		}
	}

	return run, nil
}

// GetSettlement fetches one artist's settlement from a persisted run.
func (uc *BatchUseCase) GetSettlement(ctx context.Context, runID, artist string) (*domain.ArtistSettlement, error) {
	if uc.runRepo == nil {
		return nil, domain.ErrSettlementNotFound
	}

	return uc.runRepo.GetSettlement(ctx, runID, artist)
}

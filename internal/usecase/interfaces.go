package usecase

import (
	"context"
	"time"

	"github.com/artistpay/settler/internal/domain"
)

// BatchRunRepository defines persistence for batch runs. Persistence is a
// collaborator concern: the engine runs identically with no repository.
type BatchRunRepository interface {
	SaveRun(ctx context.Context, run *domain.BatchRun) error
	GetRun(ctx context.Context, id string) (*domain.BatchRun, error)
	GetSettlement(ctx context.Context, runID, artist string) (*domain.ArtistSettlement, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ProgressSink receives advisory progress updates after each artist
// completes. Never required for correctness.
type ProgressSink interface {
	Progress(processed, total int, artist string)
}

// RunRecorder receives batch-level observations for metrics.
type RunRecorder interface {
	ObserveRun(succeeded, failed int, reconciled bool, elapsed time.Duration)
	ObserveSettlement(artist string, payable string)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager manages database transactions.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries operations that fail transiently.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

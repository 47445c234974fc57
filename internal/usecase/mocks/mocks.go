package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artistpay/settler/internal/domain"
)

// MockBatchRunRepository is a mock implementation of BatchRunRepository.
type MockBatchRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.BatchRun

	SaveRunFunc       func(ctx context.Context, run *domain.BatchRun) error
	GetRunFunc        func(ctx context.Context, id string) (*domain.BatchRun, error)
	GetSettlementFunc func(ctx context.Context, runID, artist string) (*domain.ArtistSettlement, error)
}

func NewMockBatchRunRepository() *MockBatchRunRepository {
	return &MockBatchRunRepository{
		runs: make(map[string]*domain.BatchRun),
	}
}

func (m *MockBatchRunRepository) SaveRun(ctx context.Context, run *domain.BatchRun) error {
	if m.SaveRunFunc != nil {
		return m.SaveRunFunc(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *MockBatchRunRepository) GetRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if run, ok := m.runs[id]; ok {
		return run, nil
	}
	return nil, domain.ErrRunNotFound
}

func (m *MockBatchRunRepository) GetSettlement(ctx context.Context, runID, artist string) (*domain.ArtistSettlement, error) {
	if m.GetSettlementFunc != nil {
		return m.GetSettlementFunc(ctx, runID, artist)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	for _, s := range run.Result.Succeeded {
		if s.Artist == artist {
			return s, nil
		}
	}
	return nil, domain.ErrSettlementNotFound
}

// SavedRuns returns the runs persisted via the default SaveRun.
func (m *MockBatchRunRepository) SavedRuns() []*domain.BatchRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]*domain.BatchRun, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	return runs
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockProgressSink records progress updates.
type MockProgressSink struct {
	mu      sync.Mutex
	Updates []ProgressUpdate
}

type ProgressUpdate struct {
	Processed int
	Total     int
	Artist    string
}

func NewMockProgressSink() *MockProgressSink {
	return &MockProgressSink{}
}

func (m *MockProgressSink) Progress(processed, total int, artist string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, ProgressUpdate{Processed: processed, Total: total, Artist: artist})
}

func (m *MockProgressSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates)
}

// MockRunRecorder records batch observations.
type MockRunRecorder struct {
	mu          sync.Mutex
	Runs        int
	Settlements int
}

func NewMockRunRecorder() *MockRunRecorder {
	return &MockRunRecorder{}
}

func (m *MockRunRecorder) ObserveRun(succeeded, failed int, reconciled bool, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs++
}

func (m *MockRunRecorder) ObserveSettlement(artist, payable string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Settlements++
}

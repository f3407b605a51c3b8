package history

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/obs"
	"github.com/noah-isme/profitpro/internal/storage"
)

// DefaultCapacity is the maximum number of calculations the ledger retains.
const DefaultCapacity = 20

// Storage is the slice of the durable-storage port the ledger needs.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Config wires a Store.
type Config struct {
	Storage  Storage
	Slot     string
	Capacity int
	IDs      *IDSequence
	Logger   *zerolog.Logger
}

// Store is the newest-first, capacity-bounded calculation ledger. Every
// mutation is written through to storage before the call returns. A failed
// write is reported but never rolled back, so memory may run ahead of storage
// until the next successful write.
type Store struct {
	storage  Storage
	slot     string
	capacity int
	ids      *IDSequence
	logger   zerolog.Logger
	tracer   trace.Tracer

	mu      sync.Mutex
	entries []calculator.Calculation
}

// NewStore constructs an empty ledger. Call Load to restore persisted state.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Storage == nil {
		return nil, errors.New("history storage is required")
	}
	slot := cfg.Slot
	if slot == "" {
		slot = storage.SlotHistory
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ids := cfg.IDs
	if ids == nil {
		ids = NewIDSequence(nil)
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "history").Logger()
	}
	return &Store{
		storage:  cfg.Storage,
		slot:     slot,
		capacity: capacity,
		ids:      ids,
		logger:   logger,
		tracer:   otel.Tracer("profitpro/history"),
	}, nil
}

// Capacity returns the retention cap.
func (s *Store) Capacity() int { return s.capacity }

// Load replaces the in-memory ledger with the persisted one. A missing,
// empty, unreadable or malformed slot yields an empty ledger; Load never fails.
func (s *Store) Load(ctx context.Context) []calculator.Calculation {
	ctx, span := s.tracer.Start(ctx, "history.load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, reason, err := s.read(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("reason", reason).Msg("history_load_degraded")
		obs.IncHistoryLoadDegraded(reason)
		span.SetAttributes(attribute.String("history.degraded", reason))
		entries = nil
	}
	if len(entries) > s.capacity {
		s.logger.Warn().Int("entries", len(entries)).Int("capacity", s.capacity).Msg("history_load_truncated")
		entries = entries[:s.capacity]
	}
	for _, e := range entries {
		s.ids.Observe(e.ID)
	}
	s.entries = entries
	obs.SetHistoryEntries(len(entries))
	span.SetAttributes(attribute.Int("history.entries", len(entries)))
	return s.snapshot()
}

func (s *Store) read(ctx context.Context) ([]calculator.Calculation, string, error) {
	data, ok, err := s.storage.Get(ctx, s.slot)
	if err != nil {
		return nil, "storage", &StorageError{Op: "load", Slot: s.slot, Err: err}
	}
	if !ok {
		return nil, "", nil
	}
	entries, err := Decode(data)
	if err != nil {
		return nil, "malformed", err
	}
	return entries, "", nil
}

// Record assigns calc a fresh id, prepends it and evicts the oldest entries
// beyond capacity. The identified calculation is returned even when the
// write to storage fails; the error is then a *StorageError.
func (s *Store) Record(ctx context.Context, calc calculator.Calculation) (calculator.Calculation, error) {
	ctx, span := s.tracer.Start(ctx, "history.record")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	calc.ID = s.ids.Next()
	keep := len(s.entries)
	if keep > s.capacity-1 {
		keep = s.capacity - 1
	}
	evicted := len(s.entries) - keep

	next := make([]calculator.Calculation, 0, keep+1)
	next = append(next, calc)
	next = append(next, s.entries[:keep]...)
	s.entries = next

	if evicted > 0 {
		s.logger.Debug().Int("evicted", evicted).Msg("history_evicted")
		obs.AddHistoryEvictions(evicted)
	}
	obs.SetHistoryEntries(len(s.entries))
	span.SetAttributes(attribute.Int64("history.id", calc.ID), attribute.Int("history.entries", len(s.entries)))

	if err := s.persist(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return calc, err
	}
	return calc, nil
}

// FindByID returns the entry with the exact id, or ErrNotFound.
func (s *Store) FindByID(id int64) (calculator.Calculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return calculator.Calculation{}, ErrNotFound
}

// Clear empties the ledger and persists the empty state. It does not ask
// for confirmation; callers are expected to have done so.
func (s *Store) Clear(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "history.clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)
	s.entries = nil
	obs.SetHistoryEntries(0)
	s.logger.Info().Int("removed", removed).Msg("history_cleared")

	if err := s.persist(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return err
	}
	return nil
}

// Entries returns a copy of the ledger, newest first.
func (s *Store) Entries() []calculator.Calculation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of ledger entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Flush writes the current ledger to storage, for retrying after a failed write.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

func (s *Store) snapshot() []calculator.Calculation {
	out := make([]calculator.Calculation, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) persist(ctx context.Context) error {
	data, err := Encode(s.entries)
	if err == nil {
		err = s.storage.Set(ctx, s.slot, data)
	}
	if err != nil {
		obs.IncHistoryPersistFailure()
		s.logger.Error().Err(err).Int("entries", len(s.entries)).Msg("history_persist_failed")
		return &StorageError{Op: "save", Slot: s.slot, Err: err}
	}
	return nil
}

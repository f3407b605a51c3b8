package history

import (
	"context"

	"github.com/noah-isme/profitpro/internal/calculator"
)

// Replay re-derives the entry with the given id from its stored inputs and
// records the fresh result as a new entry. Stored derived fields are never
// reused. On a persist failure the fresh calculation is still returned
// alongside the *StorageError.
func (s *Store) Replay(ctx context.Context, id int64, calc calculator.Calculator) (calculator.Calculation, error) {
	found, err := s.FindByID(id)
	if err != nil {
		return calculator.Calculation{}, err
	}
	return s.Record(ctx, calc.Compute(found.Inputs))
}

// Recompute re-derives the entry with the given id without touching the ledger.
// The stored id and timestamp are carried over so the result still names the entry.
func (s *Store) Recompute(id int64) (calculator.Calculation, error) {
	found, err := s.FindByID(id)
	if err != nil {
		return calculator.Calculation{}, err
	}
	fresh := calculator.Compute(found.Inputs, found.Timestamp)
	fresh.ID = found.ID
	return fresh, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Load returns the snapshot of e as a typed slice, empty when none exists.
func Load[T any](ctx context.Context, s *Store, e Entity) ([]T, error) {
	out := []T{}
	if err := s.Get(ctx, e, &out); err != nil {
		return []T{}, err
	}
	return out, nil
}

// Save overwrites the snapshot of e.
func Save[T any](ctx context.Context, s *Store, e Entity, records []T) error {
	if records == nil {
		records = []T{}
	}
	return s.Put(ctx, e, records)
}

// AppendRecord adds rec at the end of the snapshot of e.
func AppendRecord[T any](ctx context.Context, s *Store, e Entity, rec T) error {
	return s.Append(ctx, e, rec)
}

// Mutate applies fn to the snapshot of e atomically and stores the result.
func Mutate[T any](ctx context.Context, s *Store, e Entity, fn func([]T) []T) error {
	return s.update(ctx, e, typed(fn))
}

// MutateUnsynced is Mutate with the record keys of e still in the outbox,
// read in the same transaction so a write queued concurrently is never missed.
func MutateUnsynced[T any](ctx context.Context, s *Store, e Entity, fn func(cur []T, pending map[string]bool) []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := pendingKeys(tx, e)
		if err != nil {
			return fmt.Errorf("read pending %s: %w", e, err)
		}
		return updateTx(tx, e, typed(func(cur []T) []T { return fn(cur, pending) }))
	})
}

// AppendQueued adds rec to the snapshot of e and queues w for delivery as one
// step: no reader ever sees the record without its outbox entry.
func AppendQueued[T any](ctx context.Context, s *Store, e Entity, rec T, w PendingWrite) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", e, err)
	}
	w.ID = 0
	w.Entity = e
	if w.Ref == "" {
		w.Ref = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&w).Error; err != nil {
			return fmt.Errorf("enqueue pending %s: %w", e, err)
		}
		return updateTx(tx, e, func(items []json.RawMessage) ([]json.RawMessage, error) {
			return append(items, raw), nil
		})
	})
	if err != nil {
		return "", err
	}
	return w.Ref, nil
}

func typed[T any](fn func([]T) []T) func([]json.RawMessage) ([]json.RawMessage, error) {
	return func(items []json.RawMessage) ([]json.RawMessage, error) {
		vals := make([]T, 0, len(items))
		for _, raw := range items {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		vals = fn(vals)
		out := make([]json.RawMessage, 0, len(vals))
		for _, v := range vals {
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
		return out, nil
	}
}

// RemoveWhere deletes every record of e matching drop and reports how many went.
func RemoveWhere[T any](ctx context.Context, s *Store, e Entity, drop func(T) bool) (int, error) {
	removed := 0
	err := Mutate(ctx, s, e, func(items []T) []T {
		kept := items[:0]
		for _, it := range items {
			if drop(it) {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		return kept
	})
	return removed, err
}

// SeedIfEmpty writes records only when e has never been written. It reports
// whether the seed was applied.
func SeedIfEmpty[T any](ctx context.Context, s *Store, e Entity, records []T) (bool, error) {
	has, err := s.Has(ctx, e)
	if err != nil || has {
		return false, err
	}
	return true, Save(ctx, s, e, records)
}

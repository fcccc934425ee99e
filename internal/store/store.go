// Package store is the local fallback store: the last-known-good snapshot of
// every entity collection, kept as one JSON array per entity so it survives
// restarts and network outages.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity names the snapshot key of one collection.
type Entity string

const (
	Users    Entity = "salesTracker_users"
	Products Entity = "salesTracker_products"
	Sales    Entity = "salesTracker_sales"
	Leaves   Entity = "salesTracker_leaves"
)

// Snapshot - one serialized collection
type Snapshot struct {
	Name      string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

// Store serializes every read-modify-write through one mutex so an Append
// never loses a concurrent insert.
type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

// New migrates the snapshot and outbox tables and returns a ready store.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Snapshot{}, &PendingWrite{}); err != nil {
		return nil, fmt.Errorf("migrate fallback store: %w", err)
	}
	return &Store{db: db}, nil
}

// Has reports whether a snapshot was ever written for the entity.
func (s *Store) Has(ctx context.Context, e Entity) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Snapshot{}).Where("name = ?", string(e)).Count(&count).Error
	return count > 0, err
}

// Get decodes the entity snapshot into dst, a pointer to a slice.
// A missing snapshot leaves dst untouched.
func (s *Store) Get(ctx context.Context, e Entity, dst any) error {
	data, found, err := read(s.db.WithContext(ctx), e)
	if err != nil || !found {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", e, err)
	}
	return nil
}

// Put replaces the whole snapshot of an entity.
func (s *Store) Put(ctx context.Context, e Entity, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", e, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return write(s.db.WithContext(ctx), e, data)
}

// Append adds one record at the end of the entity snapshot.
func (s *Store) Append(ctx context.Context, e Entity, record any) error {
	return s.update(ctx, e, func(items []json.RawMessage) ([]json.RawMessage, error) {
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		return append(items, raw), nil
	})
}

// update runs fn over the raw snapshot inside one transaction.
func (s *Store) update(ctx context.Context, e Entity, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateTx(tx, e, fn)
	})
}

// updateTx is update without the lock, for callers already inside a transaction.
func updateTx(tx *gorm.DB, e Entity, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	data, found, err := read(tx, e)
	if err != nil {
		return err
	}
	items := []json.RawMessage{}
	if found {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode snapshot %s: %w", e, err)
		}
	}
	items, err = fn(items)
	if err != nil {
		return fmt.Errorf("update snapshot %s: %w", e, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	out, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return write(tx, e, out)
}

func read(db *gorm.DB, e Entity) ([]byte, bool, error) {
	var snap Snapshot
	err := db.Where("name = ?", string(e)).Take(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w", e, err)
	}
	return []byte(snap.Data), true, nil
}

func write(db *gorm.DB, e Entity, data []byte) error {
	snap := Snapshot{Name: string(e), Data: string(data), UpdatedAt: time.Now()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", e, err)
	}
	return nil
}

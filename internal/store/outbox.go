package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// PendingWrite is a record that reached the local snapshot but has not been
// confirmed by the remote service yet.
type PendingWrite struct {
	ID        uint   `gorm:"primaryKey"`
	Ref       string `gorm:"size:36;uniqueIndex"`
	Entity    Entity `gorm:"size:64;index"`
	RecordKey string `gorm:"size:96;index"` // de-duplication key of the record (salesman|timestamp)
	Owner     string `gorm:"size:32;index"` // salesman the record belongs to
	Path      string `gorm:"size:255"`
	Payload   string `gorm:"type:longtext"`
	Attempts  int
	LastError string `gorm:"size:512"`
	CreatedAt time.Time
}

// Pending lists the outbox in creation order.
func (s *Store) Pending(ctx context.Context) ([]PendingWrite, error) {
	var out []PendingWrite
	err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// PendingKeys returns the record keys of e still waiting for the server.
func (s *Store) PendingKeys(ctx context.Context, e Entity) (map[string]bool, error) {
	return pendingKeys(s.db.WithContext(ctx), e)
}

func pendingKeys(db *gorm.DB, e Entity) (map[string]bool, error) {
	var keys []string
	err := db.Model(&PendingWrite{}).Where("entity = ?", string(e)).Pluck("record_key", &keys).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}

func (s *Store) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&PendingWrite{}).Count(&n).Error
	return n, err
}

// Dequeue removes a confirmed write.
func (s *Store) Dequeue(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Where("ref = ?", ref).Delete(&PendingWrite{}).Error
}

// MarkFailed records another failed delivery attempt.
func (s *Store) MarkFailed(ctx context.Context, ref string, cause error) error {
	msg := cause.Error()
	if len(msg) > 500 {
		msg = msg[:500]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Model(&PendingWrite{}).Where("ref = ?", ref).
		Updates(map[string]any{"attempts": gorm.Expr("attempts + 1"), "last_error": msg}).Error
}

// DiscardOwner drops every pending write of one salesman.
func (s *Store) DiscardOwner(ctx context.Context, owner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.WithContext(ctx).Where("owner = ?", owner).Delete(&PendingWrite{})
	return res.RowsAffected, res.Error
}

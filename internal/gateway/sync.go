package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/store"
)

// inFlightGrace keeps SyncPending away from writes whose first attempt may
// still be running.
const inFlightGrace = time.Minute

// SyncReport summarizes one replay of the outbox.
type SyncReport struct {
	Synced    int `json:"synced"`
	Rejected  int `json:"rejected"`
	Remaining int `json:"remaining"`
}

// PendingCount reports how many writes are still waiting for the service.
func (g *Gateway) PendingCount(ctx context.Context) int64 {
	n, err := g.store.PendingCount(ctx)
	if err != nil {
		log.Printf("⚠️ could not count pending writes: %v", err)
		return 0
	}
	return n
}

// SyncPending replays queued writes oldest first and stops at the first one
// the service cannot take delivery of. Writes the service rejects are dropped
// together with their local copy.
func (g *Gateway) SyncPending(ctx context.Context) (SyncReport, error) {
	g.syncMu.Lock()
	defer g.syncMu.Unlock()

	var report SyncReport
	queue, err := g.store.Pending(ctx)
	if err != nil {
		return report, fmt.Errorf("load pending writes: %w", err)
	}

	for i, w := range queue {
		if w.Attempts == 0 && time.Since(w.CreatedAt) < inFlightGrace {
			report.Remaining++
			continue
		}
		body, err := g.send(ctx, http.MethodPost, w.Path, nil, []byte(w.Payload))
		if errors.Is(err, ErrRemoteUnavailable) {
			if mErr := g.store.MarkFailed(ctx, w.Ref, err); mErr != nil {
				log.Printf("⚠️ could not update pending %s: %v", w.Ref, mErr)
			}
			report.Remaining += len(queue) - i
			return report, err
		}

		if err != nil {
			log.Printf("❌ %s %s rejected by the service: %v", w.Entity, w.RecordKey, err)
			g.settle(ctx, w, nil, false)
			report.Rejected++
		} else {
			g.settle(ctx, w, body, true)
			report.Synced++
		}
		if dErr := g.store.Dequeue(ctx, w.Ref); dErr != nil {
			log.Printf("⚠️ could not clear pending %s: %v", w.Ref, dErr)
		}
	}
	if report.Synced > 0 || report.Rejected > 0 {
		log.Printf("🔄 Sync finished: %d synced, %d rejected, %d remaining", report.Synced, report.Rejected, report.Remaining)
	}
	return report, nil
}

// settle reconciles the local copy of w with the service's answer.
func (g *Gateway) settle(ctx context.Context, w store.PendingWrite, body []byte, accepted bool) {
	var err error
	switch w.Entity {
	case store.Sales:
		err = settleRecord(ctx, g, w, body, accepted, "sale", saleKey)
	case store.Leaves:
		err = settleRecord(ctx, g, w, body, accepted, "leave", leaveKey)
	default:
		log.Printf("⚠️ pending write %s has unknown entity %q", w.Ref, w.Entity)
	}
	if err != nil {
		log.Printf("⚠️ could not reconcile %s %s: %v", w.Entity, w.RecordKey, err)
	}
}

func settleRecord[T models.Scoped](ctx context.Context, g *Gateway, w store.PendingWrite, body []byte, accepted bool, envelope string, keyOf func(T) string) error {
	if !accepted {
		_, err := store.RemoveWhere(ctx, g.store, w.Entity, func(x T) bool { return keyOf(x) == w.RecordKey })
		return err
	}
	canonical, ok := decodeEcho[T](body, envelope)
	if !ok {
		return nil
	}
	return replaceByKey(ctx, g, w.Entity, w.RecordKey, canonical, keyOf)
}

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/store"
)

// WriteResult tells the caller whether a created record reached the server.
type WriteResult[T any] struct {
	Record     T      `json:"record"`
	Synced     bool   `json:"synced"`
	Offline    bool   `json:"offline"`
	PendingRef string `json:"pendingRef,omitempty"`
}

// readThrough fetches path with the filter as query parameters. On success the
// matching slice of the snapshot is replaced by the server's answer and the
// answer is returned as-is. A filtered read leaves records outside its filter
// untouched, and records still waiting in the outbox are kept. Rows that do not
// decode are skipped so one legacy record cannot hide the rest. On any failure
// the snapshot is filtered in memory instead; this path never fails.
func readThrough[T models.Scoped](ctx context.Context, g *Gateway, e store.Entity, path string, f models.Filter, keyOf func(T) string) []T {
	var rows []json.RawMessage
	err := g.do(ctx, http.MethodGet, path, f.Query(), nil, &rows)
	if err == nil {
		remote := make([]T, 0, len(rows))
		skipped := 0
		var lastErr error
		for _, raw := range rows {
			var r T
			if dErr := json.Unmarshal(raw, &r); dErr != nil {
				skipped++
				lastErr = dErr
				continue
			}
			remote = append(remote, r)
		}
		if skipped > 0 {
			log.Printf("⚠️ Skipped %d malformed rows from GET %s: %v", skipped, path, lastErr)
		}
		if mErr := mirror(ctx, g, e, f, remote, keyOf); mErr != nil {
			log.Printf("⚠️ could not mirror %s into the fallback store: %v", e, mErr)
		}
		return remote
	}

	log.Printf("API error on GET %s, serving local snapshot: %v", path, err)
	return readLocal[T](ctx, g, e, f)
}

func readLocal[T models.Scoped](ctx context.Context, g *Gateway, e store.Entity, f models.Filter) []T {
	local, err := store.Load[T](ctx, g.store, e)
	if err != nil {
		log.Printf("❌ fallback snapshot %s unreadable: %v", e, err)
		return []T{}
	}
	out := make([]T, 0, len(local))
	for _, r := range local {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func mirror[T models.Scoped](ctx context.Context, g *Gateway, e store.Entity, f models.Filter, remote []T, keyOf func(T) string) error {
	seen := make(map[string]bool, len(remote))
	for _, r := range remote {
		seen[keyOf(r)] = true
	}
	return store.MutateUnsynced(ctx, g.store, e, func(cur []T, pending map[string]bool) []T {
		out := make([]T, 0, len(cur)+len(remote))
		for _, r := range cur {
			k := keyOf(r)
			if !f.Matches(r) || (pending[k] && !seen[k]) {
				out = append(out, r)
			}
		}
		return append(out, remote...)
	})
}

// writeThrough makes rec durable locally first, then posts it. The server's
// canonical copy, when echoed under envelope, replaces the local stub.
func writeThrough[T any](ctx context.Context, g *Gateway, e store.Entity, path, envelope string, rec T, key, owner string, keyOf func(T) string) (WriteResult[T], error) {
	res := WriteResult[T]{Record: rec}

	payload, err := json.Marshal(rec)
	if err != nil {
		return res, fmt.Errorf("encode %s: %w", e, err)
	}
	ref, err := store.AppendQueued(ctx, g.store, e, rec, store.PendingWrite{RecordKey: key, Owner: owner, Path: path, Payload: string(payload)})
	if err != nil {
		return res, fmt.Errorf("save %s locally: %w", e, err)
	}

	body, err := g.send(ctx, http.MethodPost, path, nil, payload)
	switch {
	case err == nil:
		if canonical, ok := decodeEcho[T](body, envelope); ok {
			res.Record = canonical
			if rErr := replaceByKey(ctx, g, e, key, canonical, keyOf); rErr != nil {
				log.Printf("⚠️ could not store canonical %s %s: %v", envelope, key, rErr)
			}
		}
		if dErr := g.store.Dequeue(ctx, ref); dErr != nil {
			log.Printf("⚠️ could not clear pending %s %s: %v", envelope, ref, dErr)
		}
		res.Synced = true
		return res, nil

	case !errors.Is(err, ErrRemoteUnavailable):
		// the service will never take this record; do not keep a phantom copy
		if _, rErr := store.RemoveWhere(ctx, g.store, e, func(x T) bool { return keyOf(x) == key }); rErr != nil {
			log.Printf("⚠️ could not roll back rejected %s %s: %v", envelope, key, rErr)
		}
		_ = g.store.Dequeue(ctx, ref)
		return WriteResult[T]{}, err
	}

	log.Printf("API error on POST %s, %s %s kept locally: %v", path, envelope, key, err)
	if mErr := g.store.MarkFailed(ctx, ref, err); mErr != nil {
		log.Printf("⚠️ could not update pending %s: %v", ref, mErr)
	}
	res.Offline = true
	res.PendingRef = ref
	return res, err
}

// decodeEcho reads {"<envelope>": {...}} or a bare record.
func decodeEcho[T any](body []byte, envelope string) (T, bool) {
	var zero T
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return zero, false
	}
	raw, ok := wrapped[envelope]
	if !ok {
		_, hasID := wrapped["id"]
		_, hasTimestamp := wrapped["timestamp"]
		if !hasID && !hasTimestamp {
			return zero, false
		}
		raw = body
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

func replaceByKey[T any](ctx context.Context, g *Gateway, e store.Entity, key string, canonical T, keyOf func(T) string) error {
	return store.Mutate(ctx, g.store, e, func(cur []T) []T {
		for i := range cur {
			if keyOf(cur[i]) == key {
				cur[i] = canonical
				return cur
			}
		}
		return append(cur, canonical)
	})
}

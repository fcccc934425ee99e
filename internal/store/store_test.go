package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-sales-agent/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	SalesmanID string `json:"salesmanId"`
	Timestamp  string `json:"timestamp"`
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	// unique in-memory database per test
	db, err := database.Connect(database.Options{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	s, err := New(db)
	require.NoError(t, err)
	return s
}

func TestLoadMissingSnapshotIsEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rows, err := Load[row](ctx, s, Sales)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	has, err := s.Has(ctx, Sales)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSaveOverwritesAndAppendKeepsOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, Save(ctx, s, Sales, []row{{"SM001", "a"}, {"SM002", "b"}}))
	require.NoError(t, Save(ctx, s, Sales, []row{{"SM003", "c"}}))
	require.NoError(t, AppendRecord(ctx, s, Sales, row{"SM001", "d"}))
	require.NoError(t, AppendRecord(ctx, s, Sales, row{"SM001", "e"}))

	rows, err := Load[row](ctx, s, Sales)
	require.NoError(t, err)
	assert.Equal(t, []row{{"SM003", "c"}, {"SM001", "d"}, {"SM001", "e"}}, rows)

	// other entities are independent
	leaves, err := Load[row](ctx, s, Leaves)
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, AppendRecord(ctx, s, Leaves, row{SalesmanID: "SM001", Timestamp: string(rune('a' + i))}))
		}(i)
	}
	wg.Wait()

	rows, err := Load[row](ctx, s, Leaves)
	require.NoError(t, err)
	assert.Len(t, rows, 20)
}

func TestRemoveWhere(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, Save(ctx, s, Sales, []row{{"SM003", "a"}, {"SM001", "b"}, {"SM003", "c"}}))

	n, err := RemoveWhere(ctx, s, Sales, func(r row) bool { return r.SalesmanID == "SM003" })
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := Load[row](ctx, s, Sales)
	require.NoError(t, err)
	assert.Equal(t, []row{{"SM001", "b"}}, rows)
}

func TestSeedIfEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	applied, err := SeedIfEmpty(ctx, s, Users, []row{{"SM001", "seed"}})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = SeedIfEmpty(ctx, s, Users, []row{{"SM999", "again"}})
	require.NoError(t, err)
	assert.False(t, applied)

	// an explicitly emptied snapshot is not reseeded
	require.NoError(t, Save[row](ctx, s, Users, nil))
	applied, err = SeedIfEmpty(ctx, s, Users, []row{{"SM999", "again"}})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestOutbox(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ref1, err := AppendQueued(ctx, s, Sales, row{"SM001", "t1"}, PendingWrite{RecordKey: "t1", Owner: "SM001", Path: "/api/sales", Payload: "{}"})
	require.NoError(t, err)
	ref2, err := AppendQueued(ctx, s, Leaves, row{"SM002", "t2"}, PendingWrite{RecordKey: "t2", Owner: "SM002", Path: "/api/leaves", Payload: "{}"})
	require.NoError(t, err)
	assert.NotEqual(t, ref1, ref2)

	keys, err := s.PendingKeys(ctx, Sales)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"t1": true}, keys)

	require.NoError(t, s.MarkFailed(ctx, ref1, errors.New("connection refused")))
	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ref1, pending[0].Ref)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "connection refused", pending[0].LastError)

	require.NoError(t, s.Dequeue(ctx, ref1))
	n, err := s.DiscardOwner(ctx, "SM002")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAppendQueuedWritesRecordAndOutboxTogether(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ref, err := AppendQueued(ctx, s, Sales, row{"SM001", "t1"}, PendingWrite{RecordKey: "SM001|t1", Owner: "SM001", Path: "/api/sales", Payload: "{}"})
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	rows, err := Load[row](ctx, s, Sales)
	require.NoError(t, err)
	assert.Equal(t, []row{{"SM001", "t1"}}, rows)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, Sales, pending[0].Entity)
	assert.Equal(t, ref, pending[0].Ref)
}

func TestMutateUnsyncedSeesQueuedKeys(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, Save(ctx, s, Sales, []row{{"SM002", "old"}}))
	_, err := AppendQueued(ctx, s, Sales, row{"SM001", "new"}, PendingWrite{RecordKey: "new", Owner: "SM001", Path: "/api/sales", Payload: "{}"})
	require.NoError(t, err)

	// drop everything that is not waiting for the service
	err = MutateUnsynced(ctx, s, Sales, func(cur []row, pending map[string]bool) []row {
		kept := cur[:0]
		for _, r := range cur {
			if pending[r.Timestamp] {
				kept = append(kept, r)
			}
		}
		return kept
	})
	require.NoError(t, err)

	rows, err := Load[row](ctx, s, Sales)
	require.NoError(t, err)
	assert.Equal(t, []row{{"SM001", "new"}}, rows)
}

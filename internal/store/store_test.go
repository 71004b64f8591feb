package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories runs every conformance test against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "pos.db"))
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, s.Close()) })
			return s
		},
	}
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	sort.Strings(out)
	return out
}

func TestStore_ReplaceAll(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			require.NoError(t, s.ReplaceAll(ctx, TableUsers, []Record{
				{ID: "u1", Data: []byte(`{"id":"u1"}`)},
				{ID: "u2", Data: []byte(`{"id":"u2"}`)},
			}))
			require.NoError(t, s.ReplaceAll(ctx, TableUsers, []Record{
				{ID: "u3", Data: []byte(`{"id":"u3"}`)},
			}))

			got, err := s.GetAll(ctx, TableUsers)
			require.NoError(t, err)
			assert.Equal(t, []string{"u3"}, ids(got))

			require.NoError(t, s.ReplaceAll(ctx, TableUsers, nil))
			got, err = s.GetAll(ctx, TableUsers)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStore_UpsertIdempotent(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				require.NoError(t, s.Upsert(ctx, TableOfflineOrders, Record{ID: "A", Data: []byte(`{"v":1}`)}))
			}
			require.NoError(t, s.Upsert(ctx, TableOfflineOrders, Record{ID: "A", Data: []byte(`{"v":2}`)}))

			got, err := s.GetAll(ctx, TableOfflineOrders)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.JSONEq(t, `{"v":2}`, string(got[0].Data))

			rec, err := s.Get(ctx, TableOfflineOrders, "A")
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.JSONEq(t, `{"v":2}`, string(rec.Data))
		})
	}
}

func TestStore_DeleteAndGetMissing(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			require.NoError(t, s.Delete(ctx, TableExpenses, "nope"))

			require.NoError(t, s.Upsert(ctx, TableExpenses, Record{ID: "e1", Data: []byte(`{}`)}))
			require.NoError(t, s.Delete(ctx, TableExpenses, "e1"))

			rec, err := s.Get(ctx, TableExpenses, "e1")
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestStore_TablesAreIndependent(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			require.NoError(t, s.Upsert(ctx, TableOfflineOrders, Record{ID: "A", Data: []byte(`{}`)}))
			require.NoError(t, s.ReplaceAll(ctx, TableSalesHistory, nil))

			got, err := s.GetAll(ctx, TableOfflineOrders)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestStore_UnknownTable(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			_, err := s.GetAll(context.Background(), Table("drop_table"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStorage))
		})
	}
}

func TestStore_SyncRuns(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

			first := &SyncRun{ID: "r1", Kind: RunRefresh, StartedAt: base, Status: "running"}
			second := &SyncRun{ID: "r2", Kind: RunDrain, StartedAt: base.Add(time.Minute), Status: "running"}
			require.NoError(t, s.CreateSyncRun(ctx, first))
			require.NoError(t, s.CreateSyncRun(ctx, second))

			done := base.Add(2 * time.Minute)
			second.CompletedAt = &done
			second.Status = "completed"
			second.Attempted = 3
			second.Committed = 2
			second.Failed = 1
			second.Error = "1 transaction still queued"
			require.NoError(t, s.UpdateSyncRun(ctx, second))

			runs, err := s.ListSyncRuns(ctx, 10, 0)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "r2", runs[0].ID)
			assert.Equal(t, RunDrain, runs[0].Kind)
			assert.Equal(t, 2, runs[0].Committed)
			assert.Equal(t, "1 transaction still queued", runs[0].Error)
			require.NotNil(t, runs[0].CompletedAt)
			assert.True(t, done.Equal(*runs[0].CompletedAt))
			assert.Nil(t, runs[1].CompletedAt)

			runs, err = s.ListSyncRuns(ctx, 1, 1)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, "r1", runs[0].ID)
		})
	}
}

func TestStore_SyncRunsWithoutLimit(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
			for i, id := range []string{"r1", "r2", "r3"} {
				run := &SyncRun{ID: id, Kind: RunRefresh, StartedAt: base.Add(time.Duration(i) * time.Minute), Status: "completed"}
				require.NoError(t, s.CreateSyncRun(ctx, run))
			}

			runs, err := s.ListSyncRuns(ctx, 0, 0)
			require.NoError(t, err)
			assert.Len(t, runs, 3)

			runs, err = s.ListSyncRuns(ctx, 0, 1)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "r2", runs[0].ID)

			runs, err = s.ListSyncRuns(ctx, -1, -1)
			require.NoError(t, err)
			assert.Len(t, runs, 3)
		})
	}
}

func TestTypedHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	table := 4
	tx := SaleTransaction{
		ID:            "TD-000001",
		Date:          "2025-03-01T08:00:00Z",
		Total:         1800,
		PaymentMethod: PaymentCash,
		Status:        StatusPaid,
		CashierName:   "John Cashier",
		TableNumber:   &table,
		OrderType:     OrderDineIn,
		Items:         []LineItem{{ID: "bf_eng", Name: "English Breakfast", Quantity: 2, Price: 900}},
	}
	require.NoError(t, Put(ctx, s, TableSalesHistory, tx))

	got, err := ListOf[SaleTransaction](ctx, s, TableSalesHistory)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tx, got[0])

	require.NoError(t, ReplaceAllOf(ctx, s, TableUsers, []User{{ID: "u1", Name: "Admin User", Role: RoleAdmin}}))
	users, err := ListOf[User](ctx, s, TableUsers)
	require.NoError(t, err)
	assert.Equal(t, []User{{ID: "u1", Name: "Admin User", Role: RoleAdmin}}, users)
}

func TestTransactionRowFormat(t *testing.T) {
	rec, err := Encode(SaleTransaction{
		ID:            "A",
		Date:          "2025-03-01T08:00:00Z",
		Total:         500,
		PaymentMethod: PaymentPayLater,
		Status:        StatusPending,
		CashierName:   "Sarah Waiter",
		Items:         []LineItem{{ID: "bf_oat", Name: "Steel-Cut Oatmeal", Quantity: 1, Price: 500}},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "A",
		"date": "2025-03-01T08:00:00Z",
		"total": 500,
		"paymentMethod": "Pay Later",
		"status": "Pending",
		"cashierName": "Sarah Waiter",
		"items": [{"id": "bf_oat", "name": "Steel-Cut Oatmeal", "quantity": 1, "price": 500}]
	}`, string(rec.Data))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, TableOfflineOrders, Record{ID: "A", Data: []byte(`{"id":"A"}`)}))
	require.NoError(t, s.Close())

	// Migrations must not re-run against an existing file.
	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetAll(ctx, TableOfflineOrders)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(got))
}

package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/store"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Prefer string
	APIKey string
	Auth   string
	Body   string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Prefer: r.Header.Get("Prefer"),
		APIKey: r.Header.Get("apikey"),
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*PostgRESTClient, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{handler: handler}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	c, err := NewPostgRESTClient(config.PostgRESTConfig{URL: srv.URL + "/", APIKey: "anon-key", Timeout: "2s"})
	require.NoError(t, err)
	return c, backend
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewPostgRESTClient_RequiresURL(t *testing.T) {
	_, err := NewPostgRESTClient(config.PostgRESTConfig{})
	assert.Error(t, err)
}

func TestPostgREST_ListTransactionsMapping(t *testing.T) {
	c, backend := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{
				"id":             "TD-000001",
				"date":           "2025-03-01T08:00:00Z",
				"total":          1800,
				"payment_method": "M-Pesa",
				"status":         nil,
				"cashier_name":   "John Cashier",
				"table_number":   4,
				"order_type":     "Dine-in",
				"items":          []map[string]any{{"id": "bf_eng", "name": "English Breakfast", "quantity": 2, "price": 900}},
				"updated_by":     "Admin User",
				"updated_at":     "2025-03-01T09:00:00Z",
			},
		})
	})

	txs, err := c.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, "TD-000001", tx.ID)
	assert.Equal(t, store.PaymentMPesa, tx.PaymentMethod)
	assert.Equal(t, store.StatusPaid, tx.Status, "missing status defaults to Paid")
	assert.Equal(t, "John Cashier", tx.CashierName)
	require.NotNil(t, tx.TableNumber)
	assert.Equal(t, 4, *tx.TableNumber)
	assert.Equal(t, store.OrderDineIn, tx.OrderType)
	assert.Equal(t, "Admin User", tx.UpdatedBy)
	require.Len(t, tx.Items, 1)
	assert.Equal(t, 2, tx.Items[0].Quantity)

	req := backend.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/transactions", req.Path)
	assert.Contains(t, req.Query, "order=date.desc")
	assert.Contains(t, req.Query, "limit=1000")
	assert.Contains(t, req.Query, "select=%2A")
	assert.Equal(t, "anon-key", req.APIKey)
	assert.Equal(t, "Bearer anon-key", req.Auth)
}

func TestPostgREST_ListMenuItemsThreshold(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "bf_eng", "name": "English Breakfast", "price": 900, "stock": 20, "low_stock_threshold": 5},
			{"id": "cf_cap", "name": "Cappuccino", "price": 300, "stock": 50, "lowStockThreshold": 10},
		})
	})

	items, err := c.ListMenuItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 5, items[0].LowStockThreshold)
	assert.Equal(t, 10, items[1].LowStockThreshold)
}

func TestPostgREST_MissingTableIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{"not found", http.StatusNotFound, map[string]string{"message": "not found"}},
		{"undefined table", http.StatusBadRequest, map[string]string{"code": "42P01", "message": `relation "public.audit_logs" does not exist`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			logs, err := c.ListAuditLogs(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, logs)
			assert.Empty(t, logs)
		})
	}
}

func TestPostgREST_ServerErrorIsTransport(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "XX000", "message": "boom"})
	})

	_, err := c.ListUsers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "XX000", se.Code)

	err = c.CommitTransaction(context.Background(), store.SaleTransaction{ID: "A"})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestPostgREST_UnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewPostgRESTClient(config.PostgRESTConfig{URL: srv.URL, Timeout: "1s"})
	require.NoError(t, err)

	_, err = c.ListInventory(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrTransport)
}

func TestPostgREST_CommitTransactionUpserts(t *testing.T) {
	c, backend := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	table := 2
	err := c.CommitTransaction(context.Background(), store.SaleTransaction{
		ID:            "A",
		Date:          "2025-03-01T08:00:00Z",
		Total:         500,
		PaymentMethod: store.PaymentPayLater,
		Status:        store.StatusPending,
		CashierName:   "Sarah Waiter",
		TableNumber:   &table,
		Items:         []store.LineItem{{ID: "bf_oat", Name: "Steel-Cut Oatmeal", Quantity: 1, Price: 500}},
	})
	require.NoError(t, err)

	req := backend.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/v1/transactions", req.Path)
	assert.Contains(t, req.Prefer, "resolution=merge-duplicates")
	assert.JSONEq(t, `{
		"id": "A",
		"date": "2025-03-01T08:00:00Z",
		"total": 500,
		"payment_method": "Pay Later",
		"status": "Pending",
		"cashier_name": "Sarah Waiter",
		"table_number": 2,
		"order_type": null,
		"items": [{"id": "bf_oat", "name": "Steel-Cut Oatmeal", "quantity": 1, "price": 500}],
		"updated_by": null,
		"updated_at": null
	}`, req.Body)
}

func TestPostgREST_UpdateTransactionStatus(t *testing.T) {
	c, backend := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "A"}})
	})

	err := c.UpdateTransactionStatus(context.Background(), "A", store.StatusPaid, store.PaymentCard, "Admin User", "2025-03-01T09:00:00Z")
	require.NoError(t, err)

	req := backend.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "id=eq.A&select=id", req.Query)
	assert.Equal(t, "return=representation", req.Prefer)
	assert.JSONEq(t, `{"status":"Paid","payment_method":"Card","updated_by":"Admin User","updated_at":"2025-03-01T09:00:00Z"}`, req.Body)
}

func TestPostgREST_UpdateTransactionStatusNoMatchingRow(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty array", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{})
		}},
		{"no content", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)
			err := c.UpdateTransactionStatus(context.Background(), "ghost", store.StatusPaid, store.PaymentCash, "Admin User", "2025-03-01T09:00:00Z")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransport)
		})
	}
}

func TestPostgREST_SaveAndDeleteEntity(t *testing.T) {
	c, backend := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, c.SaveEntity(ctx, store.TableInventory, store.InventoryItem{
		ID: "inv_eggs", Name: "Eggs", Quantity: 120, Unit: "pcs", Category: "Dairy", LowStockThreshold: 24,
	}))
	req := backend.last(t)
	assert.Equal(t, "/rest/v1/inventory", req.Path)
	assert.JSONEq(t, `{"id":"inv_eggs","name":"Eggs","quantity":120,"unit":"pcs","category":"Dairy","low_stock_threshold":24}`, req.Body)

	require.NoError(t, c.SaveEntity(ctx, store.TableExpenses, store.Expense{
		ID: "e1", Date: "2025-03-01", Description: "Gas refill", Amount: 3500, Category: "Utilities", RecordedBy: "Admin User",
	}))
	req = backend.last(t)
	assert.Contains(t, req.Body, `"recorded_by":"Admin User"`)

	require.NoError(t, c.DeleteEntity(ctx, store.TableMenuItems, "bf_eng"))
	req = backend.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/rest/v1/menu_items", req.Path)
	assert.Equal(t, "id=eq.bf_eng", req.Query)

	err := c.DeleteEntity(ctx, store.TableOfflineOrders, "A")
	assert.ErrorIs(t, err, ErrUnsupportedTable)
}

func TestPostgREST_Ping(t *testing.T) {
	status := http.StatusOK
	var mu sync.Mutex
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.WriteHeader(status)
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, c.Ping(ctx))

	mu.Lock()
	status = http.StatusServiceUnavailable
	mu.Unlock()
	assert.ErrorIs(t, c.Ping(ctx), ErrTransport)

	mu.Lock()
	status = http.StatusUnauthorized
	mu.Unlock()
	assert.ErrorIs(t, c.Ping(ctx), ErrTransport)
}

func TestRemoteTable(t *testing.T) {
	name, err := RemoteTable(store.TableSalesHistory)
	require.NoError(t, err)
	assert.Equal(t, "transactions", name)

	name, err = RemoteTable(store.TableMenuItems)
	require.NoError(t, err)
	assert.Equal(t, "menu_items", name)

	_, err = RemoteTable(store.TableOfflineOrders)
	assert.ErrorIs(t, err, ErrUnsupportedTable)
}

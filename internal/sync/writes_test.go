package sync

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync-service/internal/store"
)

var cashier = store.User{ID: "u2", Name: "John Cashier", Role: store.RoleCashier}

func inventoryQty(t *testing.T, d Data, id string) float64 {
	t.Helper()
	for _, inv := range d.Inventory {
		if inv.ID == id {
			return inv.Quantity
		}
	}
	t.Fatalf("inventory item %s not found", id)
	return 0
}

func TestCheckout_OnlineCommitsAndDeducts(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.o.Refresh(ctx)

	tx, err := h.o.Checkout(ctx, CheckoutRequest{
		Items:         []CartLine{{ID: "bf_eng", Quantity: 2, Price: 1}},
		PaymentMethod: store.PaymentCash,
		OrderType:     store.OrderDineIn,
		Cashier:       cashier,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tx.ID, "TD-"))
	assert.Len(t, tx.ID, 9)
	assert.Equal(t, store.StatusPaid, tx.Status)
	assert.Equal(t, 1800.0, tx.Total, "menu price wins over cart price")
	assert.Equal(t, "2025-03-01T08:00:00.000Z", tx.Date)
	assert.Equal(t, "English Breakfast", tx.Items[0].Name)

	assert.Equal(t, 1, h.gw.commitCount())
	assert.Empty(t, h.pending(t))

	data := h.o.Data()
	assert.InDelta(t, 9.88, inventoryQty(t, data, "inv_eggs"), 1e-9)
	assert.InDelta(t, 19.8, inventoryQty(t, data, "inv_milk_500"), 1e-9)

	local, err := store.ListOf[store.InventoryItem](ctx, h.local, store.TableInventory)
	require.NoError(t, err)
	assert.InDelta(t, 9.88, inventoryQty(t, Data{Inventory: local}, "inv_eggs"), 1e-9)

	require.NotEmpty(t, data.AuditLogs)
	assert.Equal(t, store.ActionSale, data.AuditLogs[0].Action)
	assert.Equal(t, "Order "+tx.ID+" finalized.", data.AuditLogs[0].Details)
	assert.Equal(t, cashier.ID, data.AuditLogs[0].UserID)

	tables := map[store.Table]int{}
	for _, s := range h.gw.saved {
		tables[s.Table]++
	}
	assert.Equal(t, 2, tables[store.TableInventory])
	assert.Equal(t, 1, tables[store.TableAuditLogs])
}

func TestCheckout_PayLaterOfflineQueuesPending(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.o.Refresh(ctx)

	tx, err := h.o.Checkout(ctx, CheckoutRequest{
		Items:         []CartLine{{ID: "bf_eng", Quantity: 1}},
		PaymentMethod: store.PaymentPayLater,
		Cashier:       cashier,
	})
	require.NoError(t, err)

	assert.Equal(t, store.StatusPending, tx.Status)
	assert.Zero(t, h.gw.calls.Load())
	left := h.pending(t)
	require.Len(t, left, 1)
	assert.Equal(t, tx.ID, left[0].ID)
	assert.Equal(t, 1, h.o.Snapshot(ctx).PendingCount)
}

func TestCheckout_UniqueIDsAndEditing(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	h.o.Refresh(ctx)

	req := CheckoutRequest{
		Items:         []CartLine{{ID: "bf_eng", Quantity: 1}},
		PaymentMethod: store.PaymentCash,
		Cashier:       cashier,
	}
	first, err := h.o.Checkout(ctx, req)
	require.NoError(t, err)
	second, err := h.o.Checkout(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	req.EditingID = first.ID
	req.Items = []CartLine{{ID: "bf_eng", Quantity: 3}}
	edited, err := h.o.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, edited.ID)

	left := h.pending(t)
	require.Len(t, left, 2)
	for _, tx := range left {
		if tx.ID == first.ID {
			assert.Equal(t, 3, tx.Items[0].Quantity)
		}
	}
}

func TestCheckout_OffMenuItemUsesCartDetails(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	tx, err := h.o.Checkout(ctx, CheckoutRequest{
		Items:         []CartLine{{ID: "custom_cake", Name: "Birthday Cake", Quantity: 1, Price: 2500}},
		PaymentMethod: store.PaymentCard,
		Cashier:       cashier,
	})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, tx.Total)
	assert.Equal(t, "Birthday Cake", tx.Items[0].Name)
}

func TestCheckout_Validation(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CheckoutRequest
		want error
	}{
		{"empty cart", CheckoutRequest{PaymentMethod: store.PaymentCash, Cashier: cashier}, ErrEmptyCart},
		{"bad payment", CheckoutRequest{Items: []CartLine{{ID: "bf_eng", Quantity: 1}}, PaymentMethod: "Barter", Cashier: cashier}, ErrInvalidPayment},
		{"no cashier", CheckoutRequest{Items: []CartLine{{ID: "bf_eng", Quantity: 1}}, PaymentMethod: store.PaymentCash}, ErrMissingActor},
		{"zero quantity", CheckoutRequest{Items: []CartLine{{ID: "bf_eng", Name: "English Breakfast", Quantity: 0}}, PaymentMethod: store.PaymentCash, Cashier: cashier}, ErrInvalidQuantity},
		{"unknown item", CheckoutRequest{Items: []CartLine{{ID: "ghost", Quantity: 1}}, PaymentMethod: store.PaymentCash, Cashier: cashier}, ErrUnknownMenuItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.o.Checkout(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, h.gw.calls.Load())
}

func TestUpdateStatus_OnlinePatchesRemote(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.o.Commit(ctx, sale("A", "2025-03-01T07:00:00.000Z", store.StatusPending))
	require.NoError(t, err)

	tx, err := h.o.UpdateStatus(ctx, "A", store.StatusPaid, store.PaymentMPesa, "Admin User")
	require.NoError(t, err)

	assert.Equal(t, store.StatusPaid, tx.Status)
	assert.Equal(t, store.PaymentMPesa, tx.PaymentMethod)
	assert.Equal(t, "Admin User", tx.UpdatedBy)
	assert.Equal(t, "2025-03-01T08:00:00.000Z", tx.UpdatedAt)
	assert.Equal(t, []string{"A"}, h.gw.statusUpdates)
	assert.Empty(t, h.pending(t))

	data := h.o.Data()
	require.Len(t, data.Sales, 1)
	assert.Equal(t, store.StatusPaid, data.Sales[0].Status)
}

func TestUpdateStatus_RemoteMissingRowQueuesFullTransaction(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, h.local, store.TableSalesHistory, sale("A", "2025-03-01T07:00:00.000Z", store.StatusPending)))

	_, err := h.o.UpdateStatus(ctx, "A", store.StatusPaid, store.PaymentCash, "Admin User")
	require.NoError(t, err)

	left := h.pending(t)
	require.Len(t, left, 1)
	assert.Equal(t, store.StatusPaid, left[0].Status)
	assert.Len(t, left[0].Items, 1)
}

func TestUpdateStatus_OfflineQueues(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	_, err := h.o.Commit(ctx, sale("A", "2025-03-01T07:00:00.000Z", store.StatusPending))
	require.NoError(t, err)

	_, err = h.o.UpdateStatus(ctx, "A", store.StatusPaid, store.PaymentCash, "Admin User")
	require.NoError(t, err)

	assert.Zero(t, h.gw.calls.Load())
	left := h.pending(t)
	require.Len(t, left, 1)
	assert.Equal(t, store.StatusPaid, left[0].Status)
	assert.Equal(t, "Admin User", left[0].UpdatedBy)
}

func TestUpdateStatus_Errors(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.o.UpdateStatus(ctx, "nope", store.StatusPaid, store.PaymentCash, "Admin User")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = h.o.UpdateStatus(ctx, "A", "Void", store.PaymentCash, "Admin User")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = h.o.UpdateStatus(ctx, "A", store.StatusPaid, "IOU", "Admin User")
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = h.o.UpdateStatus(ctx, "A", store.StatusPaid, store.PaymentCash, "")
	assert.ErrorIs(t, err, ErrMissingActor)
}

func TestSaveEntity_LocalRemoteAndMemory(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	item := store.MenuItem{ID: "mn_new", Name: "Goat Stew", Price: 1200, Category: "Mains"}
	require.NoError(t, h.o.SaveEntity(ctx, store.TableMenuItems, item))

	rec, err := h.local.Get(ctx, store.TableMenuItems, "mn_new")
	require.NoError(t, err)
	require.NotNil(t, rec)
	got, err := store.Decode[store.MenuItem](*rec)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	require.Len(t, h.gw.saved, 1)
	assert.Equal(t, store.TableMenuItems, h.gw.saved[0].Table)
	assert.Contains(t, h.o.Data().MenuItems, item)

	item.Price = 1300
	require.NoError(t, h.o.SaveEntity(ctx, store.TableMenuItems, item))
	assert.Len(t, h.o.Data().MenuItems, 1)
	assert.Equal(t, 1300.0, h.o.Data().MenuItems[0].Price)
}

func TestSaveEntity_OfflineNeverQueues(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	require.NoError(t, h.o.SaveEntity(ctx, store.TableExpenses, store.Expense{ID: "e1", Description: "Charcoal", Amount: 300}))
	assert.Zero(t, h.gw.calls.Load())
	assert.Empty(t, h.pending(t))
	assert.Len(t, h.o.Data().Expenses, 1)
}

func TestSaveEntity_Validation(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	err := h.o.SaveEntity(ctx, store.TableUsers, store.MenuItem{ID: "x"})
	assert.ErrorIs(t, err, ErrEntityMismatch)

	err = h.o.SaveEntity(ctx, store.TableUsers, store.User{})
	assert.ErrorIs(t, err, ErrMissingID)

	err = h.o.SaveEntity(ctx, store.TableSalesHistory, sale("A", "2025-03-01T07:00:00.000Z", store.StatusPaid))
	assert.ErrorIs(t, err, ErrUnsupportedTable)

	assert.ErrorIs(t, h.o.DeleteEntity(ctx, store.TableOfflineOrders, "A"), ErrUnsupportedTable)
	assert.ErrorIs(t, h.o.DeleteEntity(ctx, store.TableUsers, ""), ErrMissingID)
	assert.Zero(t, h.gw.calls.Load())
}

func TestDeleteEntity(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	require.NoError(t, h.o.SaveEntity(ctx, store.TableUsers, store.User{ID: "u7", Name: "New Waiter"}))
	require.NoError(t, h.o.DeleteEntity(ctx, store.TableUsers, "u7"))

	rec, err := h.local.Get(ctx, store.TableUsers, "u7")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Empty(t, h.o.Data().Users)
	assert.Equal(t, []string{"users/u7"}, h.gw.deleted)
}

func TestLogActivity_NewestFirst(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	first := h.o.LogActivity(ctx, cashier, store.ActionLogin, "Logged in", "")
	second := h.o.LogActivity(ctx, cashier, store.ActionClearCart, "Cleared cart", "medium")

	assert.True(t, strings.HasPrefix(first.ID, "log-"))
	assert.Equal(t, "low", first.Severity)
	logs := h.o.Data().AuditLogs
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID)

	local, err := store.ListOf[store.AuditLog](ctx, h.local, store.TableAuditLogs)
	require.NoError(t, err)
	assert.Len(t, local, 2)
}

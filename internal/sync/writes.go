package sync

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store"
)

// isoMillis matches the millisecond UTC timestamps the terminal has always written.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func (o *Orchestrator) timestamp() string {
	return o.now().UTC().Format(isoMillis)
}

// writeTransaction is the sale write path: apply in memory, persist the
// local copy, then commit directly when reachable or queue otherwise. A
// transaction that already has a queued version is queued again, replacing
// it. It reports whether the remote accepted the write.
func (o *Orchestrator) writeTransaction(ctx context.Context, tx store.SaleTransaction, commit func(context.Context) error) bool {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	o.edit(func(d *Data) {
		d.Sales = upsertByID(d.Sales, tx)
		sortSales(d.Sales)
	})
	if err := store.Put(ctx, o.local, store.TableSalesHistory, tx); err != nil {
		logger.Log.Warn("Failed to persist sale locally", zap.String("id", tx.ID), zap.Error(err))
	}

	queued, err := o.queue.Contains(ctx, tx.ID)
	if err != nil {
		logger.Log.Warn("Failed to check pending queue", zap.String("id", tx.ID), zap.Error(err))
		queued = true
	}

	if !queued && o.conn.CurrentlyReachable() {
		err := commit(ctx)
		if err == nil {
			o.publish(ctx)
			return true
		}
		logger.Log.Warn("Remote commit failed, queuing transaction", zap.String("id", tx.ID), zap.Error(err))
	}

	if err := o.queue.Enqueue(ctx, tx); err != nil {
		logger.Log.Error("Failed to queue transaction durably", zap.String("id", tx.ID), zap.Error(err))
	}
	o.publish(ctx)
	return false
}

// Commit runs the write path for a caller-built transaction.
func (o *Orchestrator) Commit(ctx context.Context, tx store.SaleTransaction) (bool, error) {
	if tx.ID == "" {
		return false, ErrMissingID
	}
	if !tx.PaymentMethod.Valid() {
		return false, ErrInvalidPayment
	}
	if !tx.Status.Valid() {
		return false, ErrInvalidStatus
	}
	return o.writeTransaction(ctx, tx, func(ctx context.Context) error {
		return o.remote.CommitTransaction(ctx, tx)
	}), nil
}

// Checkout turns a cart into a sale, deducts recipe ingredients from
// inventory, runs the write path and records a SALE audit entry.
func (o *Orchestrator) Checkout(ctx context.Context, req CheckoutRequest) (store.SaleTransaction, error) {
	if len(req.Items) == 0 {
		return store.SaleTransaction{}, ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return store.SaleTransaction{}, ErrInvalidPayment
	}
	if req.Cashier.Name == "" {
		return store.SaleTransaction{}, ErrMissingActor
	}

	data := o.Data()
	menu := make(map[string]store.MenuItem, len(data.MenuItems))
	for _, m := range data.MenuItems {
		menu[m.ID] = m
	}

	lines := make([]store.LineItem, 0, len(req.Items))
	var total float64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return store.SaleTransaction{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ID)
		}
		line := store.LineItem{ID: item.ID, Name: item.Name, Quantity: item.Quantity, Price: item.Price}
		if m, ok := menu[item.ID]; ok {
			line.Name, line.Price = m.Name, m.Price
		} else if item.Name == "" {
			return store.SaleTransaction{}, fmt.Errorf("%w: %s", ErrUnknownMenuItem, item.ID)
		}
		total += line.Price * float64(line.Quantity)
		lines = append(lines, line)
	}

	id := req.EditingID
	if id == "" {
		id = o.newOrderID(data.Sales)
	}
	status := store.StatusPaid
	if req.PaymentMethod == store.PaymentPayLater {
		status = store.StatusPending
	}

	tx := store.SaleTransaction{
		ID:            id,
		Date:          o.timestamp(),
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		CashierName:   req.Cashier.Name,
		TableNumber:   req.TableNumber,
		OrderType:     req.OrderType,
		Items:         lines,
	}

	o.deductInventory(ctx, lines)
	o.writeTransaction(ctx, tx, func(ctx context.Context) error {
		return o.remote.CommitTransaction(ctx, tx)
	})
	o.LogActivity(ctx, req.Cashier, store.ActionSale, fmt.Sprintf("Order %s finalized.", id), "low")
	return tx, nil
}

// newOrderID mints TD- plus the last six digits of the unix millisecond
// clock, stepping forward past ids already in use.
func (o *Orchestrator) newOrderID(sales []store.SaleTransaction) string {
	used := make(map[string]bool, len(sales))
	for _, tx := range sales {
		used[tx.ID] = true
	}
	ms := o.now().UnixMilli()
	for {
		digits := strconv.FormatInt(ms, 10)
		if len(digits) > 6 {
			digits = digits[len(digits)-6:]
		}
		id := "TD-" + digits
		if !used[id] {
			return id
		}
		ms++
	}
}

// deductInventory draws recipe ingredients for each sold line. Items without
// a recipe, or ingredients not in inventory, are skipped.
func (o *Orchestrator) deductInventory(ctx context.Context, lines []store.LineItem) {
	o.mu.Lock()
	index := make(map[string]int, len(o.data.Inventory))
	for i, inv := range o.data.Inventory {
		index[inv.ID] = i
	}
	inventory := append([]store.InventoryItem(nil), o.data.Inventory...)
	touched := map[string]bool{}
	for _, line := range lines {
		for _, ing := range kitchenRecipes[line.ID] {
			i, ok := index[ing.InventoryID]
			if !ok {
				continue
			}
			inventory[i].Quantity -= ing.Amount * float64(line.Quantity)
			touched[ing.InventoryID] = true
		}
	}
	var changed []store.InventoryItem
	for _, inv := range inventory {
		if touched[inv.ID] {
			changed = append(changed, inv)
		}
	}
	o.data.Inventory = inventory
	// Replays over refreshed data set the new quantities rather than subtract again.
	if o.refreshing && len(changed) > 0 {
		o.edits = append(o.edits, func(d *Data) {
			for _, item := range changed {
				d.Inventory = upsertByID(d.Inventory, item)
			}
		})
	}
	o.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	// Seed stock may exist only in memory, so the full list is written.
	if err := store.ReplaceAllOf(ctx, o.local, store.TableInventory, inventory); err != nil {
		logger.Log.Warn("Failed to persist inventory locally", zap.Error(err))
	}
	if !o.conn.CurrentlyReachable() {
		return
	}
	for _, item := range changed {
		if err := o.remote.SaveEntity(ctx, store.TableInventory, item); err != nil {
			logger.Log.Warn("Failed to save inventory remotely", zap.String("id", item.ID), zap.Error(err))
		}
	}
}

// UpdateStatus settles or reopens a sale. When reachable the status is patched
// remotely; otherwise, or on failure, the full updated transaction is queued.
func (o *Orchestrator) UpdateStatus(ctx context.Context, id string, status store.TransactionStatus, method store.PaymentMethod, actor string) (store.SaleTransaction, error) {
	if !status.Valid() {
		return store.SaleTransaction{}, ErrInvalidStatus
	}
	if !method.Valid() {
		return store.SaleTransaction{}, ErrInvalidPayment
	}
	if actor == "" {
		return store.SaleTransaction{}, ErrMissingActor
	}

	tx, ok := o.findSale(ctx, id)
	if !ok {
		return store.SaleTransaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}

	tx.Status = status
	tx.PaymentMethod = method
	tx.UpdatedBy = actor
	tx.UpdatedAt = o.timestamp()

	// The patch only carries status fields. A row the remote has never seen
	// fails it, and the full transaction is queued instead.
	o.writeTransaction(ctx, tx, func(ctx context.Context) error {
		return o.remote.UpdateTransactionStatus(ctx, tx.ID, tx.Status, tx.PaymentMethod, tx.UpdatedBy, tx.UpdatedAt)
	})
	return tx, nil
}

// findSale looks in memory first, then the local sales table, then the queue.
func (o *Orchestrator) findSale(ctx context.Context, id string) (store.SaleTransaction, bool) {
	o.mu.Lock()
	for _, tx := range o.data.Sales {
		if tx.ID == id {
			o.mu.Unlock()
			return tx, true
		}
	}
	o.mu.Unlock()

	if rec, err := o.local.Get(ctx, store.TableSalesHistory, id); err == nil && rec != nil {
		if tx, err := store.Decode[store.SaleTransaction](*rec); err == nil {
			return tx, true
		}
	}
	pending, _ := o.queue.ListAll(ctx)
	for _, tx := range pending {
		if tx.ID == id {
			return tx, true
		}
	}
	return store.SaleTransaction{}, false
}

// LogActivity appends an audit entry locally and, when reachable, remotely.
// It never fails the caller.
func (o *Orchestrator) LogActivity(ctx context.Context, actor store.User, action store.AuditAction, details, severity string) store.AuditLog {
	if severity == "" {
		severity = "low"
	}
	entry := store.AuditLog{
		ID:       "log-" + uuid.New().String(),
		Date:     o.timestamp(),
		UserID:   actor.ID,
		UserName: actor.Name,
		Action:   action,
		Details:  details,
		Severity: severity,
	}

	o.edit(func(d *Data) {
		d.AuditLogs = append([]store.AuditLog{entry}, removeByID(d.AuditLogs, entry.ID)...)
	})
	if err := store.Put(ctx, o.local, store.TableAuditLogs, entry); err != nil {
		logger.Log.Warn("Failed to persist audit log", zap.Error(err))
	}
	if o.conn.CurrentlyReachable() {
		if err := o.remote.SaveEntity(ctx, store.TableAuditLogs, entry); err != nil {
			logger.Log.Warn("Failed to save audit log remotely", zap.Error(err))
		}
	}
	return entry
}

// SaveEntity upserts an admin-managed entity locally and, when reachable,
// remotely. Remote failures are logged, never queued.
func (o *Orchestrator) SaveEntity(ctx context.Context, table store.Table, item store.Entity) error {
	if item.EntityID() == "" {
		return ErrMissingID
	}
	var (
		apply func(*Data)
		err   error
	)
	switch table {
	case store.TableUsers:
		u, ok := item.(store.User)
		if !ok {
			return fmt.Errorf("%w: %T in %s", ErrEntityMismatch, item, table)
		}
		apply = func(d *Data) { d.Users = upsertByID(d.Users, u) }
		err = store.Put(ctx, o.local, table, u)
	case store.TableMenuItems:
		m, ok := item.(store.MenuItem)
		if !ok {
			return fmt.Errorf("%w: %T in %s", ErrEntityMismatch, item, table)
		}
		apply = func(d *Data) { d.MenuItems = upsertByID(d.MenuItems, m) }
		err = store.Put(ctx, o.local, table, m)
	case store.TableInventory:
		inv, ok := item.(store.InventoryItem)
		if !ok {
			return fmt.Errorf("%w: %T in %s", ErrEntityMismatch, item, table)
		}
		apply = func(d *Data) { d.Inventory = upsertByID(d.Inventory, inv) }
		err = store.Put(ctx, o.local, table, inv)
	case store.TableExpenses:
		e, ok := item.(store.Expense)
		if !ok {
			return fmt.Errorf("%w: %T in %s", ErrEntityMismatch, item, table)
		}
		apply = func(d *Data) { d.Expenses = upsertByID(d.Expenses, e) }
		err = store.Put(ctx, o.local, table, e)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTable, table)
	}

	o.edit(apply)
	if err != nil {
		logger.Log.Warn("Failed to persist entity locally", zap.String("table", string(table)), zap.Error(err))
	}
	if o.conn.CurrentlyReachable() {
		if err := o.remote.SaveEntity(ctx, table, item); err != nil {
			logger.Log.Warn("Failed to save entity remotely",
				zap.String("table", string(table)),
				zap.String("id", item.EntityID()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// DeleteEntity removes an admin-managed entity locally and, when reachable,
// remotely.
func (o *Orchestrator) DeleteEntity(ctx context.Context, table store.Table, id string) error {
	if id == "" {
		return ErrMissingID
	}
	var apply func(*Data)
	switch table {
	case store.TableUsers:
		apply = func(d *Data) { d.Users = removeByID(d.Users, id) }
	case store.TableMenuItems:
		apply = func(d *Data) { d.MenuItems = removeByID(d.MenuItems, id) }
	case store.TableInventory:
		apply = func(d *Data) { d.Inventory = removeByID(d.Inventory, id) }
	case store.TableExpenses:
		apply = func(d *Data) { d.Expenses = removeByID(d.Expenses, id) }
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTable, table)
	}

	o.edit(apply)
	if err := o.local.Delete(ctx, table, id); err != nil {
		logger.Log.Warn("Failed to delete entity locally", zap.String("table", string(table)), zap.Error(err))
	}
	if o.conn.CurrentlyReachable() {
		if err := o.remote.DeleteEntity(ctx, table, id); err != nil {
			logger.Log.Warn("Failed to delete entity remotely",
				zap.String("table", string(table)),
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}
	return nil
}

func upsertByID[T store.Entity](items []T, item T) []T {
	for i := range items {
		if items[i].EntityID() == item.EntityID() {
			out := append([]T(nil), items...)
			out[i] = item
			return out
		}
	}
	return append([]T{item}, items...)
}

func removeByID[T store.Entity](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.EntityID() != id {
			out = append(out, item)
		}
	}
	return out
}

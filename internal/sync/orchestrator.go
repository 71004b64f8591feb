package sync

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/queue"
	"pos-sync-service/internal/remote"
	"pos-sync-service/internal/store"
)

// Connectivity is the monitor the orchestrator consults and subscribes to.
type Connectivity interface {
	CurrentlyReachable() bool
	OnBecameReachable(cb func())
	OnBecameUnreachable(cb func())
}

// Orchestrator decides whether the local store or the remote gateway is the
// source of truth, keeps the in-memory working set, and drains the pending
// queue. None of its sync operations return transport or storage failures;
// those degrade to stale data or a queued transaction.
type Orchestrator struct {
	cfg     config.SyncConfig
	local   store.Store
	queue   *queue.Queue
	remote  remote.Gateway
	conn    Connectivity
	limiter *rate.Limiter
	now     func() time.Time

	refreshMu sync.Mutex
	writeMu   sync.Mutex

	mu          sync.Mutex
	started     bool
	stopped     bool
	baseState   State
	draining    bool
	pending     int
	lastRefresh *time.Time
	data        Data
	refreshing  bool
	edits       []func(*Data)
	subscribers map[int]func(Snapshot)
	nextSub     int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.SyncConfig, local store.Store, q *queue.Queue, gw remote.Gateway, conn Connectivity) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())

	o := &Orchestrator{
		cfg:         cfg,
		local:       local,
		queue:       q,
		remote:      gw,
		conn:        conn,
		now:         time.Now,
		baseState:   StateInitializing,
		subscribers: make(map[int]func(Snapshot)),
		ctx:         ctx,
		cancel:      cancel,
	}
	if cfg.DrainRate > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(cfg.DrainRate), 1)
	}
	return o
}

// Start wires the connectivity callbacks, runs the boot refresh and drains
// whatever an earlier run left queued.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.started = true
	o.mu.Unlock()

	logger.Log.Info("Starting sync orchestrator")

	o.conn.OnBecameReachable(func() {
		o.background(func(ctx context.Context) {
			o.Refresh(ctx)
			o.Drain(ctx)
		})
	})
	o.conn.OnBecameUnreachable(func() {
		o.mu.Lock()
		if o.baseState == StateOnlineSynced {
			o.baseState = StateOfflineCached
		}
		o.mu.Unlock()
		o.background(func(ctx context.Context) { o.publish(ctx) })
	})

	o.Refresh(ctx)
	o.Drain(ctx)
	return nil
}

// Stop cancels background cycles and waits for them to return.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	o.mu.Unlock()

	logger.Log.Info("Stopping sync orchestrator")
	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) background(fn func(ctx context.Context)) {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		fn(o.ctx)
	}()
}

// RefreshInBackground schedules a refresh that Stop waits for. Nothing runs
// while the remote is unreachable or once Stop has been called.
func (o *Orchestrator) RefreshInBackground() {
	o.background(func(ctx context.Context) {
		if o.conn.CurrentlyReachable() {
			o.Refresh(ctx)
		}
	})
}

// Snapshot returns the current status with pendingCount read from the queue.
func (o *Orchestrator) Snapshot(ctx context.Context) Snapshot {
	n, err := o.queue.Count(ctx)
	if err != nil {
		logger.Log.Warn("Failed to count pending queue", zap.Error(err))
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if err == nil {
		o.pending = n
	}
	return o.snapshotLocked()
}

// IsDraining reports whether a drain cycle is in progress.
func (o *Orchestrator) IsDraining() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draining
}

// Subscribe registers fn for every published snapshot. The returned func
// removes the subscription.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) func() {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}

// Data returns a copy of the working set.
func (o *Orchestrator) Data() Data {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.data.clone()
}

// Pending lists the queued transactions, oldest first.
func (o *Orchestrator) Pending(ctx context.Context) ([]store.SaleTransaction, error) {
	txs, err := o.queue.ListAll(ctx)
	sort.SliceStable(txs, func(i, j int) bool { return saleBefore(txs[i], txs[j]) })
	return txs, err
}

// History lists recorded refresh and drain cycles, newest first.
func (o *Orchestrator) History(ctx context.Context, limit, offset int) ([]*store.SyncRun, error) {
	return o.local.ListSyncRuns(ctx, limit, offset)
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	state := o.baseState
	if o.draining {
		state = StateDraining
	}
	return Snapshot{
		State:        state,
		Reachable:    o.conn.CurrentlyReachable(),
		PendingCount: o.pending,
		Draining:     o.draining,
		LastRefresh:  o.lastRefresh,
	}
}

// publish recomputes pendingCount and notifies subscribers. If the queue
// cannot be read the previous count is kept.
func (o *Orchestrator) publish(ctx context.Context) Snapshot {
	n, err := o.queue.Count(ctx)
	if err != nil {
		logger.Log.Warn("Failed to count pending queue", zap.Error(err))
	}

	o.mu.Lock()
	if err == nil {
		o.pending = n
	}
	snap := o.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// edit applies fn to the working set. While a refresh is in flight the edit
// is also replayed over the refreshed data, so it is not lost in the swap.
func (o *Orchestrator) edit(fn func(*Data)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.data)
	if o.refreshing {
		o.edits = append(o.edits, fn)
	}
}

// Refresh runs one full refresh cycle. When reachable every table is read
// from the remote in parallel and written through to the local store;
// otherwise, or if any read or write fails, every table is read back from
// the local store.
func (o *Orchestrator) Refresh(ctx context.Context) Snapshot {
	o.refreshMu.Lock()
	defer o.refreshMu.Unlock()

	o.mu.Lock()
	o.refreshing = true
	o.edits = nil
	o.mu.Unlock()

	run := o.beginRun(ctx, store.RunRefresh)

	state := StateOfflineCached
	var data Data
	var refreshErr error
	if o.conn.CurrentlyReachable() {
		cloud, err := o.fetchRemote(ctx)
		if err == nil {
			o.substituteSeeds(&cloud)
			err = o.writeThrough(ctx, cloud)
		}
		if err == nil {
			data, state = cloud, StateOnlineSynced
		} else {
			refreshErr = err
			logger.Log.Warn("Remote refresh failed, serving local cache", zap.Error(err))
		}
	}
	if state != StateOnlineSynced {
		data = o.loadLocal(ctx)
	}

	pending, err := o.queue.ListAll(ctx)
	if err != nil {
		logger.Log.Warn("Failed to read pending queue", zap.Error(err))
	}
	if state == StateOnlineSynced {
		o.reportDivergence(pending, data.Sales)
	}
	data.Sales = overlayPending(data.Sales, pending)

	now := o.now()
	o.mu.Lock()
	for _, fn := range o.edits {
		fn(&data)
	}
	sortSales(data.Sales)
	o.data = data
	o.refreshing = false
	o.edits = nil
	o.baseState = state
	o.lastRefresh = &now
	o.mu.Unlock()

	snap := o.publish(ctx)

	status := "completed"
	if state == StateOfflineCached {
		status = "offline"
	}
	o.finishRun(ctx, run, status, refreshErr)

	logger.Log.Info("Refresh finished",
		zap.String("state", string(state)),
		zap.Int("pending", snap.PendingCount),
	)
	return snap
}

func (o *Orchestrator) fetchRemote(ctx context.Context) (Data, error) {
	var d Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { d.Users, err = o.remote.ListUsers(gctx); return })
	g.Go(func() (err error) { d.MenuItems, err = o.remote.ListMenuItems(gctx); return })
	g.Go(func() (err error) { d.Inventory, err = o.remote.ListInventory(gctx); return })
	g.Go(func() (err error) { d.Sales, err = o.remote.ListTransactions(gctx); return })
	g.Go(func() (err error) { d.Expenses, err = o.remote.ListExpenses(gctx); return })
	g.Go(func() (err error) { d.AuditLogs, err = o.remote.ListAuditLogs(gctx); return })
	if err := g.Wait(); err != nil {
		return Data{}, err
	}
	return d, nil
}

// writeThrough replaces every entity table with the remote snapshot. The
// pending queue table is never touched here.
func (o *Orchestrator) writeThrough(ctx context.Context, d Data) error {
	if err := store.ReplaceAllOf(ctx, o.local, store.TableUsers, d.Users); err != nil {
		return err
	}
	if err := store.ReplaceAllOf(ctx, o.local, store.TableMenuItems, d.MenuItems); err != nil {
		return err
	}
	if err := store.ReplaceAllOf(ctx, o.local, store.TableInventory, d.Inventory); err != nil {
		return err
	}
	if err := store.ReplaceAllOf(ctx, o.local, store.TableSalesHistory, d.Sales); err != nil {
		return err
	}
	if err := store.ReplaceAllOf(ctx, o.local, store.TableExpenses, d.Expenses); err != nil {
		return err
	}
	return store.ReplaceAllOf(ctx, o.local, store.TableAuditLogs, d.AuditLogs)
}

// loadLocal reads every entity table. A table that cannot be read is served
// empty; seeds then fill users, menu and inventory in memory only.
func (o *Orchestrator) loadLocal(ctx context.Context) Data {
	var d Data
	var err error
	if d.Users, err = store.ListOf[store.User](ctx, o.local, store.TableUsers); err != nil {
		logger.Log.Error("Failed to load local users", zap.Error(err))
	}
	if d.MenuItems, err = store.ListOf[store.MenuItem](ctx, o.local, store.TableMenuItems); err != nil {
		logger.Log.Error("Failed to load local menu", zap.Error(err))
	}
	if d.Inventory, err = store.ListOf[store.InventoryItem](ctx, o.local, store.TableInventory); err != nil {
		logger.Log.Error("Failed to load local inventory", zap.Error(err))
	}
	if d.Sales, err = store.ListOf[store.SaleTransaction](ctx, o.local, store.TableSalesHistory); err != nil {
		logger.Log.Error("Failed to load local sales history", zap.Error(err))
	}
	if d.Expenses, err = store.ListOf[store.Expense](ctx, o.local, store.TableExpenses); err != nil {
		logger.Log.Error("Failed to load local expenses", zap.Error(err))
	}
	if d.AuditLogs, err = store.ListOf[store.AuditLog](ctx, o.local, store.TableAuditLogs); err != nil {
		logger.Log.Error("Failed to load local audit logs", zap.Error(err))
	}

	o.substituteSeeds(&d)
	return d
}

// Drain commits every queued transaction once, sequentially. It is a no-op
// while offline or while another drain is running. A failed commit leaves
// that transaction queued and moves on.
func (o *Orchestrator) Drain(ctx context.Context) (res DrainResult) {
	o.mu.Lock()
	if o.draining || !o.conn.CurrentlyReachable() {
		o.mu.Unlock()
		return DrainResult{Skipped: true}
	}
	o.draining = true
	o.mu.Unlock()

	// Remaining is filled in after draining clears, so it reflects the queue.
	defer func() {
		o.mu.Lock()
		o.draining = false
		o.mu.Unlock()
		res.Remaining = o.publish(ctx).PendingCount
	}()

	pending, err := o.queue.ListAll(ctx)
	if err != nil {
		logger.Log.Warn("Failed to read pending queue", zap.Error(err))
	}
	if len(pending) == 0 {
		return res
	}
	sort.SliceStable(pending, func(i, j int) bool { return saleBefore(pending[i], pending[j]) })

	o.publish(ctx)
	run := o.beginRun(ctx, store.RunDrain)
	logger.Log.Info("Draining pending queue", zap.Int("pending", len(pending)))

	for _, tx := range pending {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				break
			}
		}
		res.Attempted++

		if err := o.remote.CommitTransaction(ctx, tx); err != nil {
			res.Failed++
			logger.Log.Warn("Failed to commit queued transaction",
				zap.String("id", tx.ID),
				zap.Error(err),
			)
			continue
		}
		res.Committed++

		removed, err := o.queue.Remove(ctx, tx)
		if err != nil {
			logger.Log.Error("Failed to remove committed transaction from queue",
				zap.String("id", tx.ID),
				zap.Error(err),
			)
		} else if !removed {
			logger.Log.Debug("Newer version queued during commit", zap.String("id", tx.ID))
		}
	}

	run.Attempted = res.Attempted
	run.Committed = res.Committed
	run.Failed = res.Failed
	status := "completed"
	var runErr error
	if res.Failed > 0 || res.Attempted < len(pending) {
		status = "partial"
	}
	if ctx.Err() != nil {
		runErr = ctx.Err()
	}
	o.finishRun(ctx, run, status, runErr)

	logger.Log.Info("Drain finished",
		zap.Int("attempted", res.Attempted),
		zap.Int("committed", res.Committed),
		zap.Int("failed", res.Failed),
	)
	return res
}

func sortSales(sales []store.SaleTransaction) {
	sort.SliceStable(sales, func(i, j int) bool { return saleBefore(sales[j], sales[i]) })
}

// saleBefore orders by transaction date, falling back to the raw string when
// a date does not parse.
func saleBefore(a, b store.SaleTransaction) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a.Date)
	tb, errB := time.Parse(time.RFC3339Nano, b.Date)
	if errA == nil && errB == nil {
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a.ID < b.ID
	}
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.ID < b.ID
}

// overlayPending replaces sales rows with their queued versions, which are
// newer local intent than whatever the snapshot holds.
func overlayPending(sales []store.SaleTransaction, pending []store.SaleTransaction) []store.SaleTransaction {
	if len(pending) == 0 {
		return sales
	}
	queued := make(map[string]store.SaleTransaction, len(pending))
	for _, tx := range pending {
		queued[tx.ID] = tx
	}
	out := make([]store.SaleTransaction, 0, len(sales)+len(pending))
	for _, tx := range sales {
		if q, ok := queued[tx.ID]; ok {
			out = append(out, q)
			delete(queued, tx.ID)
			continue
		}
		out = append(out, tx)
	}
	for _, tx := range pending {
		if _, ok := queued[tx.ID]; ok {
			out = append(out, tx)
		}
	}
	return out
}

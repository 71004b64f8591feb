// Package queue implements the Pending Operation Queue: sale transactions
// that still need a confirmed commit to the remote authority.
//
// The queue lives in the local store's offline_orders table and is keyed by
// the transaction's own id, so enqueuing a transaction twice replaces the
// earlier copy. Removal is compare-and-delete: a row is only removed when it
// still holds the version that was committed.
//
// If the store rejects an enqueue, the transaction is held in an in-memory
// overflow buffer. The buffer is merged into ListAll and flushed to the store
// on the next queue operation.
package queue

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap"

	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store"
)

type Queue struct {
	store store.Store

	mu       sync.Mutex
	overflow map[string]store.SaleTransaction
}

func New(s store.Store) *Queue {
	return &Queue{
		store:    s,
		overflow: make(map[string]store.SaleTransaction),
	}
}

// Enqueue upserts tx by id. On storage failure tx is kept in the overflow
// buffer and the storage error is returned.
func (q *Queue) Enqueue(ctx context.Context, tx store.SaleTransaction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.flushLocked(ctx)

	if err := store.Put(ctx, q.store, store.TableOfflineOrders, tx); err != nil {
		q.overflow[tx.ID] = tx
		logger.Log.Warn("Queued transaction in memory only",
			zap.String("id", tx.ID),
			zap.Error(err),
		)
		return err
	}
	delete(q.overflow, tx.ID)
	return nil
}

// ListAll returns every queued transaction, one per id. Order is unspecified.
// If the store cannot be read, the buffered transactions are returned with the error.
func (q *Queue) ListAll(ctx context.Context) ([]store.SaleTransaction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.flushLocked(ctx)
	return q.listLocked(ctx)
}

// Count is len(ListAll()). It is never cached.
func (q *Queue) Count(ctx context.Context) (int, error) {
	txs, err := q.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(txs), nil
}

// Contains reports whether a version of id is queued.
func (q *Queue) Contains(ctx context.Context, id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.overflow[id]; ok {
		return true, nil
	}
	rec, err := q.store.Get(ctx, store.TableOfflineOrders, id)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Remove deletes the queued copy of committed.ID, but only if it is still the
// version that was committed. A newer version enqueued meanwhile stays queued.
// It reports whether a row was removed.
func (q *Queue) Remove(ctx context.Context, committed store.SaleTransaction) (bool, error) {
	want, err := store.Encode(committed)
	if err != nil {
		return false, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if buffered, ok := q.overflow[committed.ID]; ok {
		got, err := store.Encode(buffered)
		if err != nil || !bytes.Equal(got.Data, want.Data) {
			return false, nil
		}
		// The buffered copy is newer than whatever the store holds, so any
		// stored row is stale. If it cannot be deleted, keep the buffer: it will
		// overwrite the stale row on flush and be committed once more.
		if err := q.store.Delete(ctx, store.TableOfflineOrders, committed.ID); err != nil {
			return false, err
		}
		delete(q.overflow, committed.ID)
		return true, nil
	}

	rec, err := q.store.Get(ctx, store.TableOfflineOrders, committed.ID)
	if err != nil {
		return false, err
	}
	if rec == nil || !bytes.Equal(rec.Data, want.Data) {
		return false, nil
	}
	if err := q.store.Delete(ctx, store.TableOfflineOrders, committed.ID); err != nil {
		return false, err
	}
	return true, nil
}

// listLocked merges stored rows with the overflow buffer; buffered copies win.
func (q *Queue) listLocked(ctx context.Context) ([]store.SaleTransaction, error) {
	stored, err := store.ListOf[store.SaleTransaction](ctx, q.store, store.TableOfflineOrders)
	if err != nil && len(q.overflow) == 0 {
		return nil, err
	}

	out := make([]store.SaleTransaction, 0, len(stored)+len(q.overflow))
	for _, tx := range stored {
		if _, buffered := q.overflow[tx.ID]; buffered {
			continue
		}
		out = append(out, tx)
	}
	for _, tx := range q.overflow {
		out = append(out, tx)
	}
	return out, err
}

func (q *Queue) flushLocked(ctx context.Context) {
	for id, tx := range q.overflow {
		if err := store.Put(ctx, q.store, store.TableOfflineOrders, tx); err != nil {
			// Still failing; keep everything buffered for the next attempt.
			return
		}
		delete(q.overflow, id)
		logger.Log.Info("Flushed buffered transaction to queue", zap.String("id", id))
	}
}

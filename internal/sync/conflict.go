package sync

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store"
)

// Conflict is a queued transaction whose cloud copy changed after it was
// queued. The drain still commits the queued version: last write wins.
type Conflict struct {
	ID        string
	Queued    store.SaleTransaction
	Cloud     store.SaleTransaction
	QueuedSum string
	CloudSum  string
}

// DetectConflicts pairs queued transactions with differing cloud rows.
func DetectConflicts(pending, cloud []store.SaleTransaction) []Conflict {
	if len(pending) == 0 {
		return nil
	}
	byID := make(map[string]store.SaleTransaction, len(cloud))
	for _, tx := range cloud {
		byID[tx.ID] = tx
	}

	var conflicts []Conflict
	for _, q := range pending {
		c, ok := byID[q.ID]
		if !ok {
			continue
		}
		qs, cs := calculateHash(q), calculateHash(c)
		if qs == cs {
			continue
		}
		conflicts = append(conflicts, Conflict{ID: q.ID, Queued: q, Cloud: c, QueuedSum: qs, CloudSum: cs})
	}
	return conflicts
}

func (o *Orchestrator) reportDivergence(pending, cloud []store.SaleTransaction) {
	for _, c := range DetectConflicts(pending, cloud) {
		logger.Log.Warn("Queued transaction differs from cloud copy, queued version will win",
			zap.String("id", c.ID),
			zap.String("queued_status", string(c.Queued.Status)),
			zap.String("cloud_status", string(c.Cloud.Status)),
			zap.String("cloud_updated_by", c.Cloud.UpdatedBy),
		)
	}
}

// calculateHash fingerprints the persisted JSON form of tx.
func calculateHash(tx store.SaleTransaction) string {
	bytes, _ := json.Marshal(tx)
	sum := sha256.Sum256(bytes)
	return fmt.Sprintf("%x", sum)
}

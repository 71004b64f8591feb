package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Table names one local entity table.
type Table string

const (
	TableUsers         Table = "users"
	TableMenuItems     Table = "menu_items"
	TableInventory     Table = "inventory"
	TableSalesHistory  Table = "sales_history"
	TableExpenses      Table = "expenses"
	TableAuditLogs     Table = "audit_logs"
	TableOfflineOrders Table = "offline_orders"
)

// Tables lists every local table.
var Tables = []Table{
	TableUsers,
	TableMenuItems,
	TableInventory,
	TableSalesHistory,
	TableExpenses,
	TableAuditLogs,
	TableOfflineOrders,
}

func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

// Record is one encoded row.
type Record struct {
	ID   string
	Data []byte
}

type Store interface {
	// Entity tables
	ReplaceAll(ctx context.Context, table Table, records []Record) error
	Upsert(ctx context.Context, table Table, record Record) error
	Get(ctx context.Context, table Table, id string) (*Record, error)
	GetAll(ctx context.Context, table Table) ([]Record, error)
	Delete(ctx context.Context, table Table, id string) error

	// History
	CreateSyncRun(ctx context.Context, run *SyncRun) error
	UpdateSyncRun(ctx context.Context, run *SyncRun) error
	// ListSyncRuns lists newest first. A limit of zero or less means no limit.
	ListSyncRuns(ctx context.Context, limit, offset int) ([]*SyncRun, error)

	// General
	Close() error
}

// ErrStorage matches every *StorageError.
var ErrStorage = errors.New("storage failure")

// StorageError reports a Local Durable Store operation that could not complete.
type StorageError struct {
	Op    string
	Table Table
	Err   error
}

func (e *StorageError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, table Table, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Table: table, Err: err}
}

var errUnknownTable = errors.New("unknown table")

func checkTable(op string, table Table) error {
	if !table.Valid() {
		return storageErr(op, table, errUnknownTable)
	}
	return nil
}

// Encode turns an entity into a Record.
func Encode[T Entity](item T) (Record, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode %s: %w", item.EntityID(), err)
	}
	return Record{ID: item.EntityID(), Data: data}, nil
}

// Decode turns a Record back into an entity.
func Decode[T Entity](rec Record) (T, error) {
	var item T
	if err := json.Unmarshal(rec.Data, &item); err != nil {
		return item, fmt.Errorf("failed to decode %s: %w", rec.ID, err)
	}
	return item, nil
}

// Put upserts one typed entity.
func Put[T Entity](ctx context.Context, s Store, table Table, item T) error {
	rec, err := Encode(item)
	if err != nil {
		return storageErr("encode", table, err)
	}
	return s.Upsert(ctx, table, rec)
}

// ReplaceAllOf atomically replaces table with items.
func ReplaceAllOf[T Entity](ctx context.Context, s Store, table Table, items []T) error {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := Encode(item)
		if err != nil {
			return storageErr("encode", table, err)
		}
		records = append(records, rec)
	}
	return s.ReplaceAll(ctx, table, records)
}

// ListOf returns the decoded contents of table. Order is unspecified.
func ListOf[T Entity](ctx context.Context, s Store, table Table) ([]T, error) {
	records, err := s.GetAll(ctx, table)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(records))
	for _, rec := range records {
		item, err := Decode[T](rec)
		if err != nil {
			return nil, storageErr("decode", table, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Package remote holds the Remote Gateway contract and its adapters.
//
// A gateway is a thin, retry-free client for the authoritative backend.
// Every failure it returns is a *TransportError; callers only distinguish
// success from failure. Writes are upserts, so every call is safe to repeat.
package remote

import (
	"context"
	"errors"
	"fmt"

	"pos-sync-service/internal/store"
)

type Gateway interface {
	ListUsers(ctx context.Context) ([]store.User, error)
	ListMenuItems(ctx context.Context) ([]store.MenuItem, error)
	ListInventory(ctx context.Context) ([]store.InventoryItem, error)
	ListTransactions(ctx context.Context) ([]store.SaleTransaction, error)
	ListExpenses(ctx context.Context) ([]store.Expense, error)
	ListAuditLogs(ctx context.Context) ([]store.AuditLog, error)

	// CommitTransaction upserts tx by id.
	CommitTransaction(ctx context.Context, tx store.SaleTransaction) error
	UpdateTransactionStatus(ctx context.Context, id string, status store.TransactionStatus, method store.PaymentMethod, actor, updatedAt string) error

	SaveEntity(ctx context.Context, table store.Table, item store.Entity) error
	DeleteEntity(ctx context.Context, table store.Table, id string) error

	// Ping checks that the backend answers at all.
	Ping(ctx context.Context) error
}

// ErrTransport matches every *TransportError.
var ErrTransport = errors.New("transport failure")

// TransportError reports that the backend could not be reached or failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func transportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// ErrUnsupportedTable is returned for tables that have no remote counterpart.
var ErrUnsupportedTable = errors.New("table has no remote counterpart")

// RemoteTable maps a local table to the backend's table name.
func RemoteTable(t store.Table) (string, error) {
	switch t {
	case store.TableUsers, store.TableMenuItems, store.TableInventory, store.TableExpenses, store.TableAuditLogs:
		return string(t), nil
	case store.TableSalesHistory:
		return "transactions", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedTable, t)
}

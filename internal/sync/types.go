package sync

import (
	"errors"
	"fmt"
	"time"

	"pos-sync-service/internal/store"
)

type State string

const (
	StateInitializing  State = "INITIALIZING"
	StateOnlineSynced  State = "ONLINE_SYNCED"
	StateOfflineCached State = "OFFLINE_CACHED"
	StateDraining      State = "DRAINING"
)

// Snapshot is the process-wide sync status shown to the UI.
type Snapshot struct {
	State        State      `json:"state"`
	Reachable    bool       `json:"reachable"`
	PendingCount int        `json:"pendingCount"`
	Draining     bool       `json:"draining"`
	LastRefresh  *time.Time `json:"lastRefresh,omitempty"`
}

func (s Snapshot) String() string {
	return fmt.Sprintf("[%s] reachable=%t pending=%d draining=%t", s.State, s.Reachable, s.PendingCount, s.Draining)
}

// Data is the in-memory working set. Sales are ordered by date, newest first.
type Data struct {
	Users     []store.User            `json:"users"`
	MenuItems []store.MenuItem        `json:"menuItems"`
	Inventory []store.InventoryItem   `json:"inventory"`
	Sales     []store.SaleTransaction `json:"sales"`
	Expenses  []store.Expense         `json:"expenses"`
	AuditLogs []store.AuditLog        `json:"auditLogs"`
}

func (d Data) clone() Data {
	return Data{
		Users:     append([]store.User(nil), d.Users...),
		MenuItems: append([]store.MenuItem(nil), d.MenuItems...),
		Inventory: append([]store.InventoryItem(nil), d.Inventory...),
		Sales:     append([]store.SaleTransaction(nil), d.Sales...),
		Expenses:  append([]store.Expense(nil), d.Expenses...),
		AuditLogs: append([]store.AuditLog(nil), d.AuditLogs...),
	}
}

// DrainResult summarises one drain cycle.
type DrainResult struct {
	Skipped   bool `json:"skipped"`
	Attempted int  `json:"attempted"`
	Committed int  `json:"committed"`
	Failed    int  `json:"failed"`
	Remaining int  `json:"remaining"`
}

// CartLine is one menu item in a checkout. Name and Price are only used when
// the item is not on the current menu.
type CartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

type CheckoutRequest struct {
	Items         []CartLine          `json:"items"`
	PaymentMethod store.PaymentMethod `json:"paymentMethod"`
	OrderType     store.OrderType     `json:"orderType,omitempty"`
	TableNumber   *int                `json:"tableNumber,omitempty"`
	Cashier       store.User          `json:"cashier"`
	// EditingID resumes an existing order instead of minting a new id.
	EditingID string `json:"editingId,omitempty"`
}

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrUnknownMenuItem     = errors.New("unknown menu item")
	ErrInvalidPayment      = errors.New("invalid payment method")
	ErrInvalidStatus       = errors.New("invalid transaction status")
	ErrMissingActor        = errors.New("actor is required")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnsupportedTable    = errors.New("table is not editable")
	ErrEntityMismatch      = errors.New("entity does not belong to table")
	ErrMissingID           = errors.New("entity id is required")
	ErrAlreadyStarted      = errors.New("orchestrator already started")
)

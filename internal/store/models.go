package store

import (
	"time"
)

// Entity is any record cached in a local table, keyed by an opaque id.
type Entity interface {
	EntityID() string
}

type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleCashier UserRole = "Cashier"
	RoleWaiter  UserRole = "Waiter"
	RoleChef    UserRole = "Chef"
	RoleBarista UserRole = "Barista"
)

type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	PIN    string   `json:"pin"`
	Avatar string   `json:"avatar,omitempty"`
}

func (u User) EntityID() string { return u.ID }

type MenuItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Category          string  `json:"category"`
	Image             string  `json:"image"`
	Description       string  `json:"description,omitempty"`
	Stock             int     `json:"stock"`
	LowStockThreshold int     `json:"lowStockThreshold"`
}

func (m MenuItem) EntityID() string { return m.ID }

type InventoryItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	Category          string  `json:"category"`
	LowStockThreshold float64 `json:"lowStockThreshold"`
}

func (i InventoryItem) EntityID() string { return i.ID }

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Cash"
	PaymentMPesa    PaymentMethod = "M-Pesa"
	PaymentCard     PaymentMethod = "Card"
	PaymentPayLater PaymentMethod = "Pay Later"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentMPesa, PaymentCard, PaymentPayLater:
		return true
	}
	return false
}

type TransactionStatus string

const (
	StatusPaid    TransactionStatus = "Paid"
	StatusPending TransactionStatus = "Pending"
)

func (s TransactionStatus) Valid() bool {
	return s == StatusPaid || s == StatusPending
}

type OrderType string

const (
	OrderDineIn   OrderType = "Dine-in"
	OrderTakeAway OrderType = "Take Away"
)

type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// SaleTransaction is both the sales history row and the pending queue row.
// Dates are ISO-8601 strings as persisted.
type SaleTransaction struct {
	ID            string            `json:"id"`
	Date          string            `json:"date"`
	Total         float64           `json:"total"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Status        TransactionStatus `json:"status"`
	CashierName   string            `json:"cashierName"`
	TableNumber   *int              `json:"tableNumber,omitempty"`
	OrderType     OrderType         `json:"orderType,omitempty"`
	Items         []LineItem        `json:"items"`
	UpdatedBy     string            `json:"updatedBy,omitempty"`
	UpdatedAt     string            `json:"updatedAt,omitempty"`
}

func (t SaleTransaction) EntityID() string { return t.ID }

type Expense struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	RecordedBy  string  `json:"recordedBy"`
}

func (e Expense) EntityID() string { return e.ID }

type AuditAction string

const (
	ActionLogin         AuditAction = "LOGIN"
	ActionLogout        AuditAction = "LOGOUT"
	ActionSale          AuditAction = "SALE"
	ActionVoidItem      AuditAction = "VOID_ITEM"
	ActionClearCart     AuditAction = "CLEAR_CART"
	ActionSettlePayment AuditAction = "SETTLE_PAYMENT"
	ActionExpenseAdd    AuditAction = "EXPENSE_ADD"
	ActionStockUpdate   AuditAction = "STOCK_UPDATE"
)

type AuditLog struct {
	ID       string      `json:"id"`
	Date     string      `json:"date"`
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	Action   AuditAction `json:"action"`
	Details  string      `json:"details"`
	Severity string      `json:"severity"`
}

func (a AuditLog) EntityID() string { return a.ID }

type SyncRunKind string

const (
	RunRefresh SyncRunKind = "refresh"
	RunDrain   SyncRunKind = "drain"
)

// SyncRun records one refresh or drain cycle.
type SyncRun struct {
	ID          string      `json:"id"`
	Kind        SyncRunKind `json:"kind"`
	StartedAt   time.Time   `json:"startedAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	Status      string      `json:"status"`
	Attempted   int         `json:"attempted"`
	Committed   int         `json:"committed"`
	Failed      int         `json:"failed"`
	Error       string      `json:"error,omitempty"`
}

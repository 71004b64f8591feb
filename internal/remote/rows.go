package remote

import (
	"encoding/json"

	"pos-sync-service/internal/store"
)

// Backend rows use snake_case columns. Older rows may still carry the
// camelCase threshold column, so both are read and the non-zero one wins.

type menuItemRow struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Category          string  `json:"category"`
	Image             string  `json:"image"`
	Description       string  `json:"description,omitempty"`
	Stock             int     `json:"stock"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	LegacyThreshold   int     `json:"lowStockThreshold,omitempty"`
}

func (r menuItemRow) entity() store.MenuItem {
	threshold := r.LowStockThreshold
	if threshold == 0 {
		threshold = r.LegacyThreshold
	}
	return store.MenuItem{
		ID:                r.ID,
		Name:              r.Name,
		Price:             r.Price,
		Category:          r.Category,
		Image:             r.Image,
		Description:       r.Description,
		Stock:             r.Stock,
		LowStockThreshold: threshold,
	}
}

func menuItemToRow(m store.MenuItem) menuItemRow {
	return menuItemRow{
		ID:                m.ID,
		Name:              m.Name,
		Price:             m.Price,
		Category:          m.Category,
		Image:             m.Image,
		Description:       m.Description,
		Stock:             m.Stock,
		LowStockThreshold: m.LowStockThreshold,
	}
}

type inventoryRow struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	Category          string  `json:"category"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
	LegacyThreshold   float64 `json:"lowStockThreshold,omitempty"`
}

func (r inventoryRow) entity() store.InventoryItem {
	threshold := r.LowStockThreshold
	if threshold == 0 {
		threshold = r.LegacyThreshold
	}
	return store.InventoryItem{
		ID:                r.ID,
		Name:              r.Name,
		Quantity:          r.Quantity,
		Unit:              r.Unit,
		Category:          r.Category,
		LowStockThreshold: threshold,
	}
}

func inventoryToRow(i store.InventoryItem) inventoryRow {
	return inventoryRow{
		ID:                i.ID,
		Name:              i.Name,
		Quantity:          i.Quantity,
		Unit:              i.Unit,
		Category:          i.Category,
		LowStockThreshold: i.LowStockThreshold,
	}
}

type transactionRow struct {
	ID            string           `json:"id"`
	Date          string           `json:"date"`
	Total         float64          `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Status        string           `json:"status"`
	CashierName   string           `json:"cashier_name"`
	TableNumber   *int             `json:"table_number"`
	OrderType     *string          `json:"order_type"`
	Items         []store.LineItem `json:"items"`
	UpdatedBy     *string          `json:"updated_by"`
	UpdatedAt     *string          `json:"updated_at"`
}

func (r transactionRow) entity() store.SaleTransaction {
	status := store.TransactionStatus(r.Status)
	if status == "" {
		status = store.StatusPaid
	}
	items := r.Items
	if items == nil {
		items = []store.LineItem{}
	}
	return store.SaleTransaction{
		ID:            r.ID,
		Date:          r.Date,
		Total:         r.Total,
		PaymentMethod: store.PaymentMethod(r.PaymentMethod),
		Status:        status,
		CashierName:   r.CashierName,
		TableNumber:   r.TableNumber,
		OrderType:     store.OrderType(deref(r.OrderType)),
		Items:         items,
		UpdatedBy:     deref(r.UpdatedBy),
		UpdatedAt:     deref(r.UpdatedAt),
	}
}

func transactionToRow(t store.SaleTransaction) transactionRow {
	items := t.Items
	if items == nil {
		items = []store.LineItem{}
	}
	return transactionRow{
		ID:            t.ID,
		Date:          t.Date,
		Total:         t.Total,
		PaymentMethod: string(t.PaymentMethod),
		Status:        string(t.Status),
		CashierName:   t.CashierName,
		TableNumber:   t.TableNumber,
		OrderType:     ref(string(t.OrderType)),
		Items:         items,
		UpdatedBy:     ref(t.UpdatedBy),
		UpdatedAt:     ref(t.UpdatedAt),
	}
}

type expenseRow struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	RecordedBy  string  `json:"recorded_by"`
}

func (r expenseRow) entity() store.Expense {
	return store.Expense(r)
}

type auditLogRow struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Action   string `json:"action"`
	Details  string `json:"details"`
	Severity string `json:"severity"`
}

func (r auditLogRow) entity() store.AuditLog {
	return store.AuditLog{
		ID:       r.ID,
		Date:     r.Date,
		UserID:   r.UserID,
		UserName: r.UserName,
		Action:   store.AuditAction(r.Action),
		Details:  r.Details,
		Severity: r.Severity,
	}
}

// entityRow converts an entity into the row shape its remote table expects.
func entityRow(item store.Entity) (any, error) {
	switch v := item.(type) {
	case store.User:
		return v, nil
	case store.MenuItem:
		return menuItemToRow(v), nil
	case store.InventoryItem:
		return inventoryToRow(v), nil
	case store.SaleTransaction:
		return transactionToRow(v), nil
	case store.Expense:
		return expenseRow(v), nil
	case store.AuditLog:
		return auditLogRow{
			ID:       v.ID,
			Date:     v.Date,
			UserID:   v.UserID,
			UserName: v.UserName,
			Action:   string(v.Action),
			Details:  v.Details,
			Severity: v.Severity,
		}, nil
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

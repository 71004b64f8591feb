package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pos-sync-service/internal/database"
	"pos-sync-service/internal/store"
)

// remoteTables lists the cloud tables in the order they are created.
var remoteTables = []string{"users", "menu_items", "inventory", "transactions", "expenses", "audit_logs"}

// MySQLGateway is the Gateway contract over a cloud MySQL database. Every
// entity table is (id, date, data JSON, updated_at); data holds the same
// document the terminal stores locally.
type MySQLGateway struct {
	db *database.Database
}

var _ Gateway = (*MySQLGateway)(nil)

func NewMySQLGateway(db *database.Database) *MySQLGateway {
	return &MySQLGateway{db: db}
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		date VARCHAR(40) NULL,
		data JSON NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_%s_date (date)
	)`, table, table)
}

// EnsureSchema creates the cloud tables if they are missing.
func (g *MySQLGateway) EnsureSchema(ctx context.Context) error {
	return transportErr("ensure_schema", g.db.ExecTx(ctx, func(tx *sql.Tx) error {
		for _, t := range remoteTables {
			if _, err := tx.ExecContext(ctx, createTableSQL(t)); err != nil {
				return fmt.Errorf("failed to create %s: %w", t, err)
			}
		}
		return nil
	}))
}

func listQuery(table string, limit int) string {
	q := fmt.Sprintf("SELECT data FROM %s", table)
	switch table {
	case "transactions", "expenses", "audit_logs":
		q += " ORDER BY date DESC"
	}
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	return q
}

func listRows[T any](ctx context.Context, g *MySQLGateway, op, table string, limit int) ([]T, error) {
	rows, err := g.db.DB.QueryContext(ctx, listQuery(table, limit))
	if err != nil {
		return nil, transportErr(op, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, transportErr(op, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, transportErr(op, fmt.Errorf("failed to decode %s row: %w", table, err))
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, transportErr(op, err)
	}
	return out, nil
}

func (g *MySQLGateway) ListUsers(ctx context.Context) ([]store.User, error) {
	return listRows[store.User](ctx, g, "list_users", "users", 0)
}

func (g *MySQLGateway) ListMenuItems(ctx context.Context) ([]store.MenuItem, error) {
	return listRows[store.MenuItem](ctx, g, "list_menu_items", "menu_items", 0)
}

func (g *MySQLGateway) ListInventory(ctx context.Context) ([]store.InventoryItem, error) {
	return listRows[store.InventoryItem](ctx, g, "list_inventory", "inventory", 0)
}

func (g *MySQLGateway) ListTransactions(ctx context.Context) ([]store.SaleTransaction, error) {
	txs, err := listRows[store.SaleTransaction](ctx, g, "list_transactions", "transactions", 1000)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].Status == "" {
			txs[i].Status = store.StatusPaid
		}
	}
	return txs, nil
}

func (g *MySQLGateway) ListExpenses(ctx context.Context) ([]store.Expense, error) {
	return listRows[store.Expense](ctx, g, "list_expenses", "expenses", 0)
}

func (g *MySQLGateway) ListAuditLogs(ctx context.Context) ([]store.AuditLog, error) {
	return listRows[store.AuditLog](ctx, g, "list_audit_logs", "audit_logs", 500)
}

const upsertSQL = `INSERT INTO %s (id, date, data, updated_at)
		  VALUES (?, ?, ?, NOW())
		  ON DUPLICATE KEY UPDATE
		  date = VALUES(date),
		  data = VALUES(data),
		  updated_at = NOW()`

func (g *MySQLGateway) upsert(ctx context.Context, op, table string, item store.Entity, date string) error {
	data, err := json.Marshal(item)
	if err != nil {
		return transportErr(op, err)
	}
	var d sql.NullString
	if date != "" {
		d = sql.NullString{String: date, Valid: true}
	}
	_, err = g.db.DB.ExecContext(ctx, fmt.Sprintf(upsertSQL, table), item.EntityID(), d, data)
	return transportErr(op, err)
}

func (g *MySQLGateway) CommitTransaction(ctx context.Context, tx store.SaleTransaction) error {
	return g.upsert(ctx, "commit_transaction", "transactions", tx, tx.Date)
}

func (g *MySQLGateway) UpdateTransactionStatus(ctx context.Context, id string, status store.TransactionStatus, method store.PaymentMethod, actor, updatedAt string) error {
	query := `UPDATE transactions
			  SET data = JSON_SET(data, '$.status', ?, '$.paymentMethod', ?, '$.updatedBy', ?, '$.updatedAt', ?),
			  updated_at = NOW()
			  WHERE id = ?`
	res, err := g.db.DB.ExecContext(ctx, query, string(status), string(method), actor, updatedAt, id)
	if err != nil {
		return transportErr("update_transaction_status", err)
	}
	// A missing cloud row must not count as committed; the caller then
	// queues the full transaction, which upserts.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transportErr("update_transaction_status", fmt.Errorf("transaction %s not found", id))
	}
	return nil
}

func (g *MySQLGateway) SaveEntity(ctx context.Context, table store.Table, item store.Entity) error {
	name, err := RemoteTable(table)
	if err != nil {
		return err
	}
	return g.upsert(ctx, "save_entity", name, item, entityDate(item))
}

func (g *MySQLGateway) DeleteEntity(ctx context.Context, table store.Table, id string) error {
	name, err := RemoteTable(table)
	if err != nil {
		return err
	}
	_, err = g.db.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", name), id)
	return transportErr("delete_entity", err)
}

func (g *MySQLGateway) Ping(ctx context.Context) error {
	return transportErr("ping", g.db.DB.PingContext(ctx))
}

func entityDate(item store.Entity) string {
	switch v := item.(type) {
	case store.SaleTransaction:
		return v.Date
	case store.Expense:
		return v.Date
	case store.AuditLog:
		return v.Date
	}
	return ""
}

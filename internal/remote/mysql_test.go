package remote

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/database"
	"pos-sync-service/internal/store"
)

func TestListQuery(t *testing.T) {
	assert.Equal(t, "SELECT data FROM users", listQuery("users", 0))
	assert.Equal(t, "SELECT data FROM transactions ORDER BY date DESC LIMIT 1000", listQuery("transactions", 1000))
	assert.Equal(t, "SELECT data FROM expenses ORDER BY date DESC", listQuery("expenses", 0))
}

func TestCreateTableSQL(t *testing.T) {
	q := createTableSQL("transactions")
	assert.Contains(t, q, "CREATE TABLE IF NOT EXISTS transactions")
	assert.Contains(t, q, "data JSON NOT NULL")
	assert.Contains(t, q, "idx_transactions_date")
}

func TestEntityDate(t *testing.T) {
	assert.Equal(t, "2025-03-01", entityDate(store.Expense{ID: "e1", Date: "2025-03-01"}))
	assert.Equal(t, "", entityDate(store.User{ID: "u1"}))
}

// mysqlFromEnv connects to the MySQL named by POS_TEST_MYSQL_HOST or skips.
func mysqlFromEnv(t *testing.T) *MySQLGateway {
	t.Helper()
	host := os.Getenv("POS_TEST_MYSQL_HOST")
	if host == "" {
		t.Skip("POS_TEST_MYSQL_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("POS_TEST_MYSQL_PORT"))
	if port == 0 {
		port = 3306
	}
	db, err := database.OpenMySQL(config.MySQLConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("POS_TEST_MYSQL_USER"),
		Password: os.Getenv("POS_TEST_MYSQL_PASSWORD"),
		Database: os.Getenv("POS_TEST_MYSQL_DATABASE"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	g := NewMySQLGateway(db)
	require.NoError(t, g.EnsureSchema(context.Background()))
	return g
}

func TestMySQLGateway_Integration(t *testing.T) {
	g := mysqlFromEnv(t)
	ctx := context.Background()

	require.NoError(t, g.Ping(ctx))

	tx := store.SaleTransaction{
		ID:            "it-A",
		Date:          "2025-03-01T08:00:00Z",
		Total:         500,
		PaymentMethod: store.PaymentPayLater,
		Status:        store.StatusPending,
		CashierName:   "Sarah Waiter",
		Items:         []store.LineItem{{ID: "bf_oat", Name: "Steel-Cut Oatmeal", Quantity: 1, Price: 500}},
	}
	require.NoError(t, g.CommitTransaction(ctx, tx))
	require.NoError(t, g.CommitTransaction(ctx, tx))
	t.Cleanup(func() { _ = g.DeleteEntity(ctx, store.TableSalesHistory, tx.ID) })

	require.NoError(t, g.UpdateTransactionStatus(ctx, tx.ID, store.StatusPaid, store.PaymentCash, "Admin User", "2025-03-01T09:00:00Z"))

	txs, err := g.ListTransactions(ctx)
	require.NoError(t, err)
	var found *store.SaleTransaction
	for i := range txs {
		if txs[i].ID == tx.ID {
			found = &txs[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, store.StatusPaid, found.Status)
	assert.Equal(t, store.PaymentCash, found.PaymentMethod)
	assert.Equal(t, "Admin User", found.UpdatedBy)

	err = g.UpdateTransactionStatus(ctx, "it-missing", store.StatusPaid, store.PaymentCash, "Admin User", "2025-03-01T09:00:00Z")
	assert.ErrorIs(t, err, ErrTransport)
}

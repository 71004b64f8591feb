package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store"
)

// undefinedTable is the Postgres error code for a missing relation.
const undefinedTable = "42P01"

// PostgRESTClient talks to a PostgREST (Supabase-style) REST endpoint.
type PostgRESTClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Gateway = (*PostgRESTClient)(nil)

func NewPostgRESTClient(cfg config.PostgRESTConfig) (*PostgRESTClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote.postgrest.url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid remote.postgrest.url: %w", err)
	}
	return &PostgRESTClient{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
	}, nil
}

// pgError is the error body PostgREST returns.
type pgError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

func (c *PostgRESTClient) endpoint(table string, query url.Values) string {
	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *PostgRESTClient) do(ctx context.Context, method, endpoint string, body any, prefer string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	return c.httpClient.Do(req)
}

func readStatusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	se := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var pe pgError
	if json.Unmarshal(raw, &pe) == nil && (pe.Code != "" || pe.Message != "") {
		se.Code = pe.Code
		se.Message = pe.Message
	}
	return se
}

// list fetches every row of table into out. A missing table yields an empty result.
func (c *PostgRESTClient) list(ctx context.Context, op, table string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("select", "*")

	resp, err := c.do(ctx, http.MethodGet, c.endpoint(table, query), nil, "")
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		se := readStatusError(resp)
		if se.StatusCode == http.StatusNotFound || se.Code == undefinedTable {
			logger.Log.Debug("Remote table missing, treating as empty", zap.String("table", table))
			return nil
		}
		return transportErr(op, se)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportErr(op, fmt.Errorf("failed to decode %s: %w", table, err))
	}
	return nil
}

func (c *PostgRESTClient) ListUsers(ctx context.Context) ([]store.User, error) {
	var rows []store.User
	if err := c.list(ctx, "list_users", "users", nil, &rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

func (c *PostgRESTClient) ListMenuItems(ctx context.Context) ([]store.MenuItem, error) {
	var rows []menuItemRow
	if err := c.list(ctx, "list_menu_items", "menu_items", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]store.MenuItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entity())
	}
	return out, nil
}

func (c *PostgRESTClient) ListInventory(ctx context.Context) ([]store.InventoryItem, error) {
	var rows []inventoryRow
	if err := c.list(ctx, "list_inventory", "inventory", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]store.InventoryItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entity())
	}
	return out, nil
}

func (c *PostgRESTClient) ListTransactions(ctx context.Context) ([]store.SaleTransaction, error) {
	q := url.Values{"order": {"date.desc"}, "limit": {"1000"}}
	var rows []transactionRow
	if err := c.list(ctx, "list_transactions", "transactions", q, &rows); err != nil {
		return nil, err
	}
	out := make([]store.SaleTransaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entity())
	}
	return out, nil
}

func (c *PostgRESTClient) ListExpenses(ctx context.Context) ([]store.Expense, error) {
	q := url.Values{"order": {"date.desc"}}
	var rows []expenseRow
	if err := c.list(ctx, "list_expenses", "expenses", q, &rows); err != nil {
		return nil, err
	}
	out := make([]store.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entity())
	}
	return out, nil
}

func (c *PostgRESTClient) ListAuditLogs(ctx context.Context) ([]store.AuditLog, error) {
	q := url.Values{"order": {"date.desc"}, "limit": {"500"}}
	var rows []auditLogRow
	if err := c.list(ctx, "list_audit_logs", "audit_logs", q, &rows); err != nil {
		return nil, err
	}
	out := make([]store.AuditLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entity())
	}
	return out, nil
}

func (c *PostgRESTClient) CommitTransaction(ctx context.Context, tx store.SaleTransaction) error {
	return c.upsert(ctx, "commit_transaction", "transactions", transactionToRow(tx))
}

func (c *PostgRESTClient) UpdateTransactionStatus(ctx context.Context, id string, status store.TransactionStatus, method store.PaymentMethod, actor, updatedAt string) error {
	patch := map[string]any{
		"status":         status,
		"payment_method": method,
		"updated_by":     actor,
		"updated_at":     updatedAt,
	}
	const op = "update_transaction_status"
	q := url.Values{"id": {"eq." + id}, "select": {"id"}}
	resp, err := c.do(ctx, http.MethodPatch, c.endpoint("transactions", q), patch, "return=representation")
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return transportErr(op, readStatusError(resp))
	}
	// PostgREST answers a PATCH matching nothing with an empty array. The
	// caller then queues the full transaction, which upserts.
	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil && err != io.EOF {
		return transportErr(op, fmt.Errorf("failed to decode patch result: %w", err))
	}
	if len(rows) == 0 {
		return transportErr(op, fmt.Errorf("transaction %s not found", id))
	}
	return nil
}

func (c *PostgRESTClient) SaveEntity(ctx context.Context, table store.Table, item store.Entity) error {
	name, err := RemoteTable(table)
	if err != nil {
		return err
	}
	row, err := entityRow(item)
	if err != nil {
		return transportErr("save_entity", err)
	}
	return c.upsert(ctx, "save_entity", name, row)
}

func (c *PostgRESTClient) DeleteEntity(ctx context.Context, table store.Table, id string) error {
	name, err := RemoteTable(table)
	if err != nil {
		return err
	}
	q := url.Values{"id": {"eq." + id}}
	return c.send(ctx, "delete_entity", http.MethodDelete, c.endpoint(name, q), nil, "return=minimal")
}

// Ping issues a one-row read. Any answer below 500 other than an auth
// rejection counts as reachable.
func (c *PostgRESTClient) Ping(ctx context.Context) error {
	q := url.Values{"select": {"id"}, "limit": {"1"}}
	resp, err := c.do(ctx, http.MethodGet, c.endpoint("users", q), nil, "")
	if err != nil {
		return transportErr("ping", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return transportErr("ping", &StatusError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)})
	}
	return nil
}

func (c *PostgRESTClient) upsert(ctx context.Context, op, table string, row any) error {
	return c.send(ctx, op, http.MethodPost, c.endpoint(table, nil), row, "resolution=merge-duplicates,return=minimal")
}

func (c *PostgRESTClient) send(ctx context.Context, op, method, endpoint string, body any, prefer string) error {
	resp, err := c.do(ctx, method, endpoint, body, prefer)
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return transportErr(op, readStatusError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/connectivity"
	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store"
	"pos-sync-service/internal/sync"
)

type Handler struct {
	orchestrator *sync.Orchestrator
	monitor      *connectivity.Monitor
	cfg          config.ServerConfig
}

func NewHandler(cfg config.ServerConfig, orchestrator *sync.Orchestrator, monitor *connectivity.Monitor) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		monitor:      monitor,
		cfg:          cfg,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CorsMiddleware(h.cfg.CorsOrigins))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(h.cfg.AuthToken))

		r.Get("/sync/status", h.GetSyncStatus)
		r.Get("/sync/history", h.GetSyncHistory)
		r.Post("/sync/refresh", h.TriggerRefresh)
		r.Post("/sync/drain", h.TriggerDrain)
		r.Post("/connectivity", h.SetConnectivity)

		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CommitTransaction)
		r.Post("/transactions/checkout", h.Checkout)
		r.Put("/transactions/{id}/status", h.UpdateStatus)
		r.Get("/pending", h.ListPending)

		r.Get("/users", h.list(func(d sync.Data) any { return d.Users }))
		r.Put("/users", putEntity[store.User](h, store.TableUsers))
		r.Delete("/users/{id}", h.deleteEntity(store.TableUsers))

		r.Get("/menu-items", h.list(func(d sync.Data) any { return d.MenuItems }))
		r.Put("/menu-items", putEntity[store.MenuItem](h, store.TableMenuItems))
		r.Delete("/menu-items/{id}", h.deleteEntity(store.TableMenuItems))

		r.Get("/inventory", h.list(func(d sync.Data) any { return d.Inventory }))
		r.Put("/inventory", putEntity[store.InventoryItem](h, store.TableInventory))
		r.Delete("/inventory/{id}", h.deleteEntity(store.TableInventory))

		r.Get("/expenses", h.list(func(d sync.Data) any { return d.Expenses }))
		r.Put("/expenses", putEntity[store.Expense](h, store.TableExpenses))
		r.Delete("/expenses/{id}", h.deleteEntity(store.TableExpenses))

		r.Get("/audit-logs", h.list(func(d sync.Data) any { return d.AuditLogs }))
		r.Post("/audit-logs", h.LogActivity)
	})

	return r
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orchestrator.Snapshot(r.Context()))
}

func (h *Handler) GetSyncHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	runs, err := h.orchestrator.History(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orchestrator.Refresh(r.Context()))
}

func (h *Handler) TriggerDrain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orchestrator.Drain(r.Context()))
}

type connectivityRequest struct {
	Online *bool `json:"online"`
}

// SetConnectivity feeds a platform reachability signal into the monitor.
func (h *Handler) SetConnectivity(w http.ResponseWriter, r *http.Request) {
	var req connectivityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Online == nil {
		http.Error(w, "online is required", http.StatusBadRequest)
		return
	}
	h.monitor.Set(*req.Online)
	writeJSON(w, http.StatusOK, h.orchestrator.Snapshot(r.Context()))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orchestrator.Data().Sales)
}

type commitResponse struct {
	Transaction store.SaleTransaction `json:"transaction"`
	Committed   bool                  `json:"committed"`
}

func (h *Handler) CommitTransaction(w http.ResponseWriter, r *http.Request) {
	var tx store.SaleTransaction
	if !decode(w, r, &tx) {
		return
	}
	committed, err := h.orchestrator.Commit(r.Context(), tx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commitResponse{Transaction: tx, Committed: committed})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req sync.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.orchestrator.Checkout(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

type statusRequest struct {
	Status        store.TransactionStatus `json:"status"`
	PaymentMethod store.PaymentMethod     `json:"paymentMethod"`
	Actor         string                  `json:"actor"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.orchestrator.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.PaymentMethod, req.Actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	txs, err := h.orchestrator.Pending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type activityRequest struct {
	Actor    store.User        `json:"actor"`
	Action   store.AuditAction `json:"action"`
	Details  string            `json:"details"`
	Severity string            `json:"severity"`
}

func (h *Handler) LogActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Action == "" || req.Actor.Name == "" {
		http.Error(w, "actor and action are required", http.StatusBadRequest)
		return
	}
	entry := h.orchestrator.LogActivity(r.Context(), req.Actor, req.Action, req.Details, req.Severity)
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) list(pick func(sync.Data) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pick(h.orchestrator.Data()))
	}
}

func putEntity[T store.Entity](h *Handler, table store.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if !decode(w, r, &item) {
			return
		}
		if err := h.orchestrator.SaveEntity(r.Context(), table, item); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (h *Handler) deleteEntity(table store.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.orchestrator.DeleteEntity(r.Context(), table, chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warn("Failed to encode response", zap.Error(err))
	}
}

// writeError maps orchestrator errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sync.ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sync.ErrEmptyCart),
		errors.Is(err, sync.ErrInvalidQuantity),
		errors.Is(err, sync.ErrUnknownMenuItem),
		errors.Is(err, sync.ErrInvalidPayment),
		errors.Is(err, sync.ErrInvalidStatus),
		errors.Is(err, sync.ErrMissingActor),
		errors.Is(err, sync.ErrUnsupportedTable),
		errors.Is(err, sync.ErrEntityMismatch),
		errors.Is(err, sync.ErrMissingID):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Log.Error("Request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// RequestLogger logs one line per request through the service logger.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Log.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// CorsMiddleware allows the listed origins, or any origin when the list is
// empty or contains "*".
func CorsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")

			if r.Method == http.MethodOptions {
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware requires "Authorization: Bearer <token>" when token is set.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

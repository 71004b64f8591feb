package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-mysql-org/go-mysql/canal"
	"go.uber.org/zap"

	"pos-sync-service/internal/config"
	"pos-sync-service/internal/logger"
)

// DefaultDebounce collapses bursts of row events into one refresh.
const DefaultDebounce = 2 * time.Second

// ChangeFeed tails the cloud MySQL binlog and calls onChange, debounced,
// whenever a row in one of the POS tables changes. Another terminal's
// writes then reach this one without waiting for the next probe.
type ChangeFeed struct {
	cfg      config.MySQLConfig
	canal    *canal.Canal
	tables   map[string]bool
	onChange func(ctx context.Context)
	debounce time.Duration

	signal chan struct{}
	once   sync.Once
}

func NewChangeFeed(cfg config.MySQLConfig, onChange func(ctx context.Context)) (*ChangeFeed, error) {
	tables := make(map[string]bool, len(remoteTables))
	var tableRegex []string
	for _, t := range remoteTables {
		tables[t] = true
		tableRegex = append(tableRegex, fmt.Sprintf("^%s\\.%s$", cfg.Database, t))
	}

	user, password := cfg.ReplicationUser, cfg.ReplicationPassword
	if user == "" {
		user, password = cfg.User, cfg.Password
	}

	c, err := canal.NewCanal(&canal.Config{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		User:     user,
		Password: password,
		Flavor:   "mysql",
		ServerID: cfg.ServerID,
		Dump: canal.DumpConfig{
			ExecutionPath: "", // binlog only, never mysqldump
		},
		IncludeTableRegex: tableRegex,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create canal: %w", err)
	}

	f := newFeed(cfg, onChange)
	f.tables = tables
	f.canal = c
	c.SetEventHandler(&feedHandler{feed: f})
	return f, nil
}

func newFeed(cfg config.MySQLConfig, onChange func(ctx context.Context)) *ChangeFeed {
	return &ChangeFeed{
		cfg:      cfg,
		onChange: onChange,
		debounce: DefaultDebounce,
		signal:   make(chan struct{}, 1),
	}
}

// Run tails the binlog from the current master position until ctx is done.
func (f *ChangeFeed) Run(ctx context.Context) error {
	pos, err := f.canal.GetMasterPos()
	if err != nil {
		return fmt.Errorf("failed to read master position: %w", err)
	}

	logger.Log.Info("Starting change feed",
		zap.String("host", f.cfg.Host),
		zap.String("file", pos.Name),
		zap.Uint32("pos", pos.Pos),
	)

	go f.loop(ctx)
	go func() {
		<-ctx.Done()
		f.Close()
	}()

	if err := f.canal.RunFrom(pos); err != nil && ctx.Err() == nil {
		return fmt.Errorf("change feed stopped: %w", err)
	}
	return nil
}

func (f *ChangeFeed) Close() {
	f.once.Do(func() {
		f.canal.Close()
		logger.Log.Info("Stopped change feed")
	})
}

// interested reports whether a row event on schema.table should trigger a refresh.
func (f *ChangeFeed) interested(schema, table string) bool {
	return schema == f.cfg.Database && f.tables[table]
}

func (f *ChangeFeed) notify() {
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// loop waits for a signal, lets the burst settle, then refreshes once.
func (f *ChangeFeed) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.signal:
		}

		timer := time.NewTimer(f.debounce)
	settle:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-f.signal:
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(f.debounce)
			case <-timer.C:
				break settle
			}
		}

		logger.Log.Debug("Cloud tables changed, refreshing")
		f.onChange(ctx)
	}
}

type feedHandler struct {
	canal.DummyEventHandler
	feed *ChangeFeed
}

func (h *feedHandler) OnRow(e *canal.RowsEvent) error {
	switch e.Action {
	case canal.InsertAction, canal.UpdateAction, canal.DeleteAction:
	default:
		return nil
	}
	if h.feed.interested(e.Table.Schema, e.Table.Name) {
		h.feed.notify()
	}
	return nil
}

func (h *feedHandler) String() string {
	return "ChangeFeedHandler"
}

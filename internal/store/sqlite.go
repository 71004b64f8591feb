package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"pos-sync-service/internal/database"
	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/store/migrations"
)

// SQLiteStore persists every local table in one SQLite file.
type SQLiteStore struct {
	db *database.Database
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, storageErr("open", "", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, storageErr("migrate", "", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
func (s *SQLiteStore) migrate(fsys fs.FS) error {
	_, err := s.db.DB.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.DB.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		err = s.db.ExecTx(context.Background(), func(tx *sql.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return err
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version)
			return err
		})
		if err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		logger.Log.Debug("Applied migration", zap.String("name", name))
	}

	return nil
}

// ReplaceAll clears and refills table inside one transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, table Table, records []Record) error {
	if err := checkTable("replace_all", table); err != nil {
		return err
	}

	err := s.db.ExecTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			"INSERT OR REPLACE INTO %s (id, data, updated_at) VALUES (?, ?, ?)", table))
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, rec.ID, string(rec.Data), now); err != nil {
				return err
			}
		}
		return nil
	})
	return storageErr("replace_all", table, err)
}

func (s *SQLiteStore) Upsert(ctx context.Context, table Table, record Record) error {
	if err := checkTable("upsert", table); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, data, updated_at) VALUES (?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`, table)

	_, err := s.db.DB.ExecContext(ctx, query, record.ID, string(record.Data), time.Now().UTC())
	return storageErr("upsert", table, err)
}

func (s *SQLiteStore) Get(ctx context.Context, table Table, id string) (*Record, error) {
	if err := checkTable("get", table); err != nil {
		return nil, err
	}

	row := s.db.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT id, data FROM %s WHERE id = ?", table), id)

	var rec Record
	var data string
	err := row.Scan(&rec.ID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get", table, err)
	}
	rec.Data = []byte(data)
	return &rec, nil
}

func (s *SQLiteStore) GetAll(ctx context.Context, table Table) ([]Record, error) {
	if err := checkTable("get_all", table); err != nil {
		return nil, err
	}

	rows, err := s.db.DB.QueryContext(ctx, fmt.Sprintf("SELECT id, data FROM %s", table))
	if err != nil {
		return nil, storageErr("get_all", table, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var data string
		if err := rows.Scan(&rec.ID, &data); err != nil {
			return nil, storageErr("get_all", table, err)
		}
		rec.Data = []byte(data)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get_all", table, err)
	}

	return records, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, table Table, id string) error {
	if err := checkTable("delete", table); err != nil {
		return err
	}

	_, err := s.db.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	return storageErr("delete", table, err)
}

func (s *SQLiteStore) CreateSyncRun(ctx context.Context, run *SyncRun) error {
	query := `INSERT INTO sync_runs (id, kind, started_at, completed_at, status, attempted, committed, failed, error)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.DB.ExecContext(ctx, query,
		run.ID,
		string(run.Kind),
		run.StartedAt.UTC(),
		nullTime(run.CompletedAt),
		run.Status,
		run.Attempted,
		run.Committed,
		run.Failed,
		nullString(run.Error),
	)
	return storageErr("create_sync_run", "", err)
}

func (s *SQLiteStore) UpdateSyncRun(ctx context.Context, run *SyncRun) error {
	query := `UPDATE sync_runs SET completed_at = ?, status = ?, attempted = ?, committed = ?, failed = ?, error = ? WHERE id = ?`

	_, err := s.db.DB.ExecContext(ctx, query,
		nullTime(run.CompletedAt),
		run.Status,
		run.Attempted,
		run.Committed,
		run.Failed,
		nullString(run.Error),
		run.ID,
	)
	return storageErr("update_sync_run", "", err)
}

func (s *SQLiteStore) ListSyncRuns(ctx context.Context, limit, offset int) ([]*SyncRun, error) {
	query := `SELECT id, kind, started_at, completed_at, status, attempted, committed, failed, error
			  FROM sync_runs ORDER BY started_at DESC LIMIT ? OFFSET ?`

	// SQLite reads a negative LIMIT as unbounded.
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, storageErr("list_sync_runs", "", err)
	}
	defer rows.Close()

	var runs []*SyncRun
	for rows.Next() {
		var (
			r         SyncRun
			kind      string
			completed sql.NullTime
			errMsg    sql.NullString
		)
		err := rows.Scan(
			&r.ID,
			&kind,
			&r.StartedAt,
			&completed,
			&r.Status,
			&r.Attempted,
			&r.Committed,
			&r.Failed,
			&errMsg,
		)
		if err != nil {
			return nil, storageErr("list_sync_runs", "", err)
		}
		r.Kind = SyncRunKind(kind)
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		r.Error = errMsg.String
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list_sync_runs", "", err)
	}

	return runs, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

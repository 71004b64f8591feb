package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a non-durable Store used in tests and throwaway terminals.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table]map[string][]byte
	runs   map[string]SyncRun
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		tables: make(map[Table]map[string][]byte, len(Tables)),
		runs:   make(map[string]SyncRun),
	}
	for _, t := range Tables {
		s.tables[t] = make(map[string][]byte)
	}
	return s
}

func (s *MemoryStore) ReplaceAll(_ context.Context, table Table, records []Record) error {
	if err := checkTable("replace_all", table); err != nil {
		return err
	}

	rows := make(map[string][]byte, len(records))
	for _, rec := range records {
		rows[rec.ID] = cloneBytes(rec.Data)
	}

	s.mu.Lock()
	s.tables[table] = rows
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Upsert(_ context.Context, table Table, record Record) error {
	if err := checkTable("upsert", table); err != nil {
		return err
	}

	s.mu.Lock()
	s.tables[table][record.ID] = cloneBytes(record.Data)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, table Table, id string) (*Record, error) {
	if err := checkTable("get", table); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.tables[table][id]
	if !ok {
		return nil, nil
	}
	return &Record{ID: id, Data: cloneBytes(data)}, nil
}

func (s *MemoryStore) GetAll(_ context.Context, table Table) ([]Record, error) {
	if err := checkTable("get_all", table); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, 0, len(s.tables[table]))
	for id, data := range s.tables[table] {
		records = append(records, Record{ID: id, Data: cloneBytes(data)})
	}
	return records, nil
}

func (s *MemoryStore) Delete(_ context.Context, table Table, id string) error {
	if err := checkTable("delete", table); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.tables[table], id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) CreateSyncRun(_ context.Context, run *SyncRun) error {
	s.mu.Lock()
	s.runs[run.ID] = *run
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) UpdateSyncRun(_ context.Context, run *SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; ok {
		s.runs[run.ID] = *run
	}
	return nil
}

func (s *MemoryStore) ListSyncRuns(_ context.Context, limit, offset int) ([]*SyncRun, error) {
	s.mu.RLock()
	runs := make([]*SyncRun, 0, len(s.runs))
	for _, r := range s.runs {
		r := r
		runs = append(runs, &r)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(runs) {
		return []*SyncRun{}, nil
	}
	runs = runs[offset:]
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

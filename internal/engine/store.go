package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"histedit.dev/histedit/internal/plan"
)

// SessionRecord is the durable form of a session. Only sessions holding a
// plan are recorded; everything else is reconstructed from the backend.
type SessionRecord struct {
	Status Status         `json:"status"`
	Plan   *plan.Snapshot `json:"plan"`
}

// Store persists session records between processes. Each CLI invocation is
// a fresh process, so an unpersisted plan would be unreachable by the very
// next command.
type Store interface {
	// Load returns the record for a repository root, or nil when none exists
	Load(repoRoot string) (*SessionRecord, error)
	Save(repoRoot string, record *SessionRecord) error
	Clear(repoRoot string) error
}

// fileStore keeps one record per repository under its .git directory,
// alongside the repo config
type fileStore struct{}

func (fileStore) path(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", ".histedit_session")
}

func (fs fileStore) Load(repoRoot string) (*SessionRecord, error) {
	data, err := os.ReadFile(fs.path(repoRoot))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse session record: %w", err)
	}
	return &record, nil
}

func (fs fileStore) Save(repoRoot string, record *SessionRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	if err := os.WriteFile(fs.path(repoRoot), data, 0600); err != nil {
		return fmt.Errorf("failed to write session record: %w", err)
	}
	return nil
}

func (fs fileStore) Clear(repoRoot string) error {
	err := os.Remove(fs.path(repoRoot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session record: %w", err)
	}
	return nil
}

// memoryStore backs managers whose runner is injected for tests
type memoryStore struct {
	mu      sync.Mutex
	records map[string]*SessionRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*SessionRecord)}
}

func (m *memoryStore) Load(repoRoot string) (*SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[repoRoot], nil
}

func (m *memoryStore) Save(repoRoot string, record *SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[repoRoot] = record
	return nil
}

func (m *memoryStore) Clear(repoRoot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, repoRoot)
	return nil
}

package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	defaultWalDirectory = "wal"
	defaultWALFile      = "wal.log"
)

// Operation is the kind of change an Entry records.
type Operation int

const (
	OperationWrite Operation = iota + 1
	OperationDelete
)

func (o Operation) String() string {
	switch o {
	case OperationWrite:
		return "write"
	case OperationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Cell is one written qualifier.
type Cell struct {
	Family    string `json:"family"`
	Qualifier string `json:"qualifier"`
	Value     []byte `json:"value"`
}

// Entry represents a Write-Ahead Log entry for one row. Writes carry Cells;
// deletes carry the Families they remove.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Operation Operation `json:"op"`
	Table     string    `json:"table"`
	RowKey    []byte    `json:"rowKey"`
	Cells     []Cell    `json:"cells,omitempty"`
	Families  []string  `json:"families,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

type Manager struct {
	mu      sync.Mutex
	walFile *os.File
	path    string
	sync    bool
}

type Config struct {
	// Path where the WAL directory will be saved
	Path string
	// SyncWrites flushes the file to disk after every entry.
	SyncWrites bool
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Path == "" {
		errGrp = append(errGrp, errors.New("wal path cannot be empty"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	walPath := filepath.Join(cfg.Path, defaultWalDirectory, defaultWALFile)
	walDir := filepath.Dir(walPath)
	if err := os.MkdirAll(walDir, 0750); err != nil {
		return nil, errors.New("failed to create WAL directory: " + err.Error())
	}

	// Open WAL file with appropriate permissions
	file, err := os.OpenFile(walPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0640)
	if err != nil {
		return nil, errors.New("failed to open WAL file: " + err.Error())
	}

	return &Manager{
		walFile: file,
		path:    walPath,
		sync:    cfg.SyncWrites,
	}, nil
}

// Path returns the location of the WAL file.
func (m *Manager) Path() string {
	return m.path
}

// Apply appends e to the WAL file as one JSON line. An entry without an ID is
// given a new one.
func (m *Manager) Apply(e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	// Convert the entry to JSON for storage
	jsonData, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.walFile == nil {
		return errors.New("wal is closed")
	}
	if _, err = m.walFile.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write to WAL: %w", err)
	}
	if m.sync {
		if err = m.walFile.Sync(); err != nil {
			return fmt.Errorf("failed to sync WAL: %w", err)
		}
	}
	return nil
}

// Close closes the WAL file. Later calls to Apply fail.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.walFile == nil {
		return nil
	}
	err := m.walFile.Close()
	m.walFile = nil
	return err
}

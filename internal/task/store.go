package task

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// StorageKey is the key every task is saved under.
const StorageKey = "tasks"

// KV is a string key-value store such as kv.File or kv.Memory.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set overwrites the value for key.
	Set(key, value string) error
}

// Store reads and writes the full task sequence under StorageKey.
type Store struct {
	kv       KV
	trusting bool
	logger   *log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTrustingLoad makes Load decode stored data without validating it.
func WithTrustingLoad() StoreOption {
	return func(s *Store) {
		s.trusting = true
	}
}

// WithStoreLogger sets the logger used for store operations.
func WithStoreLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store backed by kv.
func NewStore(kv KV, opts ...StoreOption) *Store {
	s := &Store{
		kv:     kv,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the saved sequence, or an empty one if nothing is saved.
// A value that cannot be read back as tasks yields a *MalformedStoreError.
func (s *Store) Load() ([]Task, error) {
	value, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read task store: %w", err)
	}
	if !ok {
		s.logger.Debug("no saved tasks", "key", StorageKey)
		return []Task{}, nil
	}

	tasks, err := s.decode([]byte(value))
	if err != nil {
		return nil, &MalformedStoreError{Key: StorageKey, Err: err}
	}
	s.logger.Debug("loaded tasks", "key", StorageKey, "count", len(tasks))
	return tasks, nil
}

func (s *Store) decode(data []byte) ([]Task, error) {
	if !s.trusting {
		var doc interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		if err := validateStoreDocument(doc); err != nil {
			return nil, err
		}
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}

	if !s.trusting {
		if err := checkUniqueIDs(tasks); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// Save overwrites the stored value with the full sequence.
func (s *Store) Save(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("write task store: %w", err)
	}
	s.logger.Debug("saved tasks", "key", StorageKey, "count", len(tasks))
	return nil
}

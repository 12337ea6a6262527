package task

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
)

// Service creates and loads tasks. It holds no task state of its own: the
// caller owns the current sequence and passes it to Create.
type Service struct {
	store  *Store
	newID  func() string
	logger *log.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIDFunc replaces NewID as the source of task IDs.
func WithIDFunc(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service that persists through store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		newID:  NewID,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates raw, appends the new task to current and saves the
// result. On a validation failure the error is a FieldErrors and nothing is
// written. current itself is never modified.
func (s *Service) Create(raw RawInput, current []Task) ([]Task, error) {
	v, err := Validate(raw)
	if err != nil {
		s.logger.Debug("task rejected", "err", err)
		return nil, err
	}

	t := Task{
		ID:          s.newID(),
		Title:       v.Title,
		Description: v.Description,
		Status:      v.Status,
	}
	next := make([]Task, len(current), len(current)+1)
	copy(next, current)
	next = append(next, t)

	if err := s.store.Save(next); err != nil {
		return nil, err
	}
	s.logger.Debug("task created", "id", t.ID, "total", len(next))
	return next, nil
}

// LoadInitial returns the saved sequence.
func (s *Service) LoadInitial() ([]Task, error) {
	return s.store.Load()
}

// LoadInitialOrEmpty is LoadInitial with a fallback for unreadable saved
// data: on a *MalformedStoreError it returns an empty sequence together
// with the error so the caller can report it and carry on. Other errors
// are returned with a nil sequence.
func (s *Service) LoadInitialOrEmpty() ([]Task, error) {
	tasks, err := s.store.Load()
	if err == nil {
		return tasks, nil
	}
	if errors.Is(err, ErrMalformedStore) {
		s.logger.Warn("ignoring unreadable saved tasks", "err", err)
		return []Task{}, err
	}
	return nil, err
}

// CountByStatus returns completed and incomplete totals for tasks.
func (s *Service) CountByStatus(tasks []Task) Counts {
	return CountByStatus(tasks)
}

package taskstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/view"
)

// Store holds the canonical State. Transitions are applied one at a time and
// readers only ever see complete snapshots.
type Store struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
	newID func() string
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides task id assignment.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithTasks seeds the store.
func WithTasks(tasks ...task.Task) Option {
	return func(s *Store) {
		s.state = s.state.withTasks(task.CloneAll(tasks))
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		state: Initial(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Now reads the store clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Get returns a copy of the task with id.
func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Find(id)
}

// Dispatch applies a to the current state. On error the state is unchanged.
func (s *Store) Dispatch(a Action) (State, error) {
	if a.At.IsZero() {
		a.At = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reduce(s.state, a)
	if err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	return next.Clone(), nil
}

// AddTask validates d, assigns a fresh id and timestamps and appends it.
func (s *Store) AddTask(d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}
	t := d.Build(s.newID(), s.now())
	if _, err := s.Dispatch(Add(t)); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask replaces the task with the same id.
func (s *Store) UpdateTask(t task.Task) (task.Task, error) {
	return s.apply(Update(t), t.ID)
}

// DeleteTask removes id. Unknown ids are ignored.
func (s *Store) DeleteTask(id string) error {
	_, err := s.Dispatch(Delete(id))
	return err
}

// CompleteTask toggles the status of id.
func (s *Store) CompleteTask(id string) (task.Task, error) {
	return s.apply(Complete(id), id)
}

// VerifyOnChain marks id as verified. Callers must have confirmed the ledger
// side first.
func (s *Store) VerifyOnChain(id string) (task.Task, error) {
	return s.apply(Verify(id), id)
}

// SetFilter changes the active filter.
func (s *Store) SetFilter(f view.Filter) (State, error) {
	return s.Dispatch(SetFilter(f))
}

// SetSort changes the active sort key.
func (s *Store) SetSort(k view.SortKey) (State, error) {
	return s.Dispatch(SetSort(k))
}

func (s *Store) apply(a Action, id string) (task.Task, error) {
	next, err := s.Dispatch(a)
	if err != nil {
		return task.Task{}, err
	}
	t, _ := next.Find(id)
	return t, nil
}

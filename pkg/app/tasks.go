package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logger "github.com/kthomas/go-logger"

	"tableflip.dev/taskverse/pkg/ai"
	"tableflip.dev/taskverse/pkg/analytics"
	"tableflip.dev/taskverse/pkg/logging"
	"tableflip.dev/taskverse/pkg/store"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/view"
)

// TaskService runs task operations against persistence and applies their
// results to the task store. Each mutation is validated against the current
// snapshot, written to persistence, then dispatched. Concurrent operations
// run one at a time so the store never diverges from what was saved.
type TaskService struct {
	store   *taskstore.Store
	tasks   store.Tasks
	ai      ai.Prioritizer
	latency time.Duration
	log     *logger.Logger
	tracker tracker

	// opMu covers each persistence round trip and its dispatch.
	opMu sync.Mutex

	hookMu sync.Mutex
	onSync func(taskstore.State)
}

// TaskOption customises a TaskService.
type TaskOption func(*TaskService)

// WithPrioritizer sets the AI collaborator. Defaults to the canned one.
func WithPrioritizer(p ai.Prioritizer) TaskOption {
	return func(s *TaskService) {
		s.ai = p
	}
}

// WithLatency delays every collaborator call by d.
func WithLatency(d time.Duration) TaskOption {
	return func(s *TaskService) {
		s.latency = d
	}
}

// WithTaskLogger sets the logger.
func WithTaskLogger(l *logger.Logger) TaskOption {
	return func(s *TaskService) {
		s.log = l
	}
}

// NewTaskService returns a facade over st. A nil tasks keeps everything in
// memory.
func NewTaskService(st *taskstore.Store, tasks store.Tasks, opts ...TaskOption) *TaskService {
	s := &TaskService{store: st, tasks: tasks}
	for _, opt := range opts {
		opt(s)
	}
	if s.ai == nil {
		s.ai = ai.NewCanned(0)
	}
	s.log = logging.Or(s.log)
	return s
}

// State returns the current task store snapshot.
func (s *TaskService) State() taskstore.State {
	return s.store.Snapshot()
}

// Status reports in-flight operations and the last failure.
func (s *TaskService) Status() Status {
	return s.tracker.status()
}

// Now returns the store clock.
func (s *TaskService) Now() time.Time {
	return s.store.Now()
}

// Get returns the task with id.
func (s *TaskService) Get(id string) (task.Task, bool) {
	return s.store.Get(id)
}

func (s *TaskService) external(op string, err error) error {
	s.log.Warningf("app: %s failed; %s", op, err.Error())
	return fmt.Errorf("%w: %s: %w", ErrExternalCallFailed, op, err)
}

// Fetch reloads the collection from persistence.
func (s *TaskService) Fetch(ctx context.Context) (taskstore.State, error) {
	s.tracker.begin()
	_, _ = s.store.Dispatch(taskstore.FetchRequest())
	s.log.Debugf("app: fetching tasks")

	s.opMu.Lock()
	defer s.opMu.Unlock()
	tasks, err := s.list(ctx)
	if err != nil {
		err = s.external("fetch tasks", err)
		st, _ := s.store.Dispatch(taskstore.FetchFailure(err.Error()))
		s.tracker.end(err)
		return st, err
	}
	st, err := s.store.Dispatch(taskstore.FetchSuccess(tasks))
	s.tracker.end(err)
	if err == nil {
		s.log.Debugf("app: fetched %d tasks", len(tasks))
	}
	return st, err
}

func (s *TaskService) list(ctx context.Context) ([]task.Task, error) {
	if err := sleep(ctx, s.latency); err != nil {
		return nil, err
	}
	if s.tasks == nil {
		return s.store.Snapshot().Tasks, nil
	}
	records, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]task.Task, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToTask())
	}
	return out, nil
}

// Add creates a task from d.
func (s *TaskService) Add(ctx context.Context, d task.Draft) (task.Task, error) {
	s.tracker.begin()
	t, err := s.add(ctx, d)
	s.tracker.end(err)
	return t, err
}

func (s *TaskService) add(ctx context.Context, d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := sleep(ctx, s.latency); err != nil {
		return task.Task{}, s.external("add task", err)
	}
	if s.tasks == nil {
		return s.store.AddTask(d)
	}

	r, err := s.tasks.CreateTask(fieldsFor(d))
	if err != nil {
		if errors.Is(err, task.ErrValidation) {
			return task.Task{}, err
		}
		return task.Task{}, s.external("add task", err)
	}
	t := r.ToTask()
	if _, err := s.store.Dispatch(taskstore.Add(t)); err != nil {
		return task.Task{}, err
	}
	s.log.Debugf("app: added task %s", t.ID)
	return t, nil
}

func fieldsFor(d task.Draft) store.TaskFields {
	return store.TaskFields{
		Title:              d.Title,
		Description:        d.Description,
		Type:               store.TypeFor(d.Category),
		Category:           d.Category,
		Deadline:           d.DueDate,
		Priority:           store.PriorityToInt(d.Priority),
		Completed:          d.Status == task.StatusCompleted,
		BlockchainVerified: d.BlockchainVerified,
	}
}

// Update replaces the stored fields of t. Creation time and a prior
// verification are kept.
func (s *TaskService) Update(ctx context.Context, t task.Task) (task.Task, error) {
	return s.mutate(ctx, "update task", taskstore.Update(t), t.ID)
}

// Complete toggles the status of id.
func (s *TaskService) Complete(ctx context.Context, id string) (task.Task, error) {
	return s.mutate(ctx, "complete task", taskstore.Complete(id), id)
}

// VerifyOnChain records that id has been confirmed on the ledger.
func (s *TaskService) VerifyOnChain(ctx context.Context, id string) (task.Task, error) {
	return s.mutate(ctx, "verify task", taskstore.Verify(id), id)
}

// Delete removes id. Unknown ids are ignored.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	s.tracker.begin()
	err := s.delete(ctx, id)
	s.tracker.end(err)
	return err
}

func (s *TaskService) delete(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := sleep(ctx, s.latency); err != nil {
		return s.external("delete task", err)
	}
	if s.tasks != nil {
		if err := s.tasks.DeleteTask(id); err != nil {
			return s.external("delete task", err)
		}
	}
	_, err := s.store.Dispatch(taskstore.Delete(id))
	if err == nil {
		s.log.Debugf("app: deleted task %s", id)
	}
	return err
}

// mutate previews a on the current snapshot, persists the resulting task and
// dispatches a.
func (s *TaskService) mutate(ctx context.Context, op string, a taskstore.Action, id string) (task.Task, error) {
	s.tracker.begin()
	t, err := s.apply(ctx, op, a, id)
	s.tracker.end(err)
	return t, err
}

func (s *TaskService) apply(ctx context.Context, op string, a taskstore.Action, id string) (task.Task, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	a.At = s.store.Now()
	next, err := taskstore.Reduce(s.store.Snapshot(), a)
	if err != nil {
		return task.Task{}, err
	}
	t, _ := next.Find(id)

	if err := sleep(ctx, s.latency); err != nil {
		return task.Task{}, s.external(op, err)
	}
	if s.tasks != nil {
		if err := s.tasks.SaveTask(store.FromTask(t)); err != nil {
			return task.Task{}, s.external(op, err)
		}
	}
	st, err := s.store.Dispatch(a)
	if err != nil {
		return task.Task{}, err
	}
	if applied, ok := st.Find(id); ok {
		t = applied
	}
	s.log.Debugf("app: %s %s", op, id)
	return t, nil
}

// SetFilter changes the active filter.
func (s *TaskService) SetFilter(f view.Filter) (taskstore.State, error) {
	return s.store.SetFilter(f)
}

// SetSort changes the active sort key.
func (s *TaskService) SetSort(k view.SortKey) (taskstore.State, error) {
	return s.store.SetSort(k)
}

// Prioritize asks the AI collaborator for advice and records its tip. The
// collection order is left alone.
func (s *TaskService) Prioritize(ctx context.Context) (ai.Result, error) {
	s.tracker.begin()
	res, err := s.ai.Prioritize(ctx, s.store.Snapshot().Tasks)
	if err != nil {
		err = s.external("prioritize tasks", err)
		s.tracker.end(err)
		return ai.Result{}, err
	}
	_, err = s.store.Dispatch(taskstore.SetAITip(res.MotivationalTip))
	s.tracker.end(err)
	return res, err
}

// Analytics computes completion statistics over the collection.
func (s *TaskService) Analytics(ctx context.Context) (analytics.Summary, error) {
	s.tracker.begin()
	if err := sleep(ctx, s.latency); err != nil {
		err = s.external("analytics", err)
		s.tracker.end(err)
		return analytics.Summary{}, err
	}
	sum := analytics.Compute(s.store.Snapshot().Tasks, s.store.Now())
	_, err := s.store.Dispatch(taskstore.SetAnalytics(sum))
	s.tracker.end(err)
	return sum, err
}

// OnSync registers fn to run after each reload performed by Sync.
// A nil fn removes the hook.
func (s *TaskService) OnSync(fn func(taskstore.State)) {
	s.hookMu.Lock()
	s.onSync = fn
	s.hookMu.Unlock()
}

// Sync reloads the collection whenever persistence reports a task change.
// It returns when events closes or ctx is done.
func (s *TaskService) Sync(ctx context.Context, events <-chan store.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Type == store.EventUsersChanged {
				continue
			}
			st, err := s.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Debugf("app: sync after %s event; %s", ev.Type, err.Error())
				continue
			}
			s.hookMu.Lock()
			fn := s.onSync
			s.hookMu.Unlock()
			if fn != nil {
				fn(st)
			}
		}
	}
}

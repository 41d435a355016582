package scheduling

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/metrics"
	"github.com/storytellerbot/storyteller/models"
)

const (
	// TickInterval is the cadence the scheduler checks for due tasks on
	TickInterval = 1 * time.Second

	// DefaultLateness is how late a task may acceptably fire when no
	// threshold is configured
	DefaultLateness = 10 * time.Second
)

var (
	ErrDuplicateTask = errors.New("scheduling: task is already scheduled")
	ErrTaskNotFound  = errors.New("scheduling: task is not scheduled")
)

// Global pointer to the scheduler instance
var Tasks = &Scheduler{}

// Scheduler owns the set of pending timed tasks and fires them when their
// expiry time arrives. Mutations of the task set are mutex-guarded since
// discord events and the tick loop run on separate goroutines.
type Scheduler struct {
	sync.Mutex

	tasks    map[string]*TimedTask
	handlers map[string]ExpiryFunc
	lateness time.Duration
}

// Init allocates the task set. $lateness is the tolerance by which a task
// may fire after its expiry time, values <= 0 select DefaultLateness.
func (s *Scheduler) Init(lateness time.Duration) {
	if lateness <= 0 {
		lateness = DefaultLateness
	}

	s.Lock()
	s.tasks = make(map[string]*TimedTask)
	s.handlers = make(map[string]ExpiryFunc)
	s.lateness = lateness
	s.Unlock()
}

// RegisterAction binds an action kind to its handler. Registration has to
// happen before any task with that kind is scheduled or restored.
func (s *Scheduler) RegisterAction(kind string, handler ExpiryFunc) {
	s.Lock()
	s.handlers[kind] = handler
	s.Unlock()
}

// ScheduleTask registers $task to fire at its expiry time
func (s *Scheduler) ScheduleTask(task *TimedTask) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return ErrDuplicateTask
	}
	s.tasks[task.ID] = task

	metrics.TasksScheduled.Add(1)
	return nil
}

// CancelTask removes $task before it fires
func (s *Scheduler) CancelTask(task *TimedTask) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, task.ID)
	return nil
}

// PendingTasks returns the number of currently scheduled tasks
func (s *Scheduler) PendingTasks() int {
	s.Lock()
	defer s.Unlock()

	return len(s.tasks)
}

// Tick fires every task whose expiry time is at most $now plus the
// lateness tolerance. Due tasks leave the set before their handlers run,
// concurrent due tasks fire in no particular order. A handler panic is
// logged by the task and does not stop the remaining tasks.
func (s *Scheduler) Tick(now time.Time) {
	s.Lock()
	deadline := now.Add(s.lateness)
	due := make([]*TimedTask, 0)
	for id, task := range s.tasks {
		if !task.ExpiryTime.After(deadline) {
			due = append(due, task)
			if !task.AutoReschedule {
				delete(s.tasks, id)
			}
		}
	}
	handlers := make([]ExpiryFunc, len(due))
	for i, task := range due {
		handlers[i] = s.handlers[task.Action.Kind]
	}
	s.Unlock()

	for i, task := range due {
		if handlers[i] == nil {
			cache.GetLogger().WithField("module", "scheduling").Error(
				"no handler registered for action kind: " + task.Action.Kind)
			continue
		}
		// a task still busy in an earlier tick's handler must not rearm
		if !task.fire(handlers[i]) {
			continue
		}
		metrics.TasksFired.Add(1)
		if task.AutoReschedule {
			task.rearm()
		}
	}
}

// Run drives Tick on a fixed cadence until $stop closes
func (s *Scheduler) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.Tick(now.UTC())
		case <-stop:
			return
		}
	}
}

// Snapshot serializes all pending tasks for persistence. Transient tasks
// are skipped, their owners persist them through their own snapshots.
func (s *Scheduler) Snapshot() map[string]models.TaskSnapshot {
	s.Lock()
	defer s.Unlock()

	snapshot := make(map[string]models.TaskSnapshot, len(s.tasks))
	for id, task := range s.tasks {
		if task.Transient {
			continue
		}
		snapshot[id] = models.TaskSnapshot{
			Expiry:         task.ExpiryTime.Unix(),
			ActionKind:     task.Action.Kind,
			ActionArg:      task.Action.Arg,
			AutoReschedule: task.AutoReschedule,
			RescheduleSecs: int64(task.RescheduleEvery / time.Second),
		}
	}
	return snapshot
}

// Restore re-registers tasks from a persisted snapshot. Tasks whose
// deadline elapsed during downtime fire immediately, synchronously. Tasks
// with an unregistered action kind are logged and dropped.
func (s *Scheduler) Restore(snapshot map[string]models.TaskSnapshot) {
	now := time.Now().UTC()

	for id, entry := range snapshot {
		s.Lock()
		handler, known := s.handlers[entry.ActionKind]
		s.Unlock()
		if !known {
			cache.GetLogger().WithField("module", "scheduling").Error(
				"dropping persisted task with unknown action kind: " + entry.ActionKind)
			continue
		}

		task := &TimedTask{
			ID:              id,
			ExpiryTime:      time.Unix(entry.Expiry, 0).UTC(),
			Action:          Action{Kind: entry.ActionKind, Arg: entry.ActionArg},
			AutoReschedule:  entry.AutoReschedule,
			RescheduleEvery: time.Duration(entry.RescheduleSecs) * time.Second,
		}

		if task.ExpiryTime.After(now) {
			RelaxScheduleLog(s.ScheduleTask(task))
			continue
		}

		// deadline elapsed while the bot was down
		task.fire(handler)
		if task.AutoReschedule {
			task.rearm()
			RelaxScheduleLog(s.ScheduleTask(task))
		}
	}
}

// RelaxScheduleLog logs scheduling errors without interrupting the caller
func RelaxScheduleLog(err error) {
	if err != nil {
		cache.GetLogger().WithField("module", "scheduling").Error(err.Error())
	}
}

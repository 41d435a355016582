package scheduling

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/raven-go"
	uuid "github.com/satori/go.uuid"
	"github.com/storytellerbot/storyteller/cache"
)

// ExpiryFunc is a handler fired when a task expires, receiving the task's
// stored argument
type ExpiryFunc func(arg string)

// Action names the work to perform when a task expires. Kind is resolved
// to a registered handler, which keeps the action serializable: function
// references never get persisted, only the kind tag and its argument.
type Action struct {
	Kind string
	Arg  string
}

// TimedTask is one deferred callback owned by the scheduler from
// registration until it fires or is cancelled. The expiry time is set
// exactly once, at creation.
type TimedTask struct {
	ID         string
	ExpiryTime time.Time
	Action     Action

	// AutoReschedule re-arms the task by RescheduleEvery after each fire
	// instead of removing it
	AutoReschedule  bool
	RescheduleEvery time.Duration

	// Transient tasks are excluded from Snapshot. Whoever schedules one
	// restores it through its own persistence.
	Transient bool

	expired     bool
	expiredLock sync.Mutex
}

// NewTimedTask creates a task expiring at the absolute time $expiry
func NewTimedTask(action Action, expiry time.Time) *TimedTask {
	return &TimedTask{
		ID:         uuid.NewV4().String(),
		ExpiryTime: expiry,
		Action:     action,
	}
}

// NewTimedTaskIn creates a task expiring $delay from now
func NewTimedTaskIn(action Action, delay time.Duration) *TimedTask {
	return NewTimedTask(action, time.Now().UTC().Add(delay))
}

// Expired returns true once the task has fired
func (t *TimedTask) Expired() bool {
	t.expiredLock.Lock()
	defer t.expiredLock.Unlock()

	return t.expired
}

// fire runs the task's handler exactly once, reporting whether this call
// was the one that ran it. The expired flag flips before the handler is
// invoked so a re-entrant tick can not double-fire, and handler panics
// are contained to the task.
func (t *TimedTask) fire(handler ExpiryFunc) (fired bool) {
	t.expiredLock.Lock()
	if t.expired {
		t.expiredLock.Unlock()
		return false
	}
	t.expired = true
	t.expiredLock.Unlock()

	defer func() {
		if err := recover(); err != nil {
			cache.GetLogger().WithField("module", "scheduling").Error(
				fmt.Sprintf("task %s (%s) panicked: %#v", t.ID, t.Action.Kind, err))
			raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{
				"TaskID":     t.ID,
				"ActionKind": t.Action.Kind,
			})
		}
	}()

	fired = true
	handler(t.Action.Arg)
	return fired
}

// rearm prepares an auto-rescheduling task for its next fire
func (t *TimedTask) rearm() {
	t.expiredLock.Lock()
	t.expired = false
	t.ExpiryTime = time.Now().UTC().Add(t.RescheduleEvery)
	t.expiredLock.Unlock()
}

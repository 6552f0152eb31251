package host

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/pdxmph/softphone-sync/internal/logging"
)

// Action names a task lifecycle event
type Action string

// Lifecycle actions extensions can listen to
const (
	BeforeAcceptTask  Action = "beforeAcceptTask"
	AfterCompleteTask Action = "afterCompleteTask"
	AfterWrapupTask   Action = "afterWrapupTask"
)

// Payload accompanies a dispatched action
type Payload struct {
	Task *Task
}

// Handler reacts to a dispatched action
type Handler func(Payload) error

// Registration is returned by AddListener and removes the listener
type Registration interface {
	Remove() bool
}

type listener struct {
	id      string
	action  Action
	handler Handler
}

// Dispatcher delivers lifecycle actions to listeners synchronously, in
// registration order.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[Action][]listener
	log       *logging.Logger
}

// NewDispatcher creates an empty Dispatcher
func NewDispatcher(log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Dispatcher{
		listeners: make(map[Action][]listener),
		log:       log.WithComponent("dispatcher"),
	}
}

// AddListener registers handler for action
func (d *Dispatcher) AddListener(action Action, handler Handler) Registration {
	d.mu.Lock()
	defer d.mu.Unlock()

	l := listener{id: uuid.NewString(), action: action, handler: handler}
	d.listeners[action] = append(d.listeners[action], l)
	return &registration{dispatcher: d, id: l.id, action: action}
}

type registration struct {
	dispatcher *Dispatcher
	id         string
	action     Action
}

func (r *registration) Remove() bool {
	return r.dispatcher.remove(r.action, r.id)
}

func (d *Dispatcher) remove(action Action, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.listeners[action]
	for i, l := range subs {
		if l.id == id {
			d.listeners[action] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch runs every listener for action. Listener errors and panics are
// reported and joined into the returned error; remaining listeners still run.
func (d *Dispatcher) Dispatch(action Action, payload Payload) error {
	d.mu.RLock()
	subs := make([]listener, len(d.listeners[action]))
	copy(subs, d.listeners[action])
	d.mu.RUnlock()

	var errs []error
	for _, l := range subs {
		if err := d.safeCall(l, payload); err != nil {
			d.log.Error("listener failed", "action", string(action), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) safeCall(l listener, payload Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("listener panicked", "action", string(l.action), "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			err = fmt.Errorf("listener for %s panicked: %v", l.action, r)
		}
	}()
	return l.handler(payload)
}

// ListenerCount returns the number of listeners for action
func (d *Dispatcher) ListenerCount(action Action) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[action])
}

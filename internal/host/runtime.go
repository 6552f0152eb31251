package host

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runtime is an in-memory contact-center runtime: it owns the worker's
// tasks and chat channels and dispatches lifecycle actions as tasks move
// through accept, wrap-up and completion.
type Runtime struct {
	mu       sync.Mutex
	tasks    []Task
	channels map[string]ChatChannel

	config     *UIConfig
	dispatcher *Dispatcher
	now        func() time.Time
}

// NewRuntime creates a runtime dispatching through d
func NewRuntime(d *Dispatcher) *Runtime {
	return &Runtime{
		channels:   make(map[string]ChatChannel),
		config:     NewUIConfig(),
		dispatcher: d,
		now:        time.Now,
	}
}

// Config returns the UI configuration document
func (r *Runtime) Config() *UIConfig {
	return r.config
}

// UpdateConfig merges a partial UI configuration
func (r *Runtime) UpdateConfig(patch ConfigPatch) error {
	return r.config.UpdateConfig(patch)
}

// State returns a snapshot of tasks and chat channels
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return NewState(r.tasks, r.channels)
}

// AddTask creates a pending task on the given channel. Chat tasks get a
// fresh chat channel with an empty message sequence.
func (r *Runtime) AddTask(channel string) Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := Task{
		SID:                   "WT" + compactID(),
		Status:                StatusPending,
		TaskChannelUniqueName: channel,
	}
	if channel == ChannelChat {
		chSID := "CH" + compactID()
		t.Attributes.ChannelSID = chSID
		r.channels[chSID] = ChatChannel{SID: chSID, Messages: []Message{}}
	}
	r.tasks = append(r.tasks, t)
	return t
}

// AcceptTask dispatches beforeAcceptTask and then marks the task accepted.
// A failing listener aborts the accept.
func (r *Runtime) AcceptTask(sid string) error {
	t, err := r.taskInStatus(sid, StatusPending)
	if err != nil {
		return err
	}
	if err := r.dispatcher.Dispatch(BeforeAcceptTask, Payload{Task: &t}); err != nil {
		return fmt.Errorf("accepting task %s: %w", sid, err)
	}
	_, err = r.setStatus(sid, StatusAccepted)
	return err
}

// WrapupTask moves an accepted task to wrap-up and dispatches afterWrapupTask.
func (r *Runtime) WrapupTask(sid string) error {
	if _, err := r.taskInStatus(sid, StatusAccepted); err != nil {
		return err
	}
	t, err := r.setStatus(sid, StatusWrapping)
	if err != nil {
		return err
	}
	if err := r.dispatcher.Dispatch(AfterWrapupTask, Payload{Task: &t}); err != nil {
		return fmt.Errorf("wrapping up task %s: %w", sid, err)
	}
	return nil
}

// CompleteTask completes a task in wrap-up and dispatches afterCompleteTask.
func (r *Runtime) CompleteTask(sid string) error {
	if _, err := r.taskInStatus(sid, StatusWrapping); err != nil {
		return err
	}
	t, err := r.setStatus(sid, StatusCompleted)
	if err != nil {
		return err
	}
	if err := r.dispatcher.Dispatch(AfterCompleteTask, Payload{Task: &t}); err != nil {
		return fmt.Errorf("completing task %s: %w", sid, err)
	}
	return nil
}

// RemoveTask drops a task from the worker's task list
func (r *Runtime) RemoveTask(sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks {
		if t.SID == sid {
			r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", sid, ErrNotFound)
}

// AppendMessage adds a message to a chat channel
func (r *Runtime) AppendMessage(channelSID, author, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[channelSID]
	if !ok {
		return fmt.Errorf("chat channel %s: %w", channelSID, ErrNotFound)
	}
	ch.Messages = append(ch.Messages, Message{Source: MessageSource{
		AuthorName: author,
		Body:       body,
		Timestamp:  r.now().UTC().Format(time.RFC3339),
	}})
	r.channels[channelSID] = ch
	return nil
}

func (r *Runtime) taskInStatus(sid, status string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.SID == sid {
			if t.Status != status {
				return Task{}, fmt.Errorf("task %s is %s, expected %s", sid, t.Status, status)
			}
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("task %s: %w", sid, ErrNotFound)
}

func (r *Runtime) setStatus(sid, status string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tasks {
		if r.tasks[i].SID == sid {
			r.tasks[i].Status = status
			return r.tasks[i], nil
		}
	}
	return Task{}, fmt.Errorf("task %s: %w", sid, ErrNotFound)
}

func compactID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:16])
}

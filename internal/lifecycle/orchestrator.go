// Package lifecycle wires the CRM integration into the task lifecycle of the
// agent desktop. It registers one handler per lifecycle action:
//
//   - beforeAcceptTask widens the softphone panel and shows the secondary panel
//   - afterCompleteTask narrows it and hides the panel once every task is done
//   - afterWrapupTask writes the chat transcript of a chat task to the CRM
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pdxmph/softphone-sync/internal/config"
	"github.com/pdxmph/softphone-sync/internal/crm"
	"github.com/pdxmph/softphone-sync/internal/crmlog"
	"github.com/pdxmph/softphone-sync/internal/host"
	"github.com/pdxmph/softphone-sync/internal/logging"
	"github.com/pdxmph/softphone-sync/internal/panel"
	"github.com/pdxmph/softphone-sync/internal/transcript"
)

// ErrMalformedState is returned by handlers when the host state lacks data
// the handler needs.
var ErrMalformedState = errors.New("malformed host state")

// Listener registers lifecycle handlers
type Listener interface {
	AddListener(action host.Action, handler host.Handler) host.Registration
}

// Host exposes runtime state snapshots and UI configuration
type Host interface {
	State() host.State
	UpdateConfig(patch host.ConfigPatch) error
}

// Options carries the values the handlers apply
type Options struct {
	Origin    string
	RecordID  string
	FullWidth int
	HalfWidth int
}

// OptionsFromConfig derives Options from the application configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Origin:    cfg.CRM.Origin,
		RecordID:  cfg.CRM.RecordID,
		FullWidth: cfg.Panel.FullWidth,
		HalfWidth: cfg.Panel.HalfWidth,
	}
}

// Orchestrator owns the lifecycle registrations
type Orchestrator struct {
	opts     Options
	slot     *crm.Slot
	loader   *crm.Loader
	listener Listener
	host     Host
	log      *logging.Logger

	width         *panel.WidthController
	layout        *panel.LayoutController
	writer        *crmlog.Writer
	registrations []host.Registration
	// loadedAPI is set when Start filled an empty slot.
	loadedAPI bool

	mu      sync.Mutex
	pending []*crm.Call
}

// New creates an Orchestrator. Nothing is registered until Start.
func New(opts Options, slot *crm.Slot, loader *crm.Loader, listener Listener, h Host, log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Orchestrator{
		opts:     opts,
		slot:     slot,
		loader:   loader,
		listener: listener,
		host:     h,
		log:      log.WithComponent("lifecycle"),
	}
}

// Start detects the CRM, makes sure the toolkit API is loaded and registers
// the lifecycle handlers. Running outside the CRM or without the API is
// logged and leaves the orchestrator inactive; neither is an error.
func (o *Orchestrator) Start(ctx context.Context) error {
	if o.Active() {
		return errors.New("orchestrator already started")
	}

	if !crm.IsHosted(o.opts.Origin) {
		o.log.Warn("not initializing CRM integration, desktop launched outside the CRM", "origin", o.opts.Origin)
		return nil
	}

	_, preloaded := o.slot.Get()
	api, err := o.loader.Ensure(ctx, o.opts.Origin)
	if err != nil {
		if errors.Is(err, crm.ErrUnavailable) || errors.Is(err, crm.ErrNotHosted) {
			o.log.Error("CRM telephony API cannot be found", "origin", o.opts.Origin, "error", err)
			return nil
		}
		return fmt.Errorf("loading CRM API: %w", err)
	}

	o.loadedAPI = !preloaded
	o.width = panel.NewWidthController(api, o.log)
	o.layout = panel.NewLayoutController(o.host)
	o.writer = crmlog.NewWriter(api, o.log)

	o.registrations = []host.Registration{
		o.listener.AddListener(host.BeforeAcceptTask, o.beforeAcceptTask),
		o.listener.AddListener(host.AfterCompleteTask, o.afterCompleteTask),
		o.listener.AddListener(host.AfterWrapupTask, o.afterWrapupTask),
	}
	o.log.Info("CRM integration initialized", "origin", o.opts.Origin, "lightning", crm.IsLightning(o.opts.Origin))
	return nil
}

// Active reports whether the handlers are registered
func (o *Orchestrator) Active() bool {
	return len(o.registrations) > 0
}

// Close removes the handlers, waits for CRM calls still in flight and
// releases the toolkit API if Start loaded it. Waiting stops when ctx is
// done; the API is released either way.
func (o *Orchestrator) Close(ctx context.Context) error {
	if !o.Active() {
		return nil
	}
	for _, reg := range o.registrations {
		reg.Remove()
	}
	o.registrations = nil

	err := o.drain(ctx)
	if o.loadedAPI {
		o.slot.Clear()
		o.loadedAPI = false
	}
	return err
}

// Pending returns the number of CRM calls that have not completed yet
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prune()
	return len(o.pending)
}

func (o *Orchestrator) track(c *crm.Call) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prune()
	o.pending = append(o.pending, c)
}

// prune drops completed calls. Callers hold o.mu.
func (o *Orchestrator) prune() {
	kept := o.pending[:0]
	for _, c := range o.pending {
		if _, done := c.Result(); !done {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(o.pending); i++ {
		o.pending[i] = nil
	}
	o.pending = kept
}

func (o *Orchestrator) drain(ctx context.Context) error {
	o.mu.Lock()
	calls := o.pending
	o.pending = nil
	o.mu.Unlock()

	for i, c := range calls {
		select {
		case <-c.Done():
		case <-ctx.Done():
			o.log.Error("abandoning CRM calls still in flight", "pending", len(calls)-i, "error", ctx.Err())
			return fmt.Errorf("waiting for CRM calls: %w", ctx.Err())
		}
	}
	return nil
}

func (o *Orchestrator) beforeAcceptTask(host.Payload) error {
	o.track(o.width.SetWidth(o.opts.FullWidth))
	return o.layout.SetSecondaryPanelVisible(true)
}

func (o *Orchestrator) afterCompleteTask(host.Payload) error {
	if !AllComplete(o.host.State().Tasks()) {
		return nil
	}
	o.track(o.width.SetWidth(o.opts.HalfWidth))
	return o.layout.SetSecondaryPanelVisible(false)
}

func (o *Orchestrator) afterWrapupTask(p host.Payload) error {
	if p.Task == nil {
		return fmt.Errorf("%w: %s without a task", ErrMalformedState, host.AfterWrapupTask)
	}
	task := *p.Task
	if !task.IsChat() {
		return nil
	}

	channelSID := task.Attributes.ChannelSID
	log := o.log.With("task_sid", task.SID, "channel_sid", channelSID)
	log.Debug("getting chat transcript")

	text, err := transcript.Extract(o.host.State(), channelSID)
	if err != nil {
		log.Error("chat transcript unavailable", "error", err)
		return fmt.Errorf("%w: task %s: %w", ErrMalformedState, task.SID, err)
	}
	log.Debug("chat transcript", "transcript", text)

	o.track(o.writer.Write(crm.Record{ID: o.opts.RecordID, Description: text}))
	return nil
}

// AllComplete reports whether every task is completed. An empty task list
// counts as complete.
func AllComplete(tasks []host.Task) bool {
	for _, t := range tasks {
		if t.Status != host.StatusCompleted {
			return false
		}
	}
	return true
}

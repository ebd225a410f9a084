// Package runtime is the single-writer Effect/Msg dispatch loop (§4.2):
// one goroutine reads a channel of Msg, calls the root Model's Update, and
// fires returned Effects' futures back into the same channel. Grounded on
// the teacher's Addon.Run() goroutine/channel shape (addon.go: a
// fire-and-forget `go func() { ... }()` around a blocking server loop),
// generalized from "serve HTTP forever" to "drain one Msg at a time".
package runtime

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"
)

// MsgKind tags the three message categories (§4.2).
type MsgKind int

const (
	// MsgAction is externally injected, e.g. Ctx(Login), Load(MetaDetails).
	MsgAction MsgKind = iota
	// MsgEvent is a user-visible outcome, e.g. LibraryItemAdded, Error.
	MsgEvent
	// MsgInternal carries the result of a previously-dispatched effect.
	MsgInternal
)

func (k MsgKind) String() string {
	switch k {
	case MsgAction:
		return "action"
	case MsgEvent:
		return "event"
	case MsgInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Msg is one message flowing through the dispatch loop (§4.2).
type Msg struct {
	Kind MsgKind
	// Name identifies the concrete payload kind for logging/metrics
	// (e.g. "InstallAddon", "ManifestRequestResult").
	Name string
	// Payload is the concrete action/event/internal value; Model
	// implementations type-assert it.
	Payload interface{}
}

// NewAction builds an Action Msg.
func NewAction(name string, payload interface{}) Msg { return Msg{Kind: MsgAction, Name: name, Payload: payload} }

// NewEvent builds an Event Msg.
func NewEvent(name string, payload interface{}) Msg { return Msg{Kind: MsgEvent, Name: name, Payload: payload} }

// NewInternal builds an Internal Msg.
func NewInternal(name string, payload interface{}) Msg { return Msg{Kind: MsgInternal, Name: name, Payload: payload} }

// Future is a suspending unit of work that eventually produces a follow-up
// Msg (§4.2). Futures run on their own goroutine and post at most one
// message back to the loop (§4.2 "Re-entrancy").
type Future func() Msg

// Effects is the result of one Update call: the futures it wants launched
// and whether observers should be notified (§4.2).
type Effects struct {
	Futures   []Future
	HasChanged bool
}

// Unchanged is Effects with no futures and HasChanged=false, the
// no-op-handler return value.
func Unchanged() Effects { return Effects{} }

// Changed is Effects with no futures and HasChanged=true.
func Changed() Effects { return Effects{HasChanged: true} }

// Join concatenates futures and logical-ORs HasChanged (§4.2 "combinator
// join").
func Join(all ...Effects) Effects {
	joined := Effects{}
	for _, e := range all {
		joined.Futures = append(joined.Futures, e.Futures...)
		joined.HasChanged = joined.HasChanged || e.HasChanged
	}
	return joined
}

// WithUnchanged forces HasChanged=false while keeping the futures, matching
// §4.2's "unchanged()" combinator used when a handler launches work but the
// visible model hasn't moved yet.
func WithUnchanged(e Effects) Effects {
	e.HasChanged = false
	return e
}

// Model is the root update function every consumer model implements (§4.2
// step 1: "call root-model update(msg)").
type Model interface {
	Update(msg Msg) Effects
}

// Runtime drives the single-writer dispatch loop (§4.2 "Dispatch loop").
type Runtime struct {
	model    Model
	logger   *zap.Logger
	inbox    chan Msg
	notify   chan struct{}
	done     chan struct{}
}

// New constructs a Runtime around model. The inbox is buffered (256
// messages) so that futures completing concurrently do not block on the
// dispatch loop until that buffer is full.
func New(model Model, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		model:  model,
		logger: logger,
		inbox:  make(chan Msg, 256),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Notifications returns the channel observers should select on; a value is
// sent (non-blocking, coalescing) whenever an Update call reports
// HasChanged=true (§4.2 step 2).
func (r *Runtime) Notifications() <-chan struct{} { return r.notify }

// Dispatch enqueues msg for processing. Safe to call from any goroutine,
// including from within a Future.
func (r *Runtime) Dispatch(msg Msg) {
	r.inbox <- msg
}

// Run drains the inbox until Stop is called, feeding each Msg to the model
// and launching any returned futures (§4.2 steps 1-4). Run is meant to be
// called once, on its own goroutine.
func (r *Runtime) Run() {
	for {
		select {
		case msg := <-r.inbox:
			r.step(msg)
		case <-r.done:
			return
		}
	}
}

// Stop ends the dispatch loop after the current Msg finishes processing.
func (r *Runtime) Stop() { close(r.done) }

func (r *Runtime) step(msg Msg) {
	counterName := fmt.Sprintf(`runtime_msg_dispatched_total{kind="%s",name="%s"}`, msg.Kind, msg.Name)
	metrics.GetOrCreateCounter(counterName).Add(1)

	effects := r.model.Update(msg)

	if effects.HasChanged {
		select {
		case r.notify <- struct{}{}:
		default:
		}
	}

	for _, future := range effects.Futures {
		future := future
		r.logger.Debug("launching effect future", zap.String("triggered_by", msg.Name))
		go func() {
			follow := future()
			r.inbox <- follow
		}()
	}
}

// Package debug implements the optional bidirectional debug probe described
// by spec §5: a channel pair that lets an external collaborator (a REPL, a
// test harness, an IDE) observe evaluation as it happens and, in the other
// direction, pause, resume, single-step, interrupt or abort it. It has no
// effect on evaluation semantics when no probe is attached — every call site
// that reports to one is a no-op on a nil *Probe.
//
// Grounded in original_source/src/debug/mod.rs's Umbilical (the reference
// implementation's name for this channel pair) and its rate-limited sampling
// in Memory::allocate_internal and native::eval::eval_internal.
package debug

import (
	"time"

	"github.com/mna/liane/lang/source"
)

// CommandKind is a control message sent in to the probe by its observer.
type CommandKind int

const (
	Resume CommandKind = iota
	Pause
	Step
	Interrupt
	Abort
)

// Command is one message sent in from the observer side.
type Command struct {
	Kind CommandKind
}

// EventKind identifies what an Event reports.
type EventKind int

const (
	// EventStep fires once per evaluation step (roughly, once per
	// application or special-form dispatch), rate-limited.
	EventStep EventKind = iota
	// EventAllocate fires on heap growth/collection activity, rate-limited
	// independently of EventStep.
	EventAllocate
	// EventSignal fires whenever a signal is raised, uncatchable or not.
	EventSignal
)

// Event is one message sent out to the observer side.
type Event struct {
	Kind     EventKind
	Location source.Location
	Live     int
	Free     int
	Detail   string
}

// sampleInterval is the minimum spacing between consecutive EventStep or
// EventAllocate events sent to a slow or absent consumer; it matches the
// reference implementation's ~20ms sampling window.
const sampleInterval = 20 * time.Millisecond

// Probe is the runtime side of the debug channel: evaluation and allocation
// code call its On* methods, which are cheap no-ops when nothing is
// listening and rate-limited samples when something is.
type Probe struct {
	Events   chan Event
	Commands chan Command

	paused bool

	lastStep  time.Time
	lastAlloc time.Time
}

// New creates a probe with the given event buffer depth. A depth of 0 is
// valid: an event is then delivered only if a receiver is already waiting
// on Events when it is sent, and is dropped otherwise (see send).
func New(buffer int) *Probe {
	return &Probe{
		Events:   make(chan Event, buffer),
		Commands: make(chan Command, buffer),
	}
}

// OnAllocate reports heap occupancy. Called on a nil receiver is safe and a
// no-op, so callers never need to guard h.probe != nil themselves beyond
// what's needed to avoid a nil map/channel read elsewhere.
func (p *Probe) OnAllocate(live, free int) {
	if p == nil {
		return
	}
	if time.Since(p.lastAlloc) < sampleInterval {
		return
	}
	p.lastAlloc = time.Now()
	p.send(Event{Kind: EventAllocate, Live: live, Free: free})
}

// OnCollect reports the outcome of a full mark-and-sweep pass. Collection
// events are never rate-limited: collections are rare enough, and
// significant enough, that every one is worth reporting.
func (p *Probe) OnCollect(liveAfterMark, liveBeforeSweep int) {
	if p == nil {
		return
	}
	p.send(Event{Kind: EventAllocate, Live: liveAfterMark, Free: liveBeforeSweep - liveAfterMark, Detail: "collect"})
}

// OnStep reports a single evaluation step at loc, rate-limited the same way
// as OnAllocate, and blocks the caller while p is paused, draining Commands
// until it sees Resume, Step or Abort.
func (p *Probe) OnStep(loc source.Location) (abort bool) {
	if p == nil {
		return false
	}
	if !p.paused && time.Since(p.lastStep) >= sampleInterval {
		p.lastStep = time.Now()
		p.send(Event{Kind: EventStep, Location: loc})
	}
	for {
		select {
		case cmd := <-p.Commands:
			switch cmd.Kind {
			case Pause:
				p.paused = true
				continue
			case Resume:
				p.paused = false
				return false
			case Step:
				return false
			case Interrupt, Abort:
				return true
			}
		default:
			if !p.paused {
				return false
			}
		}
	}
}

// OnSignal reports a raised signal, catchable or not.
func (p *Probe) OnSignal(loc source.Location, detail string) {
	if p == nil {
		return
	}
	p.send(Event{Kind: EventSignal, Location: loc, Detail: detail})
}

// send delivers e without blocking the caller indefinitely: a full buffered
// channel with no reader drops the sample rather than stalling evaluation,
// since samples are advisory, never load-bearing for correctness.
func (p *Probe) send(e Event) {
	select {
	case p.Events <- e:
	default:
	}
}

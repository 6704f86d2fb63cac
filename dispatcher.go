// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package upbhandlers

import (
	"math"

	"github.com/google/uuid"

	"github.com/bufbuild/upbhandlers/internal/dbg"
)

// infinite stands in for the C implementation's use of INT_MAX as a
// sentinel meaning "no skip/noframe boundary is currently active": it
// compares greater than any depth a real dispatch will ever reach.
const infinite = math.MaxInt

// frame is one level of the dispatcher's nesting stack. frame zero (the
// "root" frame) is synthesized by [Dispatcher.Init]/[Dispatcher.Reset]
// and is never popped.
type frame struct {
	f         *Field
	closure   any
	endOffset uint64
	isPacked  bool
}

// toplevelField is planted at stack[0].f so that [Dispatcher.DispatchStartMessage]
// for the outermost message can be driven through exactly the same code
// path as every nested one, without a special case. Its submsg is left
// nil; [Dispatcher.DispatchEndSubMessage] falls back to the registry's
// first table whenever the frame it returns to has a field with no
// submsg, which is always the case on returning to frame zero.
var toplevelField = &Field{
	typ:               Group,
	onValue:           nopValue,
	onStartSubMessage: nopStartSubMessage,
	onEndSubMessage:   nopEndSubMessage,
}

// Dispatcher drives a [Registry]'s callbacks from a parser's stream of
// start/end message events, tracking a bounded stack of nested frames
// and the skip/break state machine described below.
//
// # Skip and break semantics
//
// Three depth counters, each defaulting to the sentinel "infinite"
// value, govern whether an event is actually delivered to a callback or
// silently skipped:
//
//   - skipDepth: once currentDepth >= skipDepth, every subsequent event
//     up to and including the matching end-submessage is suppressed
//     (though the stack and depth counters are still maintained, so
//     tracking stays correct once the skip ends).
//   - noframeDepth: like skipDepth, but additionally means no stack
//     frame was pushed for the level that triggered it — used for a
//     callback's [SkipSubMessage]/[Break] return and for a nesting
//     overflow, both of which prevent a new frame from ever existing.
//   - delegatedDepth: the depth skipDepth is reset to when a callback
//     returns [Break] instead of [SkipSubMessage] — skipping not just
//     the immediate submessage but everything up to the nearest
//     enclosing delegation boundary (normally the top-level message).
//
// A single [Dispatcher] is not safe for concurrent use, but any number
// of Dispatchers may be driven concurrently against one frozen
// [Registry].
type Dispatcher struct {
	registry *Registry

	stack []frame
	top   int // index into stack of the current frame

	msgent *MessageTable

	currentDepth   int
	skipDepth      int
	noframeDepth   int
	delegatedDepth int

	status Status

	id uuid.UUID
}

// NewDispatcher creates a dispatcher with room for maxNesting levels of
// submessage nesting below the top-level message. It must be
// initialized with [Dispatcher.Init] before use.
func NewDispatcher(maxNesting int) *Dispatcher {
	return &Dispatcher{
		stack: make([]frame, maxNesting+1),
		id:    uuid.New(),
	}
}

// Init binds the dispatcher to r, compacting every table r owns (a
// no-op on any table already compacted by another dispatcher sharing
// r). It must be called once before the first [Dispatcher.Reset].
func (d *Dispatcher) Init(r *Registry) {
	r.compact()
	d.registry = r
	d.stack[0].f = toplevelField
	dbg.Log([]any{"id=%s", d.id}, "init", "registry=%s maxNesting=%d", r.id, len(d.stack)-1)
}

// Reset prepares the dispatcher to process a new top-level message,
// discarding any state left over from a previous one. topClosure is the
// closure delivered to the top-level message's callbacks; topEndOffset
// is opaque to this package and returned unchanged by
// [Dispatcher.EndOffset] while frame zero is current.
func (d *Dispatcher) Reset(topClosure any, topEndOffset uint64) {
	d.msgent = d.registry.Top()
	d.currentDepth = 0
	d.skipDepth = infinite
	d.noframeDepth = infinite
	d.delegatedDepth = 0
	d.top = 0
	d.stack[0].closure = topClosure
	d.stack[0].endOffset = topEndOffset
	d.stack[0].isPacked = false
	d.status.Reset()
}

func (d *Dispatcher) skipping() bool { return d.currentDepth >= d.skipDepth }
func (d *Dispatcher) noframe() bool  { return d.currentDepth >= d.noframeDepth }

// Break declares the current subtree terminated: it places the noframe
// boundary at the current depth, so the matching
// [Dispatcher.DispatchEndSubMessage] returns [SkipSubMessage] without
// popping a frame or invoking any end callbacks. It leaves the skip
// boundary unchanged and so does not propagate outward; a callback
// returning the [Break] flow is what skips out to the delegation
// boundary.
//
// Break is only meaningful as the first skip decision made for a given
// event; calling it while a skip or noframe boundary is already active
// is an internal consistency violation, caught by an assertion in
// builds tagged "debug" (see [internal/dbg]).
func (d *Dispatcher) Break() {
	dbg.Assert(d.skipDepth == infinite, "Break called while skipDepth already active")
	dbg.Assert(d.noframeDepth == infinite, "Break called while noframeDepth already active")
	d.noframeDepth = d.currentDepth
}

// Lookup returns the field descriptor registered for tag in the message
// table currently being dispatched into, or nil if none is registered.
func (d *Dispatcher) Lookup(tag uint32) *Field { return d.msgent.Lookup(tag) }

// Closure returns the closure bound to the current frame.
func (d *Dispatcher) Closure() any { return d.stack[d.top].closure }

// EndOffset returns the end-offset bound to the current frame by the
// value passed to the [Dispatcher.DispatchStartSubMessage] call (or
// [Dispatcher.Reset], for the top-level frame) that pushed it.
func (d *Dispatcher) EndOffset() uint64 { return d.stack[d.top].endOffset }

// SetPacked records whether the current frame is being delivered as a
// packed repeated primitive, for the parser's own bookkeeping; this
// package never reads it back.
func (d *Dispatcher) SetPacked(packed bool) { d.stack[d.top].isPacked = packed }

// Packed reports the value last set by [Dispatcher.SetPacked] for the
// current frame.
func (d *Dispatcher) Packed() bool { return d.stack[d.top].isPacked }

// Skipping reports whether the dispatcher is currently suppressing
// delivery of events, i.e. an enclosing callback returned
// [SkipSubMessage] or [Break] and the matching end event has not yet
// been observed.
func (d *Dispatcher) Skipping() bool { return d.skipping() }

// CurrentDepth returns the current submessage nesting depth, 0 at the
// top level.
func (d *Dispatcher) CurrentDepth() int { return d.currentDepth }

// DelegatedDepth returns the depth a [Break] currently resets skipDepth
// to.
func (d *Dispatcher) DelegatedDepth() int { return d.delegatedDepth }

// SetDelegatedDepth sets the depth a subsequent [Break] resets
// skipDepth to. A parser that wants a field's callbacks to be able to
// delegate skip decisions out past more than one enclosing frame (for
// instance, a oneof-group whose fields are handled by a shared closure)
// sets this before entering that scope.
func (d *Dispatcher) SetDelegatedDepth(depth int) { d.delegatedDepth = depth }

// Status returns the dispatcher's accumulated status. It is valid to
// inspect between a [Dispatcher.DispatchEndMessage] call and the next
// [Dispatcher.Reset].
func (d *Dispatcher) Status() *Status { return &d.status }

// DispatchStartMessage invokes the current message table's start-message
// callback against the current frame's closure. It is called once for
// the top-level message (immediately after [Dispatcher.Reset]) and once
// more, internally, at the tail of every successful
// [Dispatcher.DispatchStartSubMessage].
func (d *Dispatcher) DispatchStartMessage() Flow {
	flow := d.msgent.onStartMessage(d.stack[d.top].closure)
	if flow != Continue {
		d.noframeDepth = d.currentDepth + 1
		if flow == Break {
			d.skipDepth = d.delegatedDepth
		} else {
			d.skipDepth = d.currentDepth
		}
		dbg.Log([]any{"id=%s", d.id}, "start-message", "flow=%v -> skip", flow)
		return SkipSubMessage
	}
	return Continue
}

// DispatchEndMessage invokes the current message table's end-message
// callback, then copies the dispatcher's accumulated [Status] into
// status. It must only be called when the dispatcher is at the root
// frame, i.e. after every submessage opened with
// [Dispatcher.DispatchStartSubMessage] has been closed with a matching
// [Dispatcher.DispatchEndSubMessage].
func (d *Dispatcher) DispatchEndMessage(status *Status) {
	dbg.Assert(d.top == 0, "DispatchEndMessage called with %d frame(s) still open", d.top)
	d.msgent.onEndMessage(d.stack[0].closure, &d.status)
	*status = d.status
}

// DispatchStartSubMessage enters the submessage (or group) field f,
// pushing a new frame if the field's start-submessage callback allows
// it. endOffset is opaque to this package; it is returned unchanged by
// [Dispatcher.EndOffset] once this frame is current.
//
// If the stack has no room for another frame, this records
// [ErrNestingTooDeep] on the dispatcher's [Status] and skips outward to
// the delegation boundary exactly as if the callback had returned
// [Break].
func (d *Dispatcher) DispatchStartSubMessage(f *Field, endOffset uint64) Flow {
	d.currentDepth++
	if d.skipping() {
		return SkipSubMessage
	}

	flow, closure := f.onStartSubMessage(d.stack[d.top].closure, f.fval)
	if flow != Continue {
		d.noframeDepth = d.currentDepth
		if flow == Break {
			d.skipDepth = d.delegatedDepth
		} else {
			d.skipDepth = d.currentDepth
		}
		dbg.Log([]any{"id=%s", d.id}, "start-submsg", "field=%d flow=%v -> skip", f.number, flow)
		return SkipSubMessage
	}

	d.top++
	if d.top >= len(d.stack) {
		d.top--
		d.status.setCode(errCodeNestingTooDeep)
		d.noframeDepth = d.currentDepth
		d.skipDepth = d.delegatedDepth
		dbg.Log([]any{"id=%s", d.id}, "start-submsg", "field=%d nesting overflow at depth=%d", f.number, d.currentDepth)
		return SkipSubMessage
	}

	d.stack[d.top] = frame{
		f:         f,
		closure:   closure,
		endOffset: endOffset,
		isPacked:  false,
	}
	d.msgent = f.submsg
	return d.DispatchStartMessage()
}

// DispatchEndSubMessage closes the submessage most recently opened with
// [Dispatcher.DispatchStartSubMessage], delivering its value to the
// parent frame like an ordinary field value via the closed field's
// end-submessage callback.
func (d *Dispatcher) DispatchEndSubMessage() Flow {
	var flow Flow
	if d.noframe() {
		flow = SkipSubMessage
	} else {
		dbg.Assert(d.top > 0, "DispatchEndSubMessage called with no open frame")

		oldField := d.stack[d.top].f
		d.msgent.onEndMessage(d.stack[d.top].closure, &d.status)

		d.top--
		if d.stack[d.top].f.submsg != nil {
			d.msgent = d.stack[d.top].f.submsg
		} else {
			d.msgent = d.registry.Top()
		}

		d.noframeDepth = infinite
		if !d.skipping() {
			d.skipDepth = infinite
		}

		flow = oldField.onEndSubMessage(d.stack[d.top].closure, oldField.fval)
	}
	d.currentDepth--
	return flow
}

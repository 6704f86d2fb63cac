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
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ValueFunc is the callback invoked for a decoded scalar value on a field.
//
// closure is the enclosing frame's closure; fval is the opaque value bound
// to the field at registration time; value is the decoded wire value,
// handed through from the tokenizer untouched.
type ValueFunc func(closure, fval any, value protoreflect.Value) Flow

// StartSubMessageFunc is the callback invoked when a submessage or group
// field is entered. It returns the flow to take and, on [Continue], the
// closure for the new frame.
type StartSubMessageFunc func(closure, fval any) (Flow, any)

// EndSubMessageFunc is the callback invoked when a submessage or group
// field's contents have been fully consumed (delivered like an ordinary
// field value, to the parent frame's closure).
type EndSubMessageFunc func(closure, fval any) Flow

// noValue is the sentinel fval installed on a [Field] before
// [Field.SetOnValue] or an equivalent setter supplies a real one.
type noValue struct{}

// NoValue is the default fval of a newly created field.
var NoValue any = noValue{}

// Field is an immutable-after-registration per-field handler descriptor.
//
// A Field is always owned by exactly one [MessageTable] and lives for as
// long as the [Registry] that owns that table.
type Field struct {
	number   protowire.Number
	typ      FieldType
	repeated bool
	packed   bool

	fval              any
	submsg            *MessageTable
	onValue           ValueFunc
	onStartSubMessage StartSubMessageFunc
	onEndSubMessage   EndSubMessageFunc

	// Reserved for a future JIT code generator. Never read by this
	// package; present only so that a JIT can stash per-field
	// auxiliary data without changing this struct's shape.
	jitHints [2]int32
}

// Number returns this field's field number.
func (f *Field) Number() protowire.Number { return f.number }

// Type returns this field's declared type.
func (f *Field) Type() FieldType { return f.typ }

// Repeated reports whether this field is repeated.
func (f *Field) Repeated() bool { return f.repeated }

// Packed reports whether this field is a packed repeated primitive. This
// is derived at creation time as Repeated() && Type().IsPrimitive().
func (f *Field) Packed() bool { return f.packed }

// Fval returns the opaque value bound to this field by the most recent
// call to [Field.SetOnValue], or [NoValue] if none has been set.
// [Field.SetOnStartSubMessage] and [Field.SetOnEndSubMessage] take no
// fval and leave it unchanged.
func (f *Field) Fval() any { return f.fval }

// SubMessage returns the message table this field transitions into, or
// nil if this is not a MESSAGE or GROUP field.
func (f *Field) SubMessage() *MessageTable { return f.submsg }

// Tag returns this field's wire tag, i.e. (Number() << 3) | NativeWireType().
func (f *Field) Tag() uint32 { return fieldTag(f.number, f.typ) }

// DispatchValue invokes this field's value callback against closure and a
// decoded wire value. Unlike the four message/submessage dispatch
// entry points on [Dispatcher], value dispatch is not mediated by the
// dispatcher: the parser looks the field up via [Dispatcher.Lookup],
// checks [Dispatcher.Skipping] itself, and calls this directly.
func (f *Field) DispatchValue(closure any, value protoreflect.Value) Flow {
	return f.onValue(closure, f.fval, value)
}

// SetOnValue installs the value callback for this field, along with the
// fval passed to every callback invoked for it (including start/end
// submessage callbacks set afterwards). Passing a nil fn installs the
// no-op default.
func (f *Field) SetOnValue(fn ValueFunc, fval any) {
	if fn == nil {
		fn = nopValue
	}
	f.onValue = fn
	f.fval = fval
}

// SetOnStartSubMessage installs the start-submessage callback for this
// field. Passing nil installs the no-op default, which continues
// dispatch using the parent's closure unchanged.
func (f *Field) SetOnStartSubMessage(fn StartSubMessageFunc) {
	if fn == nil {
		fn = nopStartSubMessage
	}
	f.onStartSubMessage = fn
}

// SetOnEndSubMessage installs the end-submessage callback for this field.
// Passing nil installs the no-op default.
func (f *Field) SetOnEndSubMessage(fn EndSubMessageFunc) {
	if fn == nil {
		fn = nopEndSubMessage
	}
	f.onEndSubMessage = fn
}

// fieldTag computes the wire tag for a field number and type.
func fieldTag(number protowire.Number, typ FieldType) uint32 {
	return uint32(number)<<3 | uint32(typ.NativeWireType())
}

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
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/upbhandlers/internal/dbg"
	"github.com/bufbuild/upbhandlers/internal/tagtable"
)

// StartMessageFunc is the callback invoked when a message (top-level or
// nested) begins.
type StartMessageFunc func(closure any) Flow

// EndMessageFunc is the callback invoked when a message ends. It may
// inspect and mutate the accumulated [Status].
type EndMessageFunc func(closure any, status *Status)

// MessageTable maps wire tags to [Field] handler descriptors for a single
// message type, plus its message-level callbacks.
//
// A MessageTable is mutable only during registration (via [MessageTable.NewField]
// and [MessageTable.NewSubMessageField]); once a [Dispatcher] has been
// initialized from the owning [Registry], the table is compacted into a
// dense lookup structure and further insertion is disallowed.
type MessageTable struct {
	fields map[uint32]*Field
	dense  *tagtable.Table[*Field]
	frozen bool

	onStartMessage StartMessageFunc
	onEndMessage   EndMessageFunc
	isGroup        bool

	// Descriptor is set by [RegisterMessage] to the schema this table was
	// reflected from, and is nil for tables built purely programmatically.
	// It exists for debugging and is never consulted by the dispatcher.
	Descriptor protoreflect.MessageDescriptor

	// Reserved for a future JIT code generator's per-table auxiliary data.
	jitAux any
}

func newMessageTable() *MessageTable {
	return &MessageTable{
		fields:         make(map[uint32]*Field),
		onStartMessage: nopStartMessage,
		onEndMessage:   nopEndMessage,
	}
}

// NewField inserts a new scalar field descriptor into the table.
//
// Panics if typ is MESSAGE or GROUP (use [MessageTable.NewSubMessageField]
// instead), or if a field with the computed wire tag already exists in
// this table — a duplicate wire tag is a programming error, not a
// recoverable one.
func (t *MessageTable) NewField(number protowire.Number, typ FieldType, repeated bool) *Field {
	if typ.IsSubMessage() {
		panic(fmt.Sprintf("upbhandlers: NewField called with submessage type %v; use NewSubMessageField", typ))
	}
	return t.newField(number, typ, repeated)
}

// NewSubMessageField inserts a new MESSAGE or GROUP field descriptor,
// linking it to subtable.
//
// If typ is GROUP, this additionally inserts into subtable a synthetic
// ENDGROUP terminator field sharing the same field number, matching the
// way group framing is closed on the wire.
//
// Panics if typ is not MESSAGE or GROUP, if subtable is nil, or on a
// duplicate wire tag (see [MessageTable.NewField]).
func (t *MessageTable) NewSubMessageField(number protowire.Number, typ FieldType, repeated bool, subtable *MessageTable) *Field {
	if !typ.IsSubMessage() {
		panic(fmt.Sprintf("upbhandlers: NewSubMessageField called with non-submessage type %v", typ))
	}
	if subtable == nil {
		panic("upbhandlers: NewSubMessageField requires a non-nil subtable")
	}

	f := t.newField(number, typ, repeated)
	f.submsg = subtable

	if typ == Group {
		subtable.isGroup = true
		subtable.newField(number, EndGroup, false)
	}

	return f
}

func (t *MessageTable) newField(number protowire.Number, typ FieldType, repeated bool) *Field {
	if t.frozen {
		panic("upbhandlers: cannot register new fields on a table after the registry has been frozen")
	}

	tag := fieldTag(number, typ)
	if _, exists := t.fields[tag]; exists {
		panic(fmt.Sprintf("upbhandlers: duplicate wire tag %#x (field %d, %v)", tag, number, typ))
	}

	f := &Field{
		number:            number,
		typ:               typ,
		repeated:          repeated,
		packed:            repeated && typ.IsPrimitive(),
		fval:              NoValue,
		onValue:           nopValue,
		onStartSubMessage: nopStartSubMessage,
		onEndSubMessage:   nopEndSubMessage,
	}
	t.fields[tag] = f
	return f
}

// SetOnStartMessage installs the start-message callback. A nil fn installs
// the no-op default.
func (t *MessageTable) SetOnStartMessage(fn StartMessageFunc) {
	if fn == nil {
		fn = nopStartMessage
	}
	t.onStartMessage = fn
}

// SetOnEndMessage installs the end-message callback. A nil fn installs the
// no-op default.
func (t *MessageTable) SetOnEndMessage(fn EndMessageFunc) {
	if fn == nil {
		fn = nopEndMessage
	}
	t.onEndMessage = fn
}

// IsGroup reports whether this table is the target of a GROUP field,
// i.e. it is delimited on the wire by a START_GROUP/END_GROUP pair
// instead of a length prefix.
func (t *MessageTable) IsGroup() bool { return t.isGroup }

// Lookup returns the field descriptor for the given wire tag, or nil if
// none is registered. Before the owning registry is frozen this walks
// the registration-time map; afterwards it consults the compacted dense
// table built by [Dispatcher.Init].
func (t *MessageTable) Lookup(tag uint32) *Field {
	if t.dense != nil {
		if p := t.dense.Lookup(tag); p != nil {
			return *p
		}
		return nil
	}
	return t.fields[tag]
}

// compact freezes the table and builds its dense lookup structure. Called
// once per table by [Dispatcher.Init]; idempotent.
func (t *MessageTable) compact() {
	if t.frozen {
		return
	}

	entries := make([]tagtable.Entry[*Field], 0, len(t.fields))
	for tag, f := range t.fields {
		entries = append(entries, tagtable.Entry[*Field]{Tag: tag, Value: f})
	}
	t.dense = tagtable.New(entries)
	t.frozen = true

	dbg.Log(nil, "compact", "%d field(s)", len(entries))
}

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

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/upbhandlers/internal/dbg"
)

// OnMessageRegisteredFunc is invoked once for every [MessageTable] that
// [RegisterMessage] creates, immediately after it is created but before
// any of its fields are registered. closure is the value passed to
// [RegisterMessage] unchanged.
type OnMessageRegisteredFunc func(closure any, table *MessageTable, desc protoreflect.MessageDescriptor)

// OnFieldRegisteredFunc is invoked once for every [Field] that
// [RegisterMessage] creates, immediately after it (and, for a submessage
// field, its subtable) has been created.
type OnFieldRegisteredFunc func(closure any, field *Field, desc protoreflect.FieldDescriptor)

// RegisterMessage walks root's schema depth-first, registering one
// [MessageTable] per distinct message type reachable from it (including
// root itself) and one [Field] per field declared on each, in schema
// iteration order.
//
// A schema that is cyclic through a chain of message-typed fields is
// registered exactly once per distinct message type: a map from fully
// qualified message name to the table already built for it breaks the
// recursion, exactly as a hand-rolled set of mutually-recursive
// programmatic registration calls would have to.
//
// onMsg and onField, if non-nil, are invoked as each table and field is
// registered, letting the caller attach behavior (callbacks, fvals)
// driven by the schema without this package needing to know anything
// about what that behavior is. closure is opaque to this function and
// passed through to both callbacks unchanged.
func RegisterMessage(
	r *Registry,
	root protoreflect.MessageDescriptor,
	onMsg OnMessageRegisteredFunc,
	onField OnFieldRegisteredFunc,
	closure any,
) *MessageTable {
	seen := make(map[protoreflect.FullName]*MessageTable)
	return registerDFS(r, root, onMsg, onField, closure, seen)
}

func registerDFS(
	r *Registry,
	desc protoreflect.MessageDescriptor,
	onMsg OnMessageRegisteredFunc,
	onField OnFieldRegisteredFunc,
	closure any,
	seen map[protoreflect.FullName]*MessageTable,
) *MessageTable {
	table := r.NewMessage()
	table.Descriptor = desc
	seen[desc.FullName()] = table

	dbg.Log(nil, "register-message", "%s", desc.FullName())

	if onMsg != nil {
		onMsg(closure, table, desc)
	}

	fields := desc.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		repeated := fd.Cardinality() == protoreflect.Repeated

		var f *Field
		switch fd.Kind() {
		case protoreflect.MessageKind, protoreflect.GroupKind:
			sub, ok := seen[fd.Message().FullName()]
			if !ok {
				sub = registerDFS(r, fd.Message(), onMsg, onField, closure, seen)
			}
			f = table.NewSubMessageField(fd.Number(), fieldTypeFromKind(fd.Kind()), repeated, sub)
		default:
			f = table.NewField(fd.Number(), fieldTypeFromKind(fd.Kind()), repeated)
		}

		if onField != nil {
			onField(closure, f, fd)
		}
	}

	return table
}

// fieldTypeFromKind maps a schema field's [protoreflect.Kind] to the
// [FieldType] this package's wire-tag arithmetic understands. Every
// protoreflect.Kind has exactly one corresponding FieldType; ENDGROUP
// has no schema representation and is only ever synthesized by
// [MessageTable.NewSubMessageField].
func fieldTypeFromKind(k protoreflect.Kind) FieldType {
	switch k {
	case protoreflect.Int32Kind:
		return Int32
	case protoreflect.Int64Kind:
		return Int64
	case protoreflect.Uint32Kind:
		return UInt32
	case protoreflect.Uint64Kind:
		return UInt64
	case protoreflect.Sint32Kind:
		return SInt32
	case protoreflect.Sint64Kind:
		return SInt64
	case protoreflect.Fixed32Kind:
		return Fixed32
	case protoreflect.Fixed64Kind:
		return Fixed64
	case protoreflect.Sfixed32Kind:
		return SFixed32
	case protoreflect.Sfixed64Kind:
		return SFixed64
	case protoreflect.FloatKind:
		return Float
	case protoreflect.DoubleKind:
		return Double
	case protoreflect.BoolKind:
		return Bool
	case protoreflect.EnumKind:
		return Enum
	case protoreflect.StringKind:
		return String
	case protoreflect.BytesKind:
		return Bytes
	case protoreflect.MessageKind:
		return Message
	case protoreflect.GroupKind:
		return Group
	default:
		panic(fmt.Sprintf("upbhandlers: unsupported field kind %v", k))
	}
}

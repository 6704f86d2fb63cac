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
)

// FieldType is a Protobuf field type, as understood by the handler
// registry: every scalar type, plus the three submessage-framing types
// MESSAGE, GROUP, and the synthetic ENDGROUP terminator.
type FieldType int

const (
	Int32 FieldType = iota
	Int64
	UInt32
	UInt64
	SInt32
	SInt64
	Fixed32
	Fixed64
	SFixed32
	SFixed64
	Float
	Double
	Bool
	Enum
	String
	Bytes
	Message
	Group
	EndGroup
)

// NativeWireType returns the wire type this field type is encoded with on
// the wire. This is the low three bits of a wire tag.
func (t FieldType) NativeWireType() protowire.Type {
	switch t {
	case Int32, Int64, UInt32, UInt64, SInt32, SInt64, Bool, Enum:
		return protowire.VarintType
	case Fixed32, SFixed32, Float:
		return protowire.Fixed32Type
	case Fixed64, SFixed64, Double:
		return protowire.Fixed64Type
	case String, Bytes, Message:
		return protowire.BytesType
	case Group:
		return protowire.StartGroupType
	case EndGroup:
		return protowire.EndGroupType
	default:
		panic("upbhandlers: invalid field type")
	}
}

// IsPrimitive reports whether t is a scalar type, i.e. not MESSAGE, GROUP,
// or ENDGROUP. A repeated primitive field may be packed.
func (t FieldType) IsPrimitive() bool {
	return t != Message && t != Group && t != EndGroup
}

// IsSubMessage reports whether t introduces a nested message table, i.e.
// is MESSAGE or GROUP.
func (t FieldType) IsSubMessage() bool {
	return t == Message || t == Group
}

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

// String implements [fmt.Stringer].
func (t FieldType) String() string {
	switch t {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case SInt32:
		return "sint32"
	case SInt64:
		return "sint64"
	case Fixed32:
		return "fixed32"
	case Fixed64:
		return "fixed64"
	case SFixed32:
		return "sfixed32"
	case SFixed64:
		return "sfixed64"
	case Float:
		return "float"
	case Double:
		return "double"
	case Bool:
		return "bool"
	case Enum:
		return "enum"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Message:
		return "message"
	case Group:
		return "group"
	case EndGroup:
		return "endgroup"
	default:
		return "invalid"
	}
}

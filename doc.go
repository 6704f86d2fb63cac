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

// Package upbhandlers is the callback-registration and event-dispatch core
// of a streaming Protobuf decoder.
//
// A [Registry] owns a graph of [MessageTable] values, each mapping a wire
// tag to a [Field] handler descriptor; it can be built either
// programmatically, field by field, or by reflecting over a
// [protoreflect.MessageDescriptor] schema with [RegisterMessage]. A
// [Dispatcher] is initialized from a frozen registry and then driven by a
// parser through four event entry points
// ([Dispatcher.DispatchStartMessage], [Dispatcher.DispatchEndMessage],
// [Dispatcher.DispatchStartSubMessage], [Dispatcher.DispatchEndSubMessage]),
// routing each event to the registered callbacks while maintaining a
// bounded nesting stack and the skip/break state machine described on
// [Dispatcher].
//
// This package does not decode bytes off the wire, does not encode
// messages, and does not validate semantic field constraints (required
// fields, oneof exclusivity, and so on): it is purely the dispatch core
// that a tokenizer drives and that user callbacks observe.
package upbhandlers

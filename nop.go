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

import "google.golang.org/protobuf/reflect/protoreflect"

// Every handler slot on a [Field] or [MessageTable] is non-nil at all
// times; a freshly constructed one is wired to these no-op defaults
// instead of being left nil, so the dispatcher never needs a nil check
// on the hot path.

func nopStartMessage(any) Flow { return Continue }

func nopEndMessage(any, *Status) {}

func nopValue(any, any, protoreflect.Value) Flow { return Continue }

func nopStartSubMessage(closure, _ any) (Flow, any) { return Continue, closure }

func nopEndSubMessage(any, any) Flow { return Continue }

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

// Flow is the instruction a callback, or the dispatcher itself, returns to
// its caller.
//
// User callbacks may return any of the three values below.
// [Dispatcher.DispatchStartMessage] and [Dispatcher.DispatchStartSubMessage]
// only ever return [Continue] or [SkipSubMessage]: a callback's [Break] is
// translated into skip state before it is ever observed by the parser.
// [Dispatcher.DispatchEndSubMessage] returns the closed field's
// end-submessage callback result unchanged, so it returns [Break] when
// that callback does.
type Flow int

const (
	// Continue proceeds with dispatch normally.
	Continue Flow = iota

	// SkipSubMessage elides the remainder of the current subtree: dispatch
	// resumes at the parent once the parser emits the matching end event.
	SkipSubMessage

	// Break is like SkipSubMessage, but propagates the skip outward up to
	// the dispatcher's delegation boundary rather than stopping at the
	// immediate parent. Only meaningful as a callback return value.
	Break
)

// String implements [fmt.Stringer].
func (f Flow) String() string {
	switch f {
	case Continue:
		return "Continue"
	case SkipSubMessage:
		return "SkipSubMessage"
	case Break:
		return "Break"
	default:
		return "Flow(invalid)"
	}
}

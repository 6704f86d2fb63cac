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

// Status carries the outcome of a message's dispatch: it starts clear,
// can be inspected and set by any [EndMessageFunc] along the way
// (including the dispatcher's own bookkeeping, e.g. on nesting
// overflow), and is surfaced to the caller of
// [Dispatcher.DispatchEndMessage] once the top-level message is done.
//
// A Status is not reset automatically between top-level messages; call
// [Status.Reset] (or [Dispatcher.Reset]) before reusing a [Dispatcher].
type Status struct {
	err error
}

// OK reports whether no error has been recorded.
func (s *Status) OK() bool { return s.err == nil }

// Err returns the recorded error, or nil if none.
func (s *Status) Err() error { return s.err }

// SetError records err, wrapped as a [StatusError] if it is one of the
// sentinels in this package. A subsequent call only overwrites an
// existing error if the status is currently OK: the first error to
// occur during a dispatch wins.
func (s *Status) SetError(err error) {
	if s.err == nil {
		for code, sentinel := range errs {
			if sentinel != nil && err == sentinel {
				err = &StatusError{code: errCode(code)}
				break
			}
		}
		s.err = err
	}
}

// Reset clears any recorded error.
func (s *Status) Reset() { s.err = nil }

func (s *Status) setCode(code errCode) {
	s.SetError(&StatusError{code: code})
}

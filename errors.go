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
	"errors"
	"fmt"
)

const (
	errCodeOK errCode = iota
	errCodeNestingTooDeep
)

type errCode int

var errs = [...]error{
	errCodeOK:             nil,
	errCodeNestingTooDeep: errors.New("message nesting exceeds the dispatcher's configured maximum"),
}

// StatusError is the error type carried by a [Status] once it has been
// set by [Status.SetError] or by the dispatcher itself. It is never
// constructed directly; use [errors.Is] against the sentinels in this
// file, or [errors.Unwrap], to inspect it.
type StatusError struct {
	code errCode
}

// Error implements [error].
func (e *StatusError) Error() string {
	return fmt.Sprintf("upbhandlers: %v", e.Unwrap())
}

// Unwrap implements error unwrapping via [errors.Unwrap].
func (e *StatusError) Unwrap() error {
	return errs[e.code]
}

// ErrNestingTooDeep is returned, wrapped in a [StatusError], when a
// [Dispatcher] observes more nested submessages than it was configured
// to hold at [NewDispatcher].
var ErrNestingTooDeep = errs[errCodeNestingTooDeep]

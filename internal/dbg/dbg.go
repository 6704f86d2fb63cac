// Copyright 2025 Buf Technologies, Inc.
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

//go:build debug

// Package dbg includes debugging helpers for the registry and dispatcher.
//
// Everything in this file only exists when built with the "debug" build
// tag; see release.go for the no-op stand-ins used otherwise.
package dbg

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when built with the debug tag.
const Enabled = true

var (
	pattern   *regexp.Regexp
	nocapture = flag.Bool("upbhandlers.nocapture", false, "disables capturing debug logs as test logs")
)

func init() {
	flag.Func("upbhandlers.filter", "regexp to filter debug logs by", func(s string) (err error) {
		pattern, err = regexp.Compile(s)
		return err
	})
}

// Log prints debugging information to stderr, tagged with the calling
// goroutine id and an optional context label (typically a registry or
// dispatcher id).
func Log(context []any, operation string, format string, args ...any) {
	skip := 2
	pc, file, line, _ := runtime.Caller(skip)
	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	if slash := strings.LastIndexByte(name, '/'); slash >= 0 {
		name = name[slash+1:]
	}
	file = filepath.Base(file)

	buf := new(strings.Builder)
	fmt.Fprintf(buf, "%s:%d [g%04d", file, line, routine.Goid())
	if len(context) >= 1 {
		fmt.Fprintf(buf, ", "+context[0].(string), context[1:]...)
	}
	fmt.Fprintf(buf, "] %s: ", operation)
	fmt.Fprintf(buf, format, args...)

	if pattern != nil && !pattern.MatchString(buf.String()) {
		return
	}

	buf.WriteByte('\n')
	_, _ = os.Stderr.WriteString(buf.String())
}

// Assert panics if cond is false. Only compiled in when Enabled.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("upbhandlers: internal assertion failed: "+format, args...))
	}
}

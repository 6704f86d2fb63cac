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
	"github.com/google/uuid"

	"github.com/bufbuild/upbhandlers/internal/dbg"
)

// Registry owns an ordered collection of [MessageTable] values. The first
// table registered ([Registry.Top]) is the entry point a [Dispatcher]
// starts from.
//
// A Registry is built once, then frozen implicitly the first time a
// [Dispatcher] is initialized from it ([Dispatcher.Init]); every
// [MessageTable] it owns is compacted at that point and further
// registration on any of them panics. Once frozen, a Registry is
// immutable and safe to share across any number of [Dispatcher]s running
// concurrently on separate goroutines.
type Registry struct {
	msgs []*MessageTable

	// shouldJIT is an advisory hint for a future JIT code generator; this
	// package never consults it.
	shouldJIT bool

	id uuid.UUID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{
		shouldJIT: true,
		id:        uuid.New(),
	}
	dbg.Log([]any{"id=%s", r.id}, "new-registry", "")
	return r
}

// NewMessage appends a new, empty [MessageTable] to the registry and
// returns it. The first table ever appended becomes [Registry.Top].
func (r *Registry) NewMessage() *MessageTable {
	m := newMessageTable()
	r.msgs = append(r.msgs, m)
	dbg.Log([]any{"id=%s", r.id}, "new-message", "index=%d", len(r.msgs)-1)
	return m
}

// Top returns the first table registered, i.e. the table a [Dispatcher]
// begins dispatch from. It panics if no table has been registered yet.
func (r *Registry) Top() *MessageTable {
	if len(r.msgs) == 0 {
		panic("upbhandlers: registry has no messages registered")
	}
	return r.msgs[0]
}

// ShouldJIT reports the registry's advisory JIT hint. This package does
// not act on it; it exists for a future code generator built on top of
// this one.
func (r *Registry) ShouldJIT() bool { return r.shouldJIT }

// SetShouldJIT sets the registry's advisory JIT hint.
func (r *Registry) SetShouldJIT(v bool) { r.shouldJIT = v }

// compact freezes every table owned by the registry. Called once by
// [Dispatcher.Init]; idempotent across dispatchers sharing a registry.
func (r *Registry) compact() {
	for _, m := range r.msgs {
		m.compact()
	}
}

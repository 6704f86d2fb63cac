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

package upbhandlers_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/upbhandlers"
)

func TestFieldDefaults(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	m := r.NewMessage()

	f := m.NewField(3, upbhandlers.Int32, false)
	require.Equal(t, protowire.Number(3), f.Number())
	require.Equal(t, upbhandlers.Int32, f.Type())
	require.False(t, f.Repeated())
	require.False(t, f.Packed())
	require.Equal(t, upbhandlers.NoValue, f.Fval())
	require.Nil(t, f.SubMessage())
	require.Equal(t, uint32(3)<<3|uint32(protowire.VarintType), f.Tag())
}

func TestFieldPackedOnlyForRepeatedPrimitives(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	m := r.NewMessage()

	prim := m.NewField(1, upbhandlers.Fixed64, true)
	require.True(t, prim.Packed())

	sub := r.NewMessage()
	msgField := m.NewSubMessageField(2, upbhandlers.Message, true, sub)
	require.False(t, msgField.Packed(), "submessage fields are never packed")
}

func TestFieldSetOnValueInstallsFval(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	m := r.NewMessage()
	f := m.NewField(1, upbhandlers.String, false)

	called := false
	f.SetOnValue(func(closure, fval any, value protoreflect.Value) upbhandlers.Flow {
		called = true
		require.Equal(t, "sentinel", fval)
		return upbhandlers.Continue
	}, "sentinel")
	require.Equal(t, "sentinel", f.Fval())
	require.False(t, called)
}

func TestNewFieldRejectsSubMessageTypes(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	m := r.NewMessage()

	require.Panics(t, func() {
		m.NewField(1, upbhandlers.Message, false)
	})
	require.Panics(t, func() {
		m.NewField(1, upbhandlers.Group, false)
	})
}

func TestNewSubMessageFieldRejectsScalarTypes(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	m := r.NewMessage()
	sub := r.NewMessage()

	require.Panics(t, func() {
		m.NewSubMessageField(1, upbhandlers.Int32, false, sub)
	})
	require.Panics(t, func() {
		m.NewSubMessageField(1, upbhandlers.Message, false, nil)
	})
}

func TestDuplicateWireTagPanics(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	m := r.NewMessage()
	m.NewField(5, upbhandlers.Int32, false)

	require.Panics(t, func() {
		// Same field number and wire type as above: same tag.
		m.NewField(5, upbhandlers.Int64, false)
	})
}

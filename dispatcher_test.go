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

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/upbhandlers"
)

// walk is a minimal recursive-descent parser loop standing in for the
// wire-format tokenizer this package does not itself provide. It exists
// only so these tests can drive a [upbhandlers.Dispatcher] the way a
// real parser would: by decoding one tag at a time, looking it up, and
// honoring the dispatcher's own skip/continue decisions.
func walk(t *testing.T, d *upbhandlers.Dispatcher, data []byte) {
	t.Helper()

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		require.Greater(t, n, 0, "bad tag")
		data = data[n:]

		tag := uint32(num)<<3 | uint32(typ)
		f := d.Lookup(tag)
		if f == nil {
			n := protowire.ConsumeFieldValue(num, typ, data)
			require.GreaterOrEqual(t, n, 0)
			data = data[n:]
			continue
		}

		switch {
		case f.Type().IsSubMessage():
			body, n := protowire.ConsumeBytes(data)
			require.GreaterOrEqual(t, n, 0)
			data = data[n:]

			flow := d.DispatchStartSubMessage(f, uint64(len(body)))
			if flow == upbhandlers.Continue {
				walk(t, d, body)
			}
			d.DispatchEndSubMessage()

		default:
			v, n := protowire.ConsumeVarint(data)
			require.GreaterOrEqual(t, n, 0)
			data = data[n:]
			if !d.Skipping() {
				f.DispatchValue(d.Closure(), protoreflect.ValueOfInt64(int64(v)))
			}
		}
	}
}

func buildSimpleRegistry(t *testing.T, log *[]string) (*upbhandlers.Registry, *upbhandlers.MessageTable, *upbhandlers.MessageTable) {
	t.Helper()

	r := upbhandlers.NewRegistry()
	root := r.NewMessage()
	child := r.NewMessage()

	root1 := root.NewField(1, upbhandlers.Int32, false)
	root1.SetOnValue(func(closure, fval any, value protoreflect.Value) upbhandlers.Flow {
		*log = append(*log, "val.root.1")
		return upbhandlers.Continue
	}, nil)

	root2 := root.NewSubMessageField(2, upbhandlers.Message, true, child)
	root2.SetOnStartSubMessage(func(closure, fval any) (upbhandlers.Flow, any) {
		*log = append(*log, "startsub.root.2")
		return upbhandlers.Continue, closure
	})
	root2.SetOnEndSubMessage(func(closure, fval any) upbhandlers.Flow {
		*log = append(*log, "endsub.root.2")
		return upbhandlers.Continue
	})

	child1 := child.NewField(1, upbhandlers.Int32, false)
	child1.SetOnValue(func(closure, fval any, value protoreflect.Value) upbhandlers.Flow {
		*log = append(*log, "val.child.1")
		return upbhandlers.Continue
	}, nil)

	root.SetOnStartMessage(func(closure any) upbhandlers.Flow {
		*log = append(*log, "start.root")
		return upbhandlers.Continue
	})
	root.SetOnEndMessage(func(closure any, status *upbhandlers.Status) {
		*log = append(*log, "end.root")
	})
	child.SetOnStartMessage(func(closure any) upbhandlers.Flow {
		*log = append(*log, "start.child")
		return upbhandlers.Continue
	})
	child.SetOnEndMessage(func(closure any, status *upbhandlers.Status) {
		*log = append(*log, "end.child")
	})

	return r, root, child
}

func TestDispatcherNestedSubMessage(t *testing.T) {
	t.Parallel()

	var log []string
	r, _, _ := buildSimpleRegistry(t, &log)

	d := upbhandlers.NewDispatcher(8)
	d.Init(r)
	d.Reset(nil, 0)

	data, err := protoscope.NewScanner(`1: 42 2: {1: 7}`).Exec()
	require.NoError(t, err)

	require.Equal(t, upbhandlers.Continue, d.DispatchStartMessage())
	walk(t, d, data)
	var status upbhandlers.Status
	d.DispatchEndMessage(&status)
	require.True(t, status.OK())

	require.Equal(t, []string{
		"start.root",
		"val.root.1",
		"startsub.root.2",
		"start.child",
		"val.child.1",
		"end.child",
		"endsub.root.2",
		"end.root",
	}, log)
	require.Equal(t, 0, d.CurrentDepth())
}

func TestDispatcherStartSubMessageSkipElidesSubtree(t *testing.T) {
	t.Parallel()

	var log []string
	r := upbhandlers.NewRegistry()
	root := r.NewMessage()
	child := r.NewMessage()

	root2 := root.NewSubMessageField(2, upbhandlers.Message, false, child)
	root2.SetOnStartSubMessage(func(closure, fval any) (upbhandlers.Flow, any) {
		log = append(log, "startsub.root.2")
		return upbhandlers.SkipSubMessage, closure
	})
	root2.SetOnEndSubMessage(func(closure, fval any) upbhandlers.Flow {
		log = append(log, "endsub.root.2")
		return upbhandlers.Continue
	})

	child1 := child.NewField(1, upbhandlers.Int32, false)
	child1.SetOnValue(func(closure, fval any, value protoreflect.Value) upbhandlers.Flow {
		log = append(log, "val.child.1")
		return upbhandlers.Continue
	}, nil)
	child.SetOnStartMessage(func(closure any) upbhandlers.Flow {
		log = append(log, "start.child")
		return upbhandlers.Continue
	})
	child.SetOnEndMessage(func(closure any, status *upbhandlers.Status) {
		log = append(log, "end.child")
	})

	root1 := root.NewField(1, upbhandlers.Int32, false)
	root1.SetOnValue(func(closure, fval any, value protoreflect.Value) upbhandlers.Flow {
		log = append(log, "val.root.1")
		return upbhandlers.Continue
	}, nil)

	d := upbhandlers.NewDispatcher(8)
	d.Init(r)
	d.Reset(nil, 0)

	d.DispatchStartMessage()
	data, err := protoscope.NewScanner(`2: {1: 7} 1: 42`).Exec()
	require.NoError(t, err)
	walk(t, d, data)

	// The skipped submessage's own start-msg/value/end-msg are never
	// invoked. Nor is its end-submsg: the matching DispatchEndSubMessage
	// call observes noframe() and returns SkipSubMessage without ever
	// calling onEndSubMessage, matching S3's callback log exactly.
	// Dispatch resumes normally for sibling fields afterwards.
	require.Equal(t, []string{"startsub.root.2", "val.root.1"}, log)
}

func TestDispatcherNestingOverflowSetsStatus(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	self := r.NewMessage()
	self.NewSubMessageField(1, upbhandlers.Message, false, self)

	d := upbhandlers.NewDispatcher(2) // room for 2 levels below the top.
	d.Init(r)
	d.Reset(nil, 0)
	d.DispatchStartMessage()

	f := self.Lookup(uint32(1)<<3 | uint32(protowire.BytesType))
	require.NotNil(t, f)

	require.Equal(t, upbhandlers.Continue, d.DispatchStartSubMessage(f, 0))
	require.Equal(t, upbhandlers.Continue, d.DispatchStartSubMessage(f, 0))
	// The third level exceeds the two configured below the top.
	require.Equal(t, upbhandlers.SkipSubMessage, d.DispatchStartSubMessage(f, 0))

	require.False(t, d.Status().OK())
	require.ErrorIs(t, d.Status().Err(), upbhandlers.ErrNestingTooDeep)

	d.DispatchEndSubMessage()
	d.DispatchEndSubMessage()
	d.DispatchEndSubMessage()
	require.Equal(t, 0, d.CurrentDepth())
}

func TestBreakSetsNoframeAtCurrentDepth(t *testing.T) {
	t.Parallel()

	r := upbhandlers.NewRegistry()
	m := r.NewMessage()
	f := m.NewSubMessageField(1, upbhandlers.Message, false, m)

	d := upbhandlers.NewDispatcher(4)
	d.Init(r)
	d.Reset(nil, 0)
	d.DispatchStartMessage()

	require.Equal(t, upbhandlers.Continue, d.DispatchStartSubMessage(f, 0))
	require.Equal(t, 1, d.CurrentDepth())
	d.Break()
	// Break leaves the skip boundary alone...
	require.False(t, d.Skipping())
	// ...but puts the noframe boundary at depth 1, so the matching end is
	// reported as skipped.
	require.Equal(t, upbhandlers.SkipSubMessage, d.DispatchEndSubMessage())
	require.Equal(t, 0, d.CurrentDepth())
	// A second, redundant Break() call is an internal consistency
	// violation caught by an assertion compiled in only under the
	// "debug" build tag, matching upb_dispatcher_break's own assert().
}

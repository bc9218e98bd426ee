package debugger_test

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/engine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
)

// TestGetBacktraceInBreakpointMode exercises GET_BACKTRACE while paused:
// the reply streams one (compressed pointer, offset) entry per call frame,
// innermost first, fragmented as BACKTRACE/BACKTRACE_END.
func TestGetBacktraceInBreakpointMode(t *testing.T) {
	pipe, sess, eng := newSession(t)
	pipe.ClientRead() // drain Configuration

	bc := eng.RegisterFunction([]uint32{0})
	outer := eng.CurrentFrame()
	inner := eng.PushFrame()

	depth := make([]byte, 4)
	binary.NativeEndian.PutUint32(depth, 0) // unlimited
	pipe.ClientWrite(clientFrame(message.GetBacktrace, depth))
	pipe.ClientWrite(clientFrame(message.Continue, nil))

	sess.Safepoint(bc, 0, inner)

	frames := serverFrames(t, pipe.ClientRead())
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want BREAKPOINT_HIT + BACKTRACE_END, got %v", len(frames), frames)
	}
	if message.Outbound(frames[0][0]) != message.BreakpointHit {
		t.Fatalf("frame 0 type = %v, want BreakpointHit", message.Outbound(frames[0][0]))
	}
	if message.Outbound(frames[1][0]) != message.BacktraceEnd {
		t.Fatalf("frame 1 type = %v, want BacktraceEnd", message.Outbound(frames[1][0]))
	}

	body := frames[1][1:]
	const entrySize = 2 + 4 // cpointer size (2, default config) + uint32 offset
	if len(body)%entrySize != 0 {
		t.Fatalf("backtrace body length %d is not a multiple of %d", len(body), entrySize)
	}

	var got []engine.BacktraceFrame
	for i := 0; i*entrySize < len(body); i++ {
		entry := body[i*entrySize : (i+1)*entrySize]
		got = append(got, engine.BacktraceFrame{
			ByteCode: message.DecodeCP(entry[:2], 2, binary.NativeEndian),
			Offset:   binary.NativeEndian.Uint32(entry[2:6]),
		})
	}

	want := []engine.BacktraceFrame{
		{ByteCode: 0, Offset: uint32(inner)},
		{ByteCode: 0, Offset: uint32(outer)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded backtrace mismatch (-want +got):\n%s", diff)
	}
}

// Package engine defines the narrow interface the debugger core consumes
// from the script engine it is embedded in. spec.md treats the bytecode
// interpreter, parser, and allocator as external collaborators that are
// explicitly out of scope (spec.md §1); this package is the seam between
// them and pkg/debugger.
package engine

import "github.com/jerryscript-project/jerry-debugger-go/pkg/message"

// FrameID identifies a call frame, used to scope NEXT/FINISH stepping via
// spec.md §4.5's stop_context comparison ("deeper than" / "shallower
// than" the frame that was active when the step command was issued).
type FrameID uint64

// BacktraceFrame is one entry of a GET_BACKTRACE reply: a compressed
// bytecode pointer and the last-executed offset within it.
type BacktraceFrame struct {
	ByteCode message.CompressedPointer
	Offset   uint32
}

// MemStats mirrors the five native-order counters spec.md §4.6 requires.
type MemStats struct {
	TotalAllocated uint32
	ByteCodeBytes  uint32
	StringBytes    uint32
	ObjectBytes    uint32
	PropertyBytes  uint32
}

// EvalMode distinguishes a plain evaluate request from a
// throw-as-exception request, mirroring message.EvalSubtype.
type EvalMode int

const (
	EvalOnly EvalMode = iota
	EvalAndThrow
)

// Engine is the seam the debugger core calls into while paused, to
// inspect or affect the running script. It never calls back into the
// core; all control flow is driven by the core calling Engine methods
// synchronously from Session.Poll/PollBlocking, consistent with spec.md
// §5's single-threaded cooperative model.
type Engine interface {
	// CurrentFrame returns the call frame active at the last safepoint;
	// used as stop_context by NEXT/FINISH.
	CurrentFrame() FrameID

	// FrameDepth returns f's depth in the call stack (0 = outermost).
	// Deeper frames have a strictly greater depth than their callers.
	FrameDepth(f FrameID) int

	// SetBreakpoint toggles the active bit for offset within bc's
	// breakpoint bitmap. It returns an error for an unknown (bc, offset)
	// pair, per spec.md §4.5's UPDATE_BREAKPOINT semantics.
	SetBreakpoint(bc message.CompressedPointer, offset uint32, active bool) error

	// IsBreakpointActive reports whether offset within bc currently has an
	// active breakpoint, consulted by the core at every safepoint.
	IsBreakpointActive(bc message.CompressedPointer, offset uint32) bool

	// Backtrace walks the call-frame chain from top to maxDepth frames
	// (0 = unlimited).
	Backtrace(maxDepth uint32) []BacktraceFrame

	// Evaluate runs expr in the currently paused context. mode selects
	// whether the result (or an evaluation error) should also be
	// thrown as an exception at the paused frame.
	Evaluate(expr string, mode EvalMode) (result string, evalErr error)

	// MemStats reports the five engine memory counters.
	MemStats() MemStats

	// ReleaseByteCode is called once a bytecode unit's deferred-free
	// two-phase handshake completes (spec.md §4.5): the engine enqueued
	// it for release, the client acknowledged with FREE_BYTE_CODE_CP, and
	// it may now actually be freed.
	ReleaseByteCode(bc message.CompressedPointer)

	// Reset reinitializes the engine's script context, in response to a
	// client CONTEXT_RESET request.
	Reset()

	// Throw injects value as a thrown exception at the currently paused
	// frame, to be delivered once execution resumes. It is the effect of a
	// client THROW/THROW_PART request.
	Throw(value string) error
}

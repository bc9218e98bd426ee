// Package refengine is a small, self-contained reference implementation
// of pkg/engine.Engine: a toy flat-instruction-list "script engine" that
// exists purely to exercise and test pkg/debugger end to end. It is never
// present on the wire and never referenced from the protocol packages;
// it plays the role the bytecode interpreter, parser, and allocator play
// in the embedding this debugger core is designed for.
package refengine

import (
	"fmt"
	"sync"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/engine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
)

type bpKey struct {
	bc     message.CompressedPointer
	offset uint32
}

// Engine is a minimal, in-memory stand-in for a real bytecode
// interpreter: functions are identified by a CompressedPointer and a flat
// set of valid breakpoint offsets, the call stack is a plain slice, and
// "evaluation" is a lookup into a variable table. It is driven entirely
// by direct method calls from a test or from cmd/jerrydbg's demo loop —
// nothing here runs concurrently, matching the single-threaded
// cooperative model the debugger core assumes.
type Engine struct {
	mu sync.Mutex // guards the fields below against concurrent test helper use

	functions   map[message.CompressedPointer]map[uint32]bool // known sites -> active
	nextCP      message.CompressedPointer
	frames      []engine.FrameID // stack; frames[len-1] is current
	vars        map[string]string
	pending     []string // values Throw has queued
	byteUnits   map[message.CompressedPointer]bool
	stringBytes uint32
}

// New returns an Engine with an empty call stack and no loaded functions.
func New() *Engine {
	return &Engine{
		functions: make(map[message.CompressedPointer]map[uint32]bool),
		vars:      make(map[string]string),
		byteUnits: make(map[message.CompressedPointer]bool),
		frames:    []engine.FrameID{0},
	}
}

// RegisterFunction declares a newly "compiled" function with the given
// valid breakpoint offsets and returns the compressed pointer assigned to
// it, mirroring what a real parser would hand the debugger core via
// NotifyParse.
func (e *Engine) RegisterFunction(offsets []uint32) message.CompressedPointer {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextCP++
	cp := e.nextCP
	sites := make(map[uint32]bool, len(offsets))
	for _, off := range offsets {
		sites[off] = false
	}
	e.functions[cp] = sites
	e.byteUnits[cp] = true
	return cp
}

// PushFrame simulates entering a call, returning the new frame's ID.
func (e *Engine) PushFrame() engine.FrameID {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := engine.FrameID(len(e.frames))
	e.frames = append(e.frames, id)
	return id
}

// PopFrame simulates returning from the current call.
func (e *Engine) PopFrame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.frames) > 1 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// SetVar makes name resolve to value for Evaluate, simulating a variable
// live in the currently paused scope.
func (e *Engine) SetVar(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value
}

// PendingThrows drains and returns the values queued by Throw, in order.
func (e *Engine) PendingThrows() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.pending
	e.pending = nil
	return out
}

// CurrentFrame implements engine.Engine.
func (e *Engine) CurrentFrame() engine.FrameID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames[len(e.frames)-1]
}

// FrameDepth implements engine.Engine: a frame's ID is its stack index in
// this toy engine, which is already its depth.
func (e *Engine) FrameDepth(f engine.FrameID) int {
	return int(f)
}

// SetBreakpoint implements engine.Engine.
func (e *Engine) SetBreakpoint(bc message.CompressedPointer, offset uint32, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sites, ok := e.functions[bc]
	if !ok {
		return fmt.Errorf("refengine: unknown bytecode pointer %d", bc)
	}
	if _, ok := sites[offset]; !ok {
		return fmt.Errorf("refengine: offset %d is not a breakpoint site in function %d", offset, bc)
	}
	sites[offset] = active
	return nil
}

// IsBreakpointActive implements engine.Engine.
func (e *Engine) IsBreakpointActive(bc message.CompressedPointer, offset uint32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	sites, ok := e.functions[bc]
	if !ok {
		return false
	}
	return sites[offset]
}

// Backtrace implements engine.Engine, reporting the stack from the
// innermost frame outward. This toy engine tracks frame IDs only, not
// per-frame bytecode location, so every entry reports bytecode pointer 0
// and carries the frame's ID in the offset field; a real engine would
// record the actual (bytecode, offset) the frame was suspended at.
func (e *Engine) Backtrace(maxDepth uint32) []engine.BacktraceFrame {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.frames)
	if maxDepth > 0 && int(maxDepth) < n {
		n = int(maxDepth)
	}
	out := make([]engine.BacktraceFrame, 0, n)
	for i := len(e.frames) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, engine.BacktraceFrame{ByteCode: 0, Offset: uint32(e.frames[i])})
	}
	return out
}

// Evaluate implements engine.Engine by looking expr up as a variable
// name. Unknown names are reported as an evaluation error. When mode
// requests a throw, the (stringified) result is instead queued for
// PendingThrows and returned as the displayed result — mirroring a real
// engine injecting the evaluated value as a thrown exception at the
// paused frame while still reporting what it evaluated to.
func (e *Engine) Evaluate(expr string, mode engine.EvalMode) (string, error) {
	e.mu.Lock()
	value, ok := e.vars[expr]
	e.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("ReferenceError: %s is not defined", expr)
	}

	if mode == engine.EvalAndThrow {
		e.mu.Lock()
		e.pending = append(e.pending, value)
		e.mu.Unlock()
	}
	return value, nil
}

// MemStats implements engine.Engine with a trivial accounting scheme:
// each loaded bytecode unit costs a fixed size, each variable its name
// plus value length.
func (e *Engine) MemStats() engine.MemStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var strBytes uint32
	for k, v := range e.vars {
		strBytes += uint32(len(k) + len(v))
	}
	bcBytes := uint32(len(e.byteUnits)) * 64

	return engine.MemStats{
		TotalAllocated: bcBytes + strBytes,
		ByteCodeBytes:  bcBytes,
		StringBytes:    strBytes,
		ObjectBytes:    0,
		PropertyBytes:  0,
	}
}

// ReleaseByteCode implements engine.Engine.
func (e *Engine) ReleaseByteCode(bc message.CompressedPointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.byteUnits, bc)
	delete(e.functions, bc)
}

// Reset implements engine.Engine: the script context restarts, so
// variables and the call stack are cleared. Loaded bytecode units are
// untouched — in a real engine, unloading compiled code is the parser's
// concern, not a context reset's.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars = make(map[string]string)
	e.frames = []engine.FrameID{0}
	e.pending = nil
}

// Throw implements engine.Engine by queuing value for PendingThrows.
func (e *Engine) Throw(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, value)
	return nil
}

package refengine_test

import (
	"testing"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/engine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/refengine"
)

func TestRegisterAndToggleBreakpoint(t *testing.T) {
	e := refengine.New()
	bc := e.RegisterFunction([]uint32{0, 4, 9})

	if e.IsBreakpointActive(bc, 4) {
		t.Fatal("newly registered breakpoint site should start inactive")
	}
	if err := e.SetBreakpoint(bc, 4, true); err != nil {
		t.Fatal(err)
	}
	if !e.IsBreakpointActive(bc, 4) {
		t.Fatal("expected breakpoint to be active after SetBreakpoint(true)")
	}
	if err := e.SetBreakpoint(bc, 1, true); err == nil {
		t.Fatal("expected an error setting a breakpoint at a non-site offset")
	}
}

func TestFrameStackAndDepth(t *testing.T) {
	e := refengine.New()
	root := e.CurrentFrame()
	if e.FrameDepth(root) != 0 {
		t.Fatalf("FrameDepth(root) = %d, want 0", e.FrameDepth(root))
	}

	child := e.PushFrame()
	if e.CurrentFrame() != child {
		t.Fatal("CurrentFrame() did not reflect the pushed frame")
	}
	if e.FrameDepth(child) != 1 {
		t.Fatalf("FrameDepth(child) = %d, want 1", e.FrameDepth(child))
	}

	e.PopFrame()
	if e.CurrentFrame() != root {
		t.Fatal("CurrentFrame() did not return to root after PopFrame")
	}
}

func TestEvaluateUnknownNameErrors(t *testing.T) {
	e := refengine.New()
	if _, err := e.Evaluate("missing", engine.EvalOnly); err == nil {
		t.Fatal("expected an error evaluating an undefined name")
	}
}

func TestEvaluateAndThrowQueuesPending(t *testing.T) {
	e := refengine.New()
	e.SetVar("x", "42")

	result, err := e.Evaluate("x", engine.EvalAndThrow)
	if err != nil {
		t.Fatal(err)
	}
	if result != "42" {
		t.Errorf("result = %q, want %q", result, "42")
	}

	pending := e.PendingThrows()
	if len(pending) != 1 || pending[0] != "42" {
		t.Errorf("PendingThrows() = %v, want [42]", pending)
	}
	if len(e.PendingThrows()) != 0 {
		t.Error("PendingThrows() should drain on read")
	}
}

func TestThrowQueuesValue(t *testing.T) {
	e := refengine.New()
	if err := e.Throw("boom"); err != nil {
		t.Fatal(err)
	}
	pending := e.PendingThrows()
	if len(pending) != 1 || pending[0] != "boom" {
		t.Errorf("PendingThrows() = %v, want [boom]", pending)
	}
}

func TestBacktraceOrdersInnermostFirst(t *testing.T) {
	e := refengine.New()
	e.PushFrame()
	e.PushFrame()

	bt := e.Backtrace(0)
	if len(bt) != 3 {
		t.Fatalf("len(Backtrace) = %d, want 3", len(bt))
	}
	if bt[0].Offset != uint32(e.CurrentFrame()) {
		t.Errorf("innermost frame offset = %d, want %d", bt[0].Offset, e.CurrentFrame())
	}

	limited := e.Backtrace(1)
	if len(limited) != 1 {
		t.Fatalf("len(Backtrace(1)) = %d, want 1", len(limited))
	}
}

func TestMemStatsAccountsLoadedFunctionsAndVars(t *testing.T) {
	e := refengine.New()
	before := e.MemStats()

	e.RegisterFunction([]uint32{0})
	e.SetVar("name", "value")

	after := e.MemStats()
	if after.ByteCodeBytes <= before.ByteCodeBytes {
		t.Error("expected ByteCodeBytes to grow after RegisterFunction")
	}
	if after.StringBytes <= before.StringBytes {
		t.Error("expected StringBytes to grow after SetVar")
	}
}

func TestReleaseByteCodeForgetsFunction(t *testing.T) {
	e := refengine.New()
	bc := e.RegisterFunction([]uint32{0})
	e.ReleaseByteCode(bc)

	if err := e.SetBreakpoint(bc, 0, true); err == nil {
		t.Fatal("expected an error after releasing the bytecode unit")
	}
}

func TestResetClearsVarsAndStackButNotCode(t *testing.T) {
	e := refengine.New()
	bc := e.RegisterFunction([]uint32{0})
	e.SetVar("x", "1")
	e.PushFrame()

	e.Reset()

	if _, err := e.Evaluate("x", engine.EvalOnly); err == nil {
		t.Fatal("expected variables to be cleared by Reset")
	}
	if e.CurrentFrame() != 0 {
		t.Errorf("CurrentFrame() after Reset = %d, want 0", e.CurrentFrame())
	}
	if err := e.SetBreakpoint(bc, 0, true); err != nil {
		t.Errorf("expected loaded bytecode to survive Reset: %v", err)
	}
}

package debugger

import (
	"github.com/jerryscript-project/jerry-debugger-go/pkg/engine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
)

// Safepoint is called by the host engine after dispatching one bytecode
// instruction, at bc/offset within the currently executing call frame.
// It is the single place spec.md §4.5's pause decision is made: every
// MESSAGE_FREQUENCY-th call also drains pending client messages, and any
// call may turn into a breakpoint pause.
func (s *Session) Safepoint(bc message.CompressedPointer, offset uint32, frame engine.FrameID) {
	if !s.connected {
		return
	}

	s.messageDelay--
	if s.messageDelay <= 0 {
		s.messageDelay = s.messageFrequency
		s.Poll()
		if !s.connected {
			return
		}
	}

	if s.mode != ModeRun {
		// Already paused (or waiting on a parse/source); the engine should
		// not be dispatching further bytecode in this state, but guard
		// against a misbehaving caller rather than double-entering a pause.
		return
	}

	if !s.shouldBreak(bc, offset, frame) {
		return
	}
	s.enterBreakpointMode(bc, offset, frame)
}

// shouldBreak implements spec.md §4.5's per-safepoint test: pause if
// VM_STOP is set or the current location has an active breakpoint and
// VM_IGNORE is clear, suppressed while a NEXT/FINISH step has not yet
// reached its target depth.
func (s *Session) shouldBreak(bc message.CompressedPointer, offset uint32, frame engine.FrameID) bool {
	if s.vmIgnore {
		return false
	}

	wantsStop := s.vmStop || s.engine.IsBreakpointActive(bc, offset)
	if !wantsStop {
		return false
	}

	switch s.stepMode {
	case stepOver:
		if s.engine.FrameDepth(frame) > s.engine.FrameDepth(s.stopContext) {
			return false
		}
	case stepOut:
		if s.engine.FrameDepth(frame) >= s.engine.FrameDepth(s.stopContext) {
			return false
		}
	}
	return true
}

func (s *Session) enterBreakpointMode(bc message.CompressedPointer, offset uint32, frame engine.FrameID) {
	s.vmStop = false
	s.stepMode = stepNone
	s.mode = ModeBreakpoint
	s.stopContext = frame
	s.breakpointHits++

	if err := s.writer.SendData(message.BreakpointHit, s.encodeCPOffset(bc, offset)); err != nil {
		return
	}

	s.PollBlocking(func() bool { return s.mode != ModeBreakpoint })
}

// encodeCPOffset packs a (compressed pointer, offset) pair at the
// configured cpointer width, used by both BREAKPOINT_HIT and
// EXCEPTION_HIT.
func (s *Session) encodeCPOffset(bc message.CompressedPointer, offset uint32) []byte {
	body := make([]byte, s.cpSize+4)
	switch s.cpSize {
	case 2:
		s.byteOrder.PutUint16(body[0:2], uint16(bc))
	default:
		s.byteOrder.PutUint32(body[0:4], uint32(bc))
	}
	s.byteOrder.PutUint32(body[s.cpSize:], offset)
	return body
}

// NotifyException is called by the engine when a script throws, at bc/
// offset within frame. If exception reporting is enabled and not
// suppressed, it streams the exception's string form and an
// EXCEPTION_HIT message, then blocks exactly as a breakpoint pause does.
func (s *Session) NotifyException(bc message.CompressedPointer, offset uint32, frame engine.FrameID, exceptionString string) {
	if !s.connected || s.vmIgnore || s.vmIgnoreException || !s.exceptionStopOn {
		return
	}

	if err := s.writer.SendString(message.ExceptionStr, message.ExceptionStrEnd, []byte(exceptionString)); err != nil {
		return
	}
	if err := s.writer.SendData(message.ExceptionHit, s.encodeCPOffset(bc, offset)); err != nil {
		return
	}

	s.mode = ModeBreakpoint
	s.stepMode = stepNone
	s.stopContext = frame
	s.exceptionHits++
	s.PollBlocking(func() bool { return s.mode != ModeBreakpoint })
}

package debugger

import (
	"errors"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
)

var errMalformed = errors.New("debugger: malformed message body")

// handleMessage dispatches one reassembled inbound payload (type byte
// plus body) according to the session's current mode. It returns a
// non-nil error for anything that should be treated as a protocol
// violation; the caller (poll.go) tears the session down.
func (s *Session) handleMessage(payload []byte) error {
	if len(payload) == 0 {
		return errMalformed
	}
	t := message.Inbound(payload[0])
	body := payload[1:]

	if !accepts(s.mode, t) {
		return errors.New("debugger: " + t.String() + " not accepted in " + s.mode.String() + " mode")
	}

	switch t {
	case message.FreeByteCodeCP:
		return s.handleFreeByteCodeCP(body)
	case message.UpdateBreakpoint:
		return s.handleUpdateBreakpoint(body)
	case message.ExceptionConfig:
		return s.handleExceptionConfig(body)
	case message.ParserConfig:
		return s.handleParserConfig(body)
	case message.MemStats:
		return s.handleMemStats()
	case message.Stop:
		s.vmStop = true
		return nil

	case message.ParserResume:
		s.parserWaitActive = false
		return nil

	case message.ClientSource:
		return s.handleClientSource(body)
	case message.ClientSourcePart:
		return s.handleClientSourcePart(body)
	case message.NoMoreSources:
		s.sourceResult = SourceEnd
		s.mode = ModeRun
		return nil
	case message.ContextReset:
		s.engine.Reset()
		s.contextResetMode = true
		s.sourceResult = SourceReset
		s.mode = ModeRun
		return nil

	case message.Continue:
		s.mode = ModeRun
		s.stepMode = stepNone
		s.vmStop = false
		return nil
	case message.Step:
		s.mode = ModeRun
		s.stepMode = stepNone
		s.vmStop = true
		return nil
	case message.Next:
		s.mode = ModeRun
		s.stepMode = stepOver
		s.vmStop = true
		return nil
	case message.Finish:
		s.mode = ModeRun
		s.stepMode = stepOut
		s.vmStop = true
		return nil

	case message.GetBacktrace:
		return s.handleGetBacktrace(body)

	case message.Eval:
		return s.handleEval(body, s.evalAssembler)
	case message.EvalPart:
		return s.handleEvalPart(body, s.evalAssembler)

	case message.Throw:
		return s.handleThrow(body, s.throwAssembler)
	case message.ThrowPart:
		return s.handleThrowPart(body, s.throwAssembler)

	default:
		return errors.New("debugger: unknown message type " + t.String())
	}
}

func (s *Session) handleFreeByteCodeCP(body []byte) error {
	if len(body) != s.cpSize {
		return errMalformed
	}
	cp := message.DecodeCP(body, s.cpSize, s.byteOrder)
	for i, q := range s.freeQueue {
		if q == cp {
			s.freeQueue = append(s.freeQueue[:i], s.freeQueue[i+1:]...)
			s.engine.ReleaseByteCode(cp)
			return nil
		}
	}
	return errors.New("debugger: FREE_BYTE_CODE_CP for unqueued pointer")
}

func (s *Session) handleUpdateBreakpoint(body []byte) error {
	if len(body) != 1+s.cpSize+4 {
		return errMalformed
	}
	active := body[0] != 0
	cp := message.DecodeCP(body[1:1+s.cpSize], s.cpSize, s.byteOrder)
	offset := s.byteOrder.Uint32(body[1+s.cpSize:])
	return s.engine.SetBreakpoint(cp, offset, active)
}

func (s *Session) handleExceptionConfig(body []byte) error {
	if len(body) != 1 {
		return errMalformed
	}
	s.exceptionStopOn = body[0] != 0
	return nil
}

func (s *Session) handleParserConfig(body []byte) error {
	if len(body) != 1 {
		return errMalformed
	}
	s.parserWaitEnabled = body[0] != 0
	return nil
}

func (s *Session) handleMemStats() error {
	stats := s.engine.MemStats()
	body := make([]byte, 20)
	s.byteOrder.PutUint32(body[0:4], stats.TotalAllocated)
	s.byteOrder.PutUint32(body[4:8], stats.ByteCodeBytes)
	s.byteOrder.PutUint32(body[8:12], stats.StringBytes)
	s.byteOrder.PutUint32(body[12:16], stats.ObjectBytes)
	s.byteOrder.PutUint32(body[16:20], stats.PropertyBytes)
	return s.writer.SendData(message.MemStatsReply, body)
}

// EnqueueRelease is called by the host engine when it wants to free a
// bytecode unit but must wait for the client's acknowledgment first
// (spec.md §4.5's two-phase deferred-free handshake). It records the
// pointer and notifies the client with RELEASE_BYTE_CODE_CP.
func (s *Session) EnqueueRelease(bc message.CompressedPointer) error {
	s.freeQueue = append(s.freeQueue, bc)
	return s.writer.SendFunctionCP(message.ReleaseByteCodeCP, bc, s.cpSize)
}

// SendOutput forwards bytes of program output to the client, prefixed by
// subtype, fragmented as OUTPUT_RESULT/OUTPUT_RESULT_END (spec.md §6).
func (s *Session) SendOutput(data []byte, subtype byte) error {
	body := make([]byte, 1+len(data))
	body[0] = subtype
	copy(body[1:], data)
	return s.writer.SendString(message.OutputResult, message.OutputResultEnd, body)
}

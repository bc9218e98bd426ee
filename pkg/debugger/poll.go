package debugger

import (
	"errors"
	"io"
	"time"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/metrics"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/wsframe"
)

// Poll performs one non-blocking round of I/O: it reads whatever the
// transport has ready (possibly nothing), decodes as many complete
// frames as are buffered, and dispatches each to the message handler.
// It is the method the engine's bytecode dispatch loop calls every
// MESSAGE_FREQUENCY instructions (spec.md §4.5, §5).
func (s *Session) Poll() {
	if !s.connected {
		return
	}

	n, err := s.transport.Receive(s.recvBuf[s.recvOffset:], len(s.recvBuf)-s.recvOffset)
	if err != nil {
		s.ioError(err)
		return
	}
	s.recvOffset += n
	s.bytesIn += uint64(n)

	for s.connected {
		consumed, ok := s.decodeOne()
		if !ok {
			break
		}
		if consumed == 0 {
			break
		}
		remaining := copy(s.recvBuf, s.recvBuf[consumed:s.recvOffset])
		s.recvOffset = remaining
	}
}

// decodeOne decodes and dispatches a single frame from the front of
// recvBuf. It returns the number of bytes consumed and whether a frame
// was available at all (false means "need more bytes", not an error).
func (s *Session) decodeOne() (int, bool) {
	header, payload, consumed, err := wsframe.Decode(s.ctx, s.recvBuf[:s.recvOffset], s.maxRecvPayload)
	if err == wsframe.ErrShort {
		return 0, false
	}
	if err != nil {
		s.protocolError(err.Error())
		return 0, false
	}

	switch header.Opcode {
	case wsframe.OpcodeClose:
		s.teardown("client closed connection")
		return consumed, true
	case wsframe.OpcodePing, wsframe.OpcodePong:
		// Reserved but unsupported in this dialect; an ingress PING/PONG is
		// a protocol error rather than something to be echoed.
		s.protocolError("unsupported opcode: " + header.Opcode.String())
		return consumed, true
	case wsframe.OpcodeBinary:
		if err := s.handleMessage(payload); err != nil {
			s.protocolError(err.Error())
		}
		return consumed, true
	default:
		s.protocolError("unsupported opcode: " + header.Opcode.String())
		return consumed, true
	}
}

// PollBlocking spins, polling and sleeping pollInterval between rounds,
// until done reports true or the connection drops. It is how the session
// waits out a breakpoint pause, a parser-wait pause, or a client-source
// wait without ever spawning a goroutine (spec.md §5).
func (s *Session) PollBlocking(done func() bool) {
	for s.connected && !done() {
		s.Poll()
		if !s.connected || done() {
			return
		}
		time.Sleep(s.pollInterval)
	}
}

// ioError handles a transport-level failure: log it, tear the session
// down. spec.md §7 category 1 (I/O error): always fatal to the session.
func (s *Session) ioError(err error) {
	if errors.Is(err, io.EOF) {
		s.teardown("connection closed")
		return
	}
	s.log.Warn().Err(err).Msg("transport error")
	s.teardown("transport error")
}

// protocolError handles a malformed or out-of-sequence message: log it,
// tear the session down. spec.md §7 category 2 (protocol error).
func (s *Session) protocolError(reason string) {
	s.log.Warn().Str("reason", reason).Msg("protocol error")
	s.teardown("protocol error: " + reason)
}

// teardown tears the session down per spec.md §5's cancellation
// procedure: clear all mode/transfer state, set VM_IGNORE so the engine
// stops consulting breakpoints, and release the transport. It is
// idempotent.
func (s *Session) teardown(reason string) {
	if !s.connected {
		return
	}
	s.connected = false
	s.vmIgnore = true
	s.vmStop = false
	s.mode = ModeRun
	s.stepMode = stepNone
	s.parserWaitActive = false

	s.evalAssembler.Abort()
	s.throwAssembler.Abort()
	s.sourceAssembler.Abort()
	if s.sourceResult == SourcePending {
		s.sourceResult = SourceFailed
	}

	// The deferred-free queue is flushed: the client that would have
	// acknowledged FREE_BYTE_CODE_CP is gone, so every queued unit is
	// released to the engine now.
	for _, bc := range s.freeQueue {
		s.engine.ReleaseByteCode(bc)
	}
	s.freeQueue = nil

	if err := s.transport.Close(); err != nil {
		s.log.Debug().Err(err).Msg("transport close error during teardown")
	}

	if err := s.metricsSink.Record(s.sessionMetrics(reason)); err != nil {
		s.log.Debug().Err(err).Msg("failed to record session metrics")
	}

	s.log.Info().Str("reason", reason).Msg("debugger session closed")
}

func (s *Session) sessionMetrics(reason string) metrics.Session {
	return metrics.Session{
		ID:             s.id,
		RemoteAddr:     s.remoteAddr,
		Connected:      s.connectedAt,
		Disconnected:   time.Now(),
		BytesIn:        s.bytesIn,
		BytesOut:       s.bytesOut,
		BreakpointHits: s.breakpointHits,
		ExceptionHits:  s.exceptionHits,
		Evaluations:    s.evalCount,
		Reason:         reason,
	}
}

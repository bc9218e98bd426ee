// Package debugger implements the protocol state machine / dispatcher
// described in spec.md §4.5 — the largest component of the debugger core.
// It owns the session's mode, its fixed send/receive buffers, the
// cooperative polling loop, and the acceptance rules that decide which
// inbound message types are legal in which mode.
package debugger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/engine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/metrics"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/transport"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/wsframe"
)

// PrimaryMode is the session's tagged primary mode, replacing the C
// source's flat bitset per spec.md §9's design note: run / breakpoint /
// parser-wait / client-source-wait are mutually exclusive, so a tagged
// variant plus auxiliary booleans (vmStop, vmIgnore, vmIgnoreException,
// throwPending) reads better than a bitset.
type PrimaryMode int

const (
	ModeRun PrimaryMode = iota
	ModeBreakpoint
	ModeParserWait
	ModeClientSource
)

func (m PrimaryMode) String() string {
	switch m {
	case ModeRun:
		return "run"
	case ModeBreakpoint:
		return "breakpoint"
	case ModeParserWait:
		return "parser-wait"
	case ModeClientSource:
		return "client-source-wait"
	default:
		return "unknown"
	}
}

// stepMode tracks which of NEXT/FINISH is in progress, so Safepoint can
// suppress a stop while the active frame is deeper (NEXT) or not yet
// shallower (FINISH) than stop_context (spec.md §4.5 Step semantics).
type stepMode int

const (
	stepNone stepMode = iota
	stepOver
	stepOut
)

// Config bounds the session's fixed buffers and timing, per spec.md §3 and
// §9. BufferSize is B, in [64, 256]. CPointerSize is 2 or 4.
type Config struct {
	BufferSize         int
	CPointerSize       int
	MessageFrequency   int // MESSAGE_FREQUENCY: bytecode dispatches per non-blocking poll
	PollInterval       time.Duration
	MaxInboundTransfer int // cap on eval/throw/client-source reassembly size

	// MetricsCSVPath, if non-empty, appends one CSV row summarizing the
	// session to this file on disconnect (pkg/metrics). Empty disables
	// metrics recording entirely.
	MetricsCSVPath string
}

// DefaultConfig matches the values spec.md's worked examples use.
func DefaultConfig() Config {
	return Config{
		BufferSize:         128,
		CPointerSize:       2,
		MessageFrequency:   5,
		PollInterval:       100 * time.Millisecond,
		MaxInboundTransfer: 1 << 20,
	}
}

// Session is the Go realization of spec.md §3's Session state record: one
// instance, lifetime = one accepted connection.
type Session struct {
	id     string
	log    zerolog.Logger
	engine engine.Engine

	// ctx carries the codec-level [log/slog] logger (via
	// internal/logger.FromContext) that pkg/wsframe and pkg/message use to
	// report frame/codec-level failures, distinct from the zerolog session
	// narration above.
	ctx context.Context

	transport transport.Transport

	sendBuf []byte
	recvBuf []byte
	// recv_offset: bytes currently valid in recvBuf.
	recvOffset int

	sendHeaderSize int
	recvHeaderSize int
	maxSendPayload int
	maxRecvPayload int

	byteOrder binary.ByteOrder

	connected bool

	mode     PrimaryMode
	stepMode stepMode

	vmStop             bool
	vmIgnore           bool
	vmIgnoreException  bool
	throwPending       bool
	contextResetMode   bool
	exceptionStopOn    bool
	parserWaitEnabled  bool // client asked to pause after every parse (PARSER_WAIT)
	parserWaitActive   bool // currently blocked in that pause (PARSER_WAIT_MODE)
	clientNoSourceMode bool

	messageDelay     int
	messageFrequency int
	pollInterval     time.Duration

	cpSize       int
	littleEndian bool

	stopContext engine.FrameID

	freeQueue []message.CompressedPointer

	evalAssembler   *message.Assembler
	throwAssembler  *message.Assembler
	sourceAssembler *message.Assembler
	sourceName      string

	sourceResult   SourceStatus
	sourceCallback func(name string, source []byte)

	writer *message.Writer

	metricsSink    *metrics.Sink
	connectedAt    time.Time
	remoteAddr     string
	bytesIn        uint64
	bytesOut       uint64
	breakpointHits int
	exceptionHits  int
	evalCount      int
}

// remoteAddrer is implemented by transports that can report the peer's
// address (e.g. transport.TCP, via the underlying net.Conn); it is
// consulted opportunistically for session metrics and is never required
// by the Transport interface itself.
type remoteAddrer interface {
	RemoteAddr() string
}

// SourceStatus is the outcome of WaitForClientSource, per spec.md §6.
type SourceStatus int

const (
	SourcePending SourceStatus = iota
	SourceReceived
	SourceEnd
	SourceReset
	SourceFailed
)

func (s SourceStatus) String() string {
	switch s {
	case SourceReceived:
		return "RECEIVED"
	case SourceEnd:
		return "END"
	case SourceReset:
		return "RESET"
	case SourceFailed:
		return "FAILED"
	default:
		return "PENDING"
	}
}

// New constructs a Session bound to t and eng, ready for Init. ctx is
// stashed for the lifetime of the session and consulted by pkg/wsframe and
// pkg/message for codec-level [log/slog] logging; a nil ctx is replaced
// with context.Background().
func New(ctx context.Context, t transport.Transport, eng engine.Engine, cfg Config, log zerolog.Logger) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.BufferSize < 64 {
		cfg.BufferSize = 64
	}
	if cfg.BufferSize > 256 {
		cfg.BufferSize = 256
	}
	if cfg.CPointerSize != 4 {
		cfg.CPointerSize = 2
	}
	if cfg.MessageFrequency <= 0 {
		cfg.MessageFrequency = 5
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.MaxInboundTransfer <= 0 {
		cfg.MaxInboundTransfer = 1 << 20
	}

	id := shortuuid.New()
	s := &Session{
		id:               id,
		log:              log.With().Str("session_id", id).Logger(),
		ctx:              ctx,
		engine:           eng,
		transport:        t,
		byteOrder:        binary.NativeEndian,
		messageFrequency: cfg.MessageFrequency,
		messageDelay:     cfg.MessageFrequency,
		pollInterval:     cfg.PollInterval,
		cpSize:           cfg.CPointerSize,
		littleEndian:     nativeIsLittleEndian(),
		evalAssembler:    message.NewAssembler(cfg.MaxInboundTransfer),
		throwAssembler:   message.NewAssembler(cfg.MaxInboundTransfer),
		sourceAssembler:  message.NewAssembler(cfg.MaxInboundTransfer),
	}
	if cfg.MetricsCSVPath != "" {
		s.metricsSink = metrics.NewSink(cfg.MetricsCSVPath)
	}
	s.SetTransmitSizes(wsframe.HeaderSize, cfg.BufferSize, wsframe.RecvHeaderSize, cfg.BufferSize)
	return s
}

func nativeIsLittleEndian() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	return buf[0] == 1
}

// SetTransmitSizes configures framing overheads, per spec.md §6's
// transport plug-in interface (send_header_size, max_message_size,
// receive_header_size). It must be called before Init.
func (s *Session) SetTransmitSizes(sendHeader, maxSend, recvHeader, maxRecv int) {
	s.sendHeaderSize = sendHeader
	s.recvHeaderSize = recvHeader

	max := maxSend - sendHeader
	if max > wsframe.MaxPayload {
		max = wsframe.MaxPayload
	}
	s.maxSendPayload = max

	max = maxRecv - recvHeader
	if max > wsframe.MaxPayload {
		max = wsframe.MaxPayload
	}
	s.maxRecvPayload = max

	s.sendBuf = make([]byte, maxSend)
	s.recvBuf = make([]byte, maxRecv)
	s.writer = message.NewWriter(s, s.maxSendPayload, s.byteOrder)
}

// Init accepts one client on port, performs the handshake, sends the
// Configuration message, and sets VM_STOP so the engine pauses at the
// first breakpoint opportunity, per spec.md §4.3.
func (s *Session) Init(port int) error {
	if err := s.transport.Accept(port); err != nil {
		return fmt.Errorf("debugger: accept failed: %w", err)
	}

	if err := s.handshake(); err != nil {
		s.transport.Close()
		s.log.Warn().Err(err).Msg("handshake failed")
		return err
	}

	s.connected = true
	s.mode = ModeRun
	s.vmStop = true
	s.connectedAt = time.Now()
	if ra, ok := s.transport.(remoteAddrer); ok {
		s.remoteAddr = ra.RemoteAddr()
	}

	if err := s.sendConfiguration(); err != nil {
		s.teardown("failed to send configuration")
		return err
	}

	s.log.Info().Int("buffer_size", len(s.recvBuf)).Int("cpointer_size", s.cpSize).
		Msg("debugger client connected")
	return nil
}

func (s *Session) sendConfiguration() error {
	body := []byte{
		byte(s.maxRecvPayload),
		byte(s.cpSize),
		boolByte(s.littleEndian),
		message.ProtocolVersion,
	}
	return s.writer.SendData(message.Configuration, body)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// IsConnected reports whether a handshaked client is currently attached.
func (s *Session) IsConnected() bool {
	return s.connected
}

// Stop requests that the next safepoint pause unconditionally
// (spec.md §6 engine-facing API, VM_STOP).
func (s *Session) Stop() {
	s.vmStop = true
}

// Continue clears a pending unconditional stop request.
func (s *Session) Continue() {
	s.vmStop = false
}

// StopAtBreakpoint enables or disables honoring breakpoints entirely; it
// is the engine-facing twin of the client's EXCEPTION_CONFIG-style
// toggles, used e.g. during teardown (VM_IGNORE).
func (s *Session) StopAtBreakpoint(enable bool) {
	s.vmIgnore = !enable
}

// SendFrame implements message.FrameSender: it encodes payload as a single
// FIN|BINARY wsframe into the session's fixed send buffer and pushes it
// through the transport. Every call sends one complete frame — the
// session never leaves a frame half-written on the wire.
func (s *Session) SendFrame(payload []byte) error {
	if len(payload) > s.maxSendPayload {
		return errors.New("debugger: outgoing payload exceeds max_send_payload")
	}
	n := wsframe.Encode(s.sendBuf, payload)
	if err := s.transport.Send(s.sendBuf[:n]); err != nil {
		s.ioError(err)
		return err
	}
	s.bytesOut += uint64(n)
	return nil
}

// Close tears the session down (idempotent).
func (s *Session) Close() {
	if !s.connected {
		return
	}
	s.teardown("local close")
}

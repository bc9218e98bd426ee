package debugger_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/debugger"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/refengine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/transport"
)

const sampleKey = "dGhlIHNhbXBsZSBub25jZQ=="

const handshakeRequest = "GET /jerry-debugger HTTP/1.1\r\n" +
	"Host: localhost\r\n" +
	"Sec-WebSocket-Key: " + sampleKey + "\r\n" +
	"\r\n"

// clientFrame builds one ingress ws frame carrying an inbound message
// (type byte + body). The mask key is all-zero, which is a legal RFC 6455
// mask and leaves the payload bytes unchanged after XOR, keeping these
// tests' frame construction simple without re-implementing masking.
func clientFrame(t message.Inbound, body []byte) []byte {
	payload := append([]byte{byte(t)}, body...)
	buf := make([]byte, 6+len(payload))
	buf[0] = 0x82
	buf[1] = 0x80 | byte(len(payload))
	copy(buf[6:], payload)
	return buf
}

func rawOpcodeFrame(opcode byte, body []byte) []byte {
	buf := make([]byte, 6+len(body))
	buf[0] = 0x80 | opcode
	buf[1] = 0x80 | byte(len(body))
	copy(buf[6:], body)
	return buf
}

// serverFrames splits a buffer of concatenated unmasked egress frames
// (as produced by the session) into their payloads (type byte + body).
func serverFrames(t *testing.T, buf []byte) [][]byte {
	t.Helper()
	var out [][]byte
	for len(buf) > 0 {
		if len(buf) < 2 {
			t.Fatalf("trailing partial frame: %v", buf)
		}
		length := int(buf[1])
		if len(buf) < 2+length {
			t.Fatalf("incomplete frame body: %v", buf)
		}
		out = append(out, buf[2:2+length])
		buf = buf[2+length:]
	}
	return out
}

func newSession(t *testing.T) (*transport.Pipe, *debugger.Session, *refengine.Engine) {
	t.Helper()

	pipe := transport.NewPipe()
	pipe.ClientWrite([]byte(handshakeRequest))

	eng := refengine.New()
	cfg := debugger.DefaultConfig()
	cfg.PollInterval = time.Millisecond

	sess := debugger.New(context.Background(), pipe, eng, cfg, zerolog.Nop())
	if err := sess.Init(0); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !sess.IsConnected() {
		t.Fatal("IsConnected() = false after Init")
	}
	return pipe, sess, eng
}

// Scenario 1: handshake then pause. A CONFIGURATION message is the first
// thing on the wire, as the literal 101 response followed by one ws frame.
func TestHandshakeThenConfiguration(t *testing.T) {
	pipe := transport.NewPipe()
	pipe.ClientWrite([]byte(handshakeRequest))

	sess := debugger.New(context.Background(), pipe, refengine.New(), debugger.DefaultConfig(), zerolog.Nop())
	if err := sess.Init(0); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	out := pipe.ClientRead()
	if !bytes.HasPrefix(out, []byte("HTTP/1.1 101 Switching Protocols")) {
		t.Fatalf("response does not start with 101 Switching Protocols: %q", out)
	}
	if !bytes.Contains(out, []byte("Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")) {
		t.Fatalf("missing expected accept key: %q", out)
	}

	idx := bytes.Index(out, []byte("\r\n\r\n"))
	if idx < 0 {
		t.Fatal("missing blank line terminating the HTTP response")
	}
	frame := out[idx+4:]

	if frame[0] != 0x82 {
		t.Errorf("frame byte0 = %#x, want 0x82", frame[0])
	}
	if int(frame[1]) != len(frame)-2 {
		t.Errorf("frame byte1 = %d, want %d", frame[1], len(frame)-2)
	}
	payload := frame[2:]
	if message.Outbound(payload[0]) != message.Configuration {
		t.Errorf("message type = %v, want Configuration", message.Outbound(payload[0]))
	}
	if payload[len(payload)-1] != message.ProtocolVersion {
		t.Errorf("version byte = %d, want %d", payload[len(payload)-1], message.ProtocolVersion)
	}
}

// Scenario 2: set and hit a breakpoint.
func TestSetAndHitBreakpoint(t *testing.T) {
	pipe, sess, eng := newSession(t)
	pipe.ClientRead() // drain the Configuration message

	bc := eng.RegisterFunction([]uint32{0})

	body := make([]byte, 1+2+4)
	body[0] = 1 // set
	binary.NativeEndian.PutUint16(body[1:3], uint16(bc))
	binary.NativeEndian.PutUint32(body[3:7], 0)
	pipe.ClientWrite(clientFrame(message.UpdateBreakpoint, body))
	sess.Poll()

	pipe.ClientWrite(clientFrame(message.Continue, nil))
	sess.Safepoint(bc, 0, eng.CurrentFrame())

	if !sess.IsConnected() {
		t.Fatal("session disconnected after CONTINUE")
	}

	frames := serverFrames(t, pipe.ClientRead())
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1 BREAKPOINT_HIT", len(frames))
	}
	if message.Outbound(frames[0][0]) != message.BreakpointHit {
		t.Errorf("message type = %v, want BreakpointHit", message.Outbound(frames[0][0]))
	}
	gotCP := message.DecodeCP(frames[0][1:3], 2, binary.NativeEndian)
	if gotCP != bc {
		t.Errorf("breakpoint cp = %d, want %d", gotCP, bc)
	}
}

// Scenario 3: NEXT suppresses a breakpoint while the active frame is
// deeper than the frame the step was issued from, and fires again once
// back at that depth.
func TestStepOverSuppressesNestedHit(t *testing.T) {
	pipe, sess, eng := newSession(t)
	pipe.ClientRead()

	bc := eng.RegisterFunction([]uint32{0, 1, 2})
	frame0 := eng.CurrentFrame()

	// Init leaves vm_stop set, so the very first safepoint pauses
	// unconditionally; stage NEXT so it resumes into step-over mode.
	pipe.ClientWrite(clientFrame(message.Next, nil))
	sess.Safepoint(bc, 0, frame0)
	pipe.ClientRead() // drain the BREAKPOINT_HIT from entering the pause

	child := eng.PushFrame()
	sess.Safepoint(bc, 1, child)
	if out := pipe.ClientRead(); len(out) != 0 {
		t.Errorf("nested safepoint emitted a frame, want none: %v", out)
	}
	eng.PopFrame()

	pipe.ClientWrite(clientFrame(message.Continue, nil))
	sess.Safepoint(bc, 2, frame0)

	frames := serverFrames(t, pipe.ClientRead())
	if len(frames) != 1 || message.Outbound(frames[0][0]) != message.BreakpointHit {
		t.Fatalf("expected one BREAKPOINT_HIT back at the original depth, got %v", frames)
	}
}

// Scenario 4: eval round-trip in breakpoint mode.
func TestEvalRoundTrip(t *testing.T) {
	pipe, sess, eng := newSession(t)
	pipe.ClientRead()

	bc := eng.RegisterFunction([]uint32{0})
	eng.SetVar("x", "6")

	expr := []byte("x")
	body := make([]byte, 4+1+len(expr))
	binary.NativeEndian.PutUint32(body[0:4], uint32(len(expr)))
	body[4] = byte(message.EvalOKRequest)
	copy(body[5:], expr)

	pipe.ClientWrite(clientFrame(message.Eval, body))
	pipe.ClientWrite(clientFrame(message.Continue, nil))

	sess.Safepoint(bc, 0, eng.CurrentFrame())

	frames := serverFrames(t, pipe.ClientRead())
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want BREAKPOINT_HIT + EVAL_RESULT_END", len(frames))
	}
	if message.Outbound(frames[0][0]) != message.BreakpointHit {
		t.Errorf("frame 0 type = %v, want BreakpointHit", message.Outbound(frames[0][0]))
	}
	if message.Outbound(frames[1][0]) != message.EvalResultEnd {
		t.Errorf("frame 1 type = %v, want EvalResultEnd", message.Outbound(frames[1][0]))
	}
	if got := string(frames[1][1:]); got != "6" {
		t.Errorf("eval result = %q, want %q", got, "6")
	}
}

// Scenario 5: client source injection.
func TestClientSourceInjection(t *testing.T) {
	pipe, sess, _ := newSession(t)
	pipe.ClientRead()

	name := "main.js"
	source := []byte("print('hi')")

	body := make([]byte, 4+4+len(name)+len(source))
	binary.NativeEndian.PutUint32(body[0:4], uint32(len(source)))
	binary.NativeEndian.PutUint32(body[4:8], uint32(len(name)))
	copy(body[8:], name)
	copy(body[8+len(name):], source)
	pipe.ClientWrite(clientFrame(message.ClientSource, body))

	var gotName string
	var gotSource []byte
	status := sess.WaitForClientSource(func(n string, s []byte) {
		gotName = n
		gotSource = s
	})

	if status != debugger.SourceReceived {
		t.Fatalf("WaitForClientSource() = %v, want SourceReceived", status)
	}
	if gotName != name {
		t.Errorf("name = %q, want %q", gotName, name)
	}
	if string(gotSource) != string(source) {
		t.Errorf("source = %q, want %q", gotSource, source)
	}
}

// Scenario 6: a text-frame opcode closes the session.
func TestMalformedFrameClosesSession(t *testing.T) {
	pipe, sess, _ := newSession(t)
	pipe.ClientRead()

	pipe.ClientWrite(rawOpcodeFrame(0x01, []byte("hi")))
	sess.Poll()

	if sess.IsConnected() {
		t.Fatal("IsConnected() = true after a text-opcode frame, want false")
	}
}

// Invariant 6: RELEASE_BYTE_CODE_CP / FREE_BYTE_CODE_CP two-phase handshake.
func TestDeferredFreeHandshake(t *testing.T) {
	pipe, sess, eng := newSession(t)
	pipe.ClientRead()

	bc := eng.RegisterFunction([]uint32{0})

	if err := sess.EnqueueRelease(bc); err != nil {
		t.Fatalf("EnqueueRelease() error = %v", err)
	}
	frames := serverFrames(t, pipe.ClientRead())
	if len(frames) != 1 || message.Outbound(frames[0][0]) != message.ReleaseByteCodeCP {
		t.Fatalf("expected one RELEASE_BYTE_CODE_CP, got %v", frames)
	}

	cpBody := make([]byte, 2)
	binary.NativeEndian.PutUint16(cpBody, uint16(bc))
	pipe.ClientWrite(clientFrame(message.FreeByteCodeCP, cpBody))
	sess.Poll()
	if !sess.IsConnected() {
		t.Fatal("session disconnected after a matching FREE_BYTE_CODE_CP")
	}

	// The pointer was already dequeued; a second FREE_BYTE_CODE_CP for it
	// (or any pointer, with the queue now empty) is a protocol error.
	pipe.ClientWrite(clientFrame(message.FreeByteCodeCP, cpBody))
	sess.Poll()
	if sess.IsConnected() {
		t.Fatal("session still connected after an unqueued FREE_BYTE_CODE_CP")
	}
}

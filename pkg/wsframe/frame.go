// Package wsframe implements the stripped-down variant of "The WebSocket
// Protocol" (RFC 6455) that the debugger uses to carry binary messages
// over a single TCP connection: a 2-byte header, an optional 4-byte
// client-side mask, and a single-byte payload length capped at 125 bytes.
// There is no support for continuation frames, extended lengths, text
// frames, or server-to-client masking — see spec.md §1 Non-goals.
package wsframe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jerryscript-project/jerry-debugger-go/internal/logger"
)

// Opcode identifies the interpretation of a frame's payload, as defined in
// https://datatracker.ietf.org/doc/html/rfc6455#section-5.2. Only a subset
// is meaningful to this dialect.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

// String returns the opcode's name, or its numeric value if unrecognized.
func (o Opcode) String() string {
	switch o {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return "unknown"
	}
}

// Frame header bit layout, first byte.
const (
	finBit       = 0x80
	reservedBits = 0x70
	opcodeBits   = 0x0f
)

// Frame header bit layout, second byte.
const (
	maskBit   = 0x80
	lengthBit = 0x7f
)

// MaxPayload is the largest payload this dialect ever carries in one
// frame: the WebSocket one-byte length field tops out at 125, and
// spec.md §4.2 never negotiates the 16/64-bit extended-length forms.
const MaxPayload = 125

var (
	// ErrShort means the buffer does not yet hold a complete frame; the
	// caller should poll for more bytes and retry. This is not a protocol
	// error — it is the normal "not enough data yet" condition.
	ErrShort = errors.New("wsframe: incomplete frame")

	// ErrNoFin is returned for a header with the FIN bit clear or a
	// reserved bit set — this dialect never fragments at the WebSocket
	// layer (fragmentation happens one level up, in pkg/message).
	ErrNoFin = errors.New("wsframe: FIN bit clear or reserved bit set")

	// ErrNoMask means a client-to-server frame arrived without the
	// mandatory mask bit set (RFC 6455 §5.1).
	ErrNoMask = errors.New("wsframe: client frame missing mask bit")

	// ErrTooLarge means the declared payload length exceeds the session's
	// configured max_recv_payload.
	ErrTooLarge = errors.New("wsframe: payload exceeds configured maximum")

	// ErrOpcode means the frame's opcode is not BINARY, CLOSE, PING, or
	// PONG — this dialect has no use for TEXT or continuation frames.
	ErrOpcode = errors.New("wsframe: unsupported opcode")
)

// HeaderSize is the number of header bytes an egress (server-to-client)
// frame always spends: 2-byte header, no mask.
const HeaderSize = 2

// RecvHeaderSize is the number of header bytes an ingress (client-to-server)
// frame always spends: 2-byte header plus the mandatory 4-byte mask.
const RecvHeaderSize = 2 + 4

// Encode writes a FIN|BINARY frame carrying payload into dst and returns
// the number of bytes written. The caller must ensure len(payload) <=
// MaxPayload and dst is at least HeaderSize+len(payload) bytes.
func Encode(dst []byte, payload []byte) int {
	dst[0] = finBit | byte(OpcodeBinary)
	dst[1] = byte(len(payload))
	n := copy(dst[2:], payload)
	return 2 + n
}

// Header describes a decoded ingress frame.
type Header struct {
	Opcode Opcode
	Length int
	mask   [4]byte
}

// Decode parses one ingress frame from the front of buf. maxPayload is the
// session's configured max_recv_payload (spec.md §3). On success it
// returns the header, the unmasked payload (a slice into buf, masked
// in-place), and the total number of bytes the frame occupied in buf.
//
// ErrShort signals "not enough data yet, read more and retry" — it is not
// a protocol violation and is not logged. Every other error is a protocol
// error (spec.md §7, category 2): it is logged at codec level via the
// [log/slog] logger stashed in ctx, and the session must close the
// connection.
func Decode(ctx context.Context, buf []byte, maxPayload int) (Header, []byte, int, error) {
	var h Header

	if len(buf) < 2 {
		return h, nil, 0, ErrShort
	}

	b0, b1 := buf[0], buf[1]

	if b0&finBit == 0 || b0&reservedBits != 0 {
		logger.FromContext(ctx).Warn("rejecting frame", slog.Any("error", ErrNoFin), slog.Int("byte0", int(b0)))
		return h, nil, 0, ErrNoFin
	}
	h.Opcode = Opcode(b0 & opcodeBits)

	if b1&maskBit == 0 {
		logger.FromContext(ctx).Warn("rejecting frame", slog.Any("error", ErrNoMask))
		return h, nil, 0, ErrNoMask
	}
	length := int(b1 & lengthBit)
	if length > MaxPayload || length > maxPayload {
		logger.FromContext(ctx).Warn("rejecting frame", slog.Any("error", ErrTooLarge), slog.Int("length", length))
		return h, nil, 0, ErrTooLarge
	}
	h.Length = length

	switch h.Opcode {
	case OpcodeBinary, OpcodeClose, OpcodePing, OpcodePong:
	default:
		logger.FromContext(ctx).Warn("rejecting frame", slog.Any("error", ErrOpcode), slog.String("opcode", h.Opcode.String()))
		return h, nil, 0, ErrOpcode
	}

	total := RecvHeaderSize + length
	if len(buf) < total {
		return h, nil, 0, ErrShort
	}

	copy(h.mask[:], buf[2:6])
	payload := buf[6:total]
	unmask(payload, h.mask)

	return h, payload, total, nil
}

// unmask applies the RFC 6455 §5.3 cyclic XOR mask to p in place.
func unmask(p []byte, key [4]byte) {
	for i := range p {
		p[i] ^= key[i%4]
	}
}

package message

import "encoding/binary"

// FrameSender pushes one complete message payload (type byte + body) out
// as a single wsframe. It is implemented by the debugger session, which
// owns the send buffer and the transport.
type FrameSender interface {
	SendFrame(payload []byte) error
}

// Writer implements spec.md §4.4's outbound primitives on top of a
// FrameSender and the session's configured max_send_payload.
type Writer struct {
	send    FrameSender
	maxBody int // max_send_payload - 1, room left after the type byte
	native  binary.ByteOrder
}

// NewWriter returns a Writer bounded by maxSendPayload (the frame's usable
// payload capacity, before subtracting the message type byte) and using
// byteOrder for multi-byte numeric fields (spec.md §3: "native byte
// order").
func NewWriter(send FrameSender, maxSendPayload int, byteOrder binary.ByteOrder) *Writer {
	return &Writer{send: send, maxBody: maxSendPayload - 1, native: byteOrder}
}

// SendType sends a zero-body control message.
func (w *Writer) SendType(t Outbound) error {
	return w.send.SendFrame([]byte{byte(t)})
}

// SendData sends a message that fits in a single frame. len(body) must be
// <= maxSendPayload-1; callers that might exceed it should use SendString.
func (w *Writer) SendData(t Outbound, body []byte) error {
	buf := make([]byte, 1+len(body))
	buf[0] = byte(t)
	copy(buf[1:], body)
	return w.send.SendFrame(buf)
}

// SendFunctionCP sends a message whose body is only a compressed pointer,
// encoded at the configured cpointer size.
func (w *Writer) SendFunctionCP(t Outbound, cp CompressedPointer, cpSize int) error {
	return w.SendData(t, encodeCP(cp, cpSize, w.native))
}

// SendParseFunction sends PARSE_FUNCTION's body: two native-order 32-bit
// integers, line and column.
func (w *Writer) SendParseFunction(line, col uint32) error {
	body := make([]byte, 8)
	w.native.PutUint32(body[0:4], line)
	w.native.PutUint32(body[4:8], col)
	return w.SendData(ParseFunction, body)
}

// SendString splits data into chunks of at most maxBody bytes, sending all
// but the last with contType and the final (possibly empty) chunk with
// endType. Every fragmented stream this package emits ends with its _END
// variant before the next unrelated message is sent (spec.md §3 invariant,
// §8 property 4) — callers must not interleave another SendX call mid-
// stream.
func (w *Writer) SendString(contType, endType Outbound, data []byte) error {
	for len(data) > w.maxBody {
		chunk := data[:w.maxBody]
		data = data[w.maxBody:]
		if err := w.SendData(contType, chunk); err != nil {
			return err
		}
	}
	return w.SendData(endType, data)
}

// encodeCP encodes a compressed pointer at the advertised size (2 or 4
// bytes), in the given byte order.
func encodeCP(cp CompressedPointer, size int, order binary.ByteOrder) []byte {
	buf := make([]byte, size)
	switch size {
	case 2:
		order.PutUint16(buf, uint16(cp))
	default:
		order.PutUint32(buf, uint32(cp))
	}
	return buf
}

// DecodeCP decodes a compressed pointer from the front of buf at the
// advertised size.
func DecodeCP(buf []byte, size int, order binary.ByteOrder) CompressedPointer {
	switch size {
	case 2:
		return CompressedPointer(order.Uint16(buf))
	default:
		return CompressedPointer(order.Uint32(buf))
	}
}

// CompressedPointer is a stable identifier the engine uses to refer to a
// compiled bytecode unit. Its wire width (2 or 4 bytes) is advertised in
// the Configuration message; the debugger core never interprets it beyond
// equality and transport, per spec.md's glossary.
type CompressedPointer uint32

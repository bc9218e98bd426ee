package wsframe

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // mandated by RFC 6455, not used for anything security-sensitive
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/jerryscript-project/jerry-debugger-go/internal/logger"
)

// requestPathPrefix is the only HTTP request line this dialect accepts,
// per spec.md §4.3. Anything else is a handshake error.
const requestPathPrefix = "GET /jerry-debugger"

// maxHandshakeBuffer bounds how much of the incoming HTTP request this
// package will buffer while looking for the terminating blank line.
const maxHandshakeBuffer = 1024

// keyHeaderName is the header this dialect looks for: "Sec-WebSocket-Key:",
// recognized only when preceded by "\r\n" (spec.md §4.3).
const keyHeaderName = "Sec-WebSocket-Key:"

// acceptGUID is the magic value from RFC 6455 §1.3.
const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var (
	// ErrIncomplete means the terminating "\r\n\r\n" has not arrived yet;
	// the caller should read more bytes and retry.
	ErrIncomplete = errors.New("wsframe: incomplete handshake request")

	// ErrOverflow means the request exceeded maxHandshakeBuffer before a
	// blank line was found.
	ErrOverflow = errors.New("wsframe: handshake request too large")

	// ErrBadRequest means the request line or Sec-WebSocket-Key header
	// was missing or malformed.
	ErrBadRequest = errors.New("wsframe: malformed handshake request")
)

// ParseHandshake scans buf for a complete HTTP upgrade request terminated
// by "\r\n\r\n". It returns the challenge key on success. ErrIncomplete
// means "not yet, read more" and is not logged; every other error is
// terminal (spec.md §7, category 3: handshake error) and is logged at
// codec level via the [log/slog] logger stashed in ctx.
func ParseHandshake(ctx context.Context, buf []byte) (key string, total int, err error) {
	if len(buf) > maxHandshakeBuffer {
		buf = buf[:maxHandshakeBuffer]
	}

	end := bytes.Index(buf, []byte("\r\n\r\n"))
	if end < 0 {
		if len(buf) >= maxHandshakeBuffer {
			logger.FromContext(ctx).Warn("rejecting handshake", slog.Any("error", ErrOverflow))
			return "", 0, ErrOverflow
		}
		return "", 0, ErrIncomplete
	}
	total = end + 4
	request := buf[:end]

	if !bytes.HasPrefix(request, []byte(requestPathPrefix)) {
		logger.FromContext(ctx).Warn("rejecting handshake", slog.Any("error", ErrBadRequest), slog.String("reason", "missing request path prefix"))
		return "", 0, ErrBadRequest
	}

	key, ok := findHeaderValue(request, keyHeaderName)
	if !ok || key == "" {
		logger.FromContext(ctx).Warn("rejecting handshake", slog.Any("error", ErrBadRequest), slog.String("reason", "missing Sec-WebSocket-Key"))
		return "", 0, ErrBadRequest
	}

	return key, total, nil
}

// findHeaderValue scans request line-by-line for a header whose name
// matches name, recognized only when the line is preceded by "\r\n" (i.e.
// it is its own header line, not a substring of the request line or
// another header's value). Leading spaces after the colon are stripped;
// the value ends at the first whitespace.
func findHeaderValue(request []byte, name string) (string, bool) {
	lines := bytes.Split(request, []byte("\r\n"))
	for _, line := range lines {
		if !bytes.HasPrefix(line, []byte(name)) {
			continue
		}
		rest := line[len(name):]
		rest = bytes.TrimLeft(rest, " ")
		end := bytes.IndexAny(rest, " \t")
		if end >= 0 {
			rest = rest[:end]
		}
		return string(rest), true
	}
	return "", false
}

// AcceptKey computes the RFC 6455 Sec-WebSocket-Accept value for the given
// challenge key: base64 of the 20-byte SHA-1 digest of key||GUID, with one
// zero pad byte appended before encoding (21 bytes -> 28 base64 chars) and
// the final character forced to '='. This matches spec.md §4.3's
// description of the reference implementation's buffer trick, and
// produces byte-identical output to the textbook 20-byte encoding because
// base64 of a 21-byte input whose last byte is always padded out is
// identical to the 20-byte encoding with its trailing '=' restored.
func AcceptKey(challenge string) string {
	h := sha1.New() //nolint:gosec
	h.Write([]byte(challenge))
	h.Write([]byte(acceptGUID))

	var padded [21]byte
	h.Sum(padded[:0])

	var out [28]byte
	base64.StdEncoding.Encode(out[:], padded[:])
	out[27] = '='

	return string(out[:])
}

// UpgradeResponse builds the literal 101 Switching Protocols response for
// the given accept key, per spec.md §4.3.
func UpgradeResponse(acceptKey string) []byte {
	var b bytes.Buffer
	b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Sec-WebSocket-Accept: ")
	b.WriteString(acceptKey)
	b.WriteString("\r\n\r\n")
	return b.Bytes()
}

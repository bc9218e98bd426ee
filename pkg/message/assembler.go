package message

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jerryscript-project/jerry-debugger-go/internal/logger"
)

// ErrTransferTooLarge is returned when a first-message's declared total
// size exceeds the configured limit — spec.md §9's "enforce an upper
// limit to prevent client-driven exhaustion" design note.
var ErrTransferTooLarge = errors.New("message: inbound transfer exceeds configured limit")

// ErrTransferInProgress is returned when a second "first" message arrives
// before the previous transfer completed — spec.md §4.4: "A second first-
// type before the prior transfer completes is a protocol error."
var ErrTransferInProgress = errors.New("message: first-message received mid-transfer")

// ErrNoTransfer is returned when a "part" message arrives with no transfer
// in progress.
var ErrNoTransfer = errors.New("message: part message with no transfer in progress")

// Assembler reassembles a fragmented inbound transfer (eval expressions,
// throw payloads, client source) into one contiguous buffer, enforcing
// spec.md §4.4's single-in-flight-transfer rule and §9's size cap.
type Assembler struct {
	maxSize int

	active bool
	buf    []byte
	offset int
}

// NewAssembler returns an Assembler that rejects any transfer whose
// declared total size exceeds maxSize.
func NewAssembler(maxSize int) *Assembler {
	return &Assembler{maxSize: maxSize}
}

// Begin starts a new transfer of the declared total size, pre-loaded with
// the first chunk. It fails if a transfer is already active or the
// declared size is too large; either failure is logged at codec level via
// the [log/slog] logger stashed in ctx (spec.md §7, categories 2 and 4).
func (a *Assembler) Begin(ctx context.Context, total int, first []byte) error {
	if a.active {
		logger.FromContext(ctx).Warn("rejecting transfer", slog.Any("error", ErrTransferInProgress))
		return ErrTransferInProgress
	}
	if total < 0 || total > a.maxSize {
		logger.FromContext(ctx).Warn("rejecting transfer", slog.Any("error", ErrTransferTooLarge), slog.Int("declared_total", total))
		return ErrTransferTooLarge
	}

	a.buf = make([]byte, 0, total)
	a.active = true
	a.offset = 0
	return a.append(ctx, first)
}

// Append continues an in-progress transfer with the next chunk.
func (a *Assembler) Append(ctx context.Context, chunk []byte) error {
	if !a.active {
		logger.FromContext(ctx).Warn("rejecting transfer", slog.Any("error", ErrNoTransfer))
		return ErrNoTransfer
	}
	return a.append(ctx, chunk)
}

func (a *Assembler) append(ctx context.Context, chunk []byte) error {
	if a.offset+len(chunk) > cap(a.buf) {
		a.active = false
		logger.FromContext(ctx).Warn("rejecting transfer", slog.Any("error", ErrTransferTooLarge), slog.Int("offset", a.offset))
		return ErrTransferTooLarge
	}
	a.buf = append(a.buf, chunk...)
	a.offset += len(chunk)
	return nil
}

// Done reports whether the declared total has been received.
func (a *Assembler) Done() bool {
	return a.active && a.offset >= cap(a.buf)
}

// Bytes returns the reassembled transfer and resets the Assembler for the
// next one. Call only after Done reports true.
func (a *Assembler) Bytes() []byte {
	b := a.buf
	a.active = false
	a.buf = nil
	a.offset = 0
	return b
}

// Active reports whether a transfer is currently in progress.
func (a *Assembler) Active() bool {
	return a.active
}

// Abort cancels any in-progress transfer, e.g. on disconnect.
func (a *Assembler) Abort() {
	a.active = false
	a.buf = nil
	a.offset = 0
}

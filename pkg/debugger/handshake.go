package debugger

import (
	"fmt"
	"time"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/wsframe"
)

// handshake reads the client's HTTP upgrade request and replies with the
// 101 Switching Protocols response, per spec.md §4.3. Unlike Poll it
// blocks (retrying on would-block) since a session has nothing useful to
// do before a client attaches.
func (s *Session) handshake() error {
	buf := make([]byte, 0, 1024)
	read := make([]byte, 256)

	for {
		n, err := s.transport.Receive(read, cap(read))
		if err != nil {
			return fmt.Errorf("debugger: handshake read failed: %w", err)
		}
		if n == 0 {
			time.Sleep(s.pollInterval)
			continue
		}
		if len(buf)+n > cap(buf) {
			return wsframe.ErrOverflow
		}
		buf = append(buf, read[:n]...)

		key, total, err := wsframe.ParseHandshake(s.ctx, buf)
		if err == wsframe.ErrIncomplete {
			continue
		}
		if err != nil {
			return err
		}

		accept := wsframe.AcceptKey(key)
		if err := s.transport.Send(wsframe.UpgradeResponse(accept)); err != nil {
			return err
		}

		// Any bytes past the blank line ending the request belong to the
		// first wsframe.
		leftover := buf[total:]
		if len(leftover) > len(s.recvBuf) {
			return wsframe.ErrOverflow
		}
		s.recvOffset = copy(s.recvBuf, leftover)
		return nil
	}
}

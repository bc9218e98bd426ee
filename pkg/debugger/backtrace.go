package debugger

import "github.com/jerryscript-project/jerry-debugger-go/pkg/message"

// handleGetBacktrace answers GET_BACKTRACE's 4-byte native max-depth
// argument (0 = unlimited) by packing each frame's (compressed pointer,
// offset) pair and streaming it as BACKTRACE/BACKTRACE_END fragments.
func (s *Session) handleGetBacktrace(body []byte) error {
	if len(body) != 4 {
		return errMalformed
	}
	maxDepth := s.byteOrder.Uint32(body)

	frames := s.engine.Backtrace(maxDepth)
	entrySize := s.cpSize + 4
	buf := make([]byte, 0, len(frames)*entrySize)
	for _, f := range frames {
		buf = append(buf, s.encodeCPOffset(f.ByteCode, f.Offset)...)
	}
	return s.writer.SendString(message.Backtrace, message.BacktraceEnd, buf)
}

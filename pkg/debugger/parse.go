package debugger

import (
	"encoding/binary"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
)

// ParsedFunction describes one function the parser just finished
// compiling, as reported to NotifyParse.
type ParsedFunction struct {
	Source            []byte
	SourceName        string
	FunctionName      string
	Line, Column      uint32
	BreakpointLines   []uint32
	BreakpointOffsets []uint32
	ByteCode          message.CompressedPointer
}

// NotifyParse is called by the engine's parser once it finishes
// compiling a function, per spec.md §4.5's parse notification stream. It
// streams the source text, source name, and function name (each
// fragmented with its own _END), then PARSE_FUNCTION, the breakpoint
// line/offset lists, and the function's compressed pointer. If the
// client has enabled PARSER_WAIT, the session then pauses in
// parser-wait mode until PARSER_RESUME arrives.
func (s *Session) NotifyParse(fn ParsedFunction) error {
	if !s.connected {
		return nil
	}

	if err := s.writer.SendString(message.SourceCode, message.SourceCodeEnd, fn.Source); err != nil {
		return err
	}
	if err := s.writer.SendString(message.SourceCodeName, message.SourceCodeNameEnd, []byte(fn.SourceName)); err != nil {
		return err
	}
	if err := s.writer.SendString(message.FunctionName, message.FunctionNameEnd, []byte(fn.FunctionName)); err != nil {
		return err
	}
	if err := s.writer.SendParseFunction(fn.Line, fn.Column); err != nil {
		return err
	}
	if err := s.writer.SendData(message.BreakpointList, encodeUint32List(fn.BreakpointLines, s.byteOrder)); err != nil {
		return err
	}
	if err := s.writer.SendData(message.BreakpointOffsetList, encodeUint32List(fn.BreakpointOffsets, s.byteOrder)); err != nil {
		return err
	}
	if err := s.writer.SendFunctionCP(message.ByteCodeCP, fn.ByteCode, s.cpSize); err != nil {
		return err
	}

	if !s.parserWaitEnabled {
		return nil
	}

	if err := s.writer.SendType(message.WaitingAfterParse); err != nil {
		return err
	}
	s.mode = ModeParserWait
	s.parserWaitActive = true
	s.PollBlocking(func() bool { return !s.parserWaitActive })
	if s.connected {
		s.mode = ModeRun
	}
	return nil
}

func encodeUint32List(values []uint32, order binary.ByteOrder) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		order.PutUint32(buf[i*4:], v)
	}
	return buf
}

package debugger

import "github.com/jerryscript-project/jerry-debugger-go/pkg/message"

// WaitForClientSource is the engine-facing operation that parks the
// session in client-source-wait mode until the client supplies a source
// to run, declares it has no more sources, asks for a context reset, or
// the connection drops (spec.md §6). callback is invoked with the
// reassembled resource name and source text only on SourceReceived.
func (s *Session) WaitForClientSource(callback func(name string, source []byte)) SourceStatus {
	if !s.connected {
		return SourceFailed
	}

	s.mode = ModeClientSource
	s.sourceResult = SourcePending
	s.sourceCallback = callback
	s.sourceAssembler.Abort()
	s.sourceName = ""

	if err := s.writer.SendType(message.WaitForSource); err != nil {
		return SourceFailed
	}

	s.PollBlocking(func() bool { return s.sourceResult != SourcePending })

	if !s.connected && s.sourceResult == SourcePending {
		return SourceFailed
	}
	return s.sourceResult
}

// handleClientSource parses CLIENT_SOURCE's body: a 4-byte native total
// source length, a 4-byte native name length, the name, and the first
// chunk of source bytes.
func (s *Session) handleClientSource(body []byte) error {
	if len(body) < 8 {
		return errMalformed
	}
	total := int(s.byteOrder.Uint32(body[0:4]))
	nameLen := int(s.byteOrder.Uint32(body[4:8]))
	if len(body) < 8+nameLen {
		return errMalformed
	}
	s.sourceName = string(body[8 : 8+nameLen])
	head := body[8+nameLen:]

	if err := s.sourceAssembler.Begin(s.ctx, total, head); err != nil {
		return err
	}
	s.checkSourceDone()
	return nil
}

func (s *Session) handleClientSourcePart(body []byte) error {
	if err := s.sourceAssembler.Append(s.ctx, body); err != nil {
		return err
	}
	s.checkSourceDone()
	return nil
}

func (s *Session) checkSourceDone() {
	if !s.sourceAssembler.Done() {
		return
	}
	source := s.sourceAssembler.Bytes()
	name := s.sourceName
	s.sourceResult = SourceReceived
	s.mode = ModeRun
	if s.sourceCallback != nil {
		s.sourceCallback(name, source)
	}
}

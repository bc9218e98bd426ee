package debugger

import (
	"github.com/jerryscript-project/jerry-debugger-go/pkg/engine"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
)

// handleEval handles EVAL's first message: a 4-byte native total length,
// a 1-byte EvalSubtype (plain evaluate vs. evaluate-then-throw), and the
// first chunk of the expression text.
func (s *Session) handleEval(body []byte, a *message.Assembler) error {
	if len(body) < 5 {
		return errMalformed
	}
	total := int(s.byteOrder.Uint32(body[0:4]))
	subtype := message.EvalSubtype(body[4])
	head := body[5:]

	first := make([]byte, 0, 1+len(head))
	first = append(first, byte(subtype))
	first = append(first, head...)
	if err := a.Begin(s.ctx, total+1, first); err != nil {
		return err
	}
	return s.checkEvalDone(a)
}

// handleThrow handles THROW's first message: a 4-byte native total
// length followed by the first chunk of the exception value's text, with
// no subtype byte (THROW has only one meaning: inject this value as a
// thrown exception).
func (s *Session) handleThrow(body []byte, a *message.Assembler) error {
	if len(body) < 4 {
		return errMalformed
	}
	total := int(s.byteOrder.Uint32(body[0:4]))
	if err := a.Begin(s.ctx, total, body[4:]); err != nil {
		return err
	}
	return s.checkThrowDone(a)
}

// handleEvalPart and handleThrowPart both take a raw continuation chunk:
// EVAL_PART and THROW_PART share the same body shape and differ only in
// which completion check runs once the chunk is appended.
func (s *Session) handleEvalPart(body []byte, a *message.Assembler) error {
	if err := a.Append(s.ctx, body); err != nil {
		return err
	}
	return s.checkEvalDone(a)
}

func (s *Session) handleThrowPart(body []byte, a *message.Assembler) error {
	if err := a.Append(s.ctx, body); err != nil {
		return err
	}
	return s.checkThrowDone(a)
}

func (s *Session) checkEvalDone(a *message.Assembler) error {
	if !a.Done() {
		return nil
	}
	full := a.Bytes()
	subtype := message.EvalSubtype(full[0])
	return s.completeEval(string(full[1:]), subtype)
}

func (s *Session) checkThrowDone(a *message.Assembler) error {
	if !a.Done() {
		return nil
	}
	return s.completeThrow(string(a.Bytes()))
}

func (s *Session) completeEval(expr string, subtype message.EvalSubtype) error {
	mode := engine.EvalOnly
	if subtype == message.EvalThrowRequest {
		mode = engine.EvalAndThrow
	}

	s.evalCount++
	result, evalErr := s.engine.Evaluate(expr, mode)
	if evalErr != nil {
		return s.writer.SendString(message.EvalResult, message.EvalError, []byte(evalErr.Error()))
	}
	return s.writer.SendString(message.EvalResult, message.EvalResultEnd, []byte(result))
}

// completeThrow injects a client-requested exception at the currently
// paused frame. It does not itself produce a reply — the injected
// exception surfaces through the normal exception-hit path once execution
// resumes.
func (s *Session) completeThrow(value string) error {
	s.throwPending = true
	return s.engine.Throw(value)
}

package main

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jerryscript-project/jerry-debugger-go/pkg/debugger"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/message"
	"github.com/jerryscript-project/jerry-debugger-go/pkg/refengine"
)

// instruction is one line of the toy scripting language runDemoScript
// interprets: refengine has no parser of its own (spec.md §1 explicitly
// keeps the parser out of the debugger core's scope), so this is the
// stand-in a real embedding's own interpreter would otherwise provide.
//
//	var NAME VALUE   — binds NAME to VALUE in the current frame
//	print TEXT       — forwards TEXT to the client as program output
//	call             — pushes a nested call frame
//	return           — pops the current call frame
type instruction struct {
	op   string
	args []string
}

// runDemoScript waits for the client to inject a script (spec.md §4.5's
// client source loop), compiles it into one refengine function, and
// single-steps through it via sess.Safepoint, forwarding SendOutput and
// exceptions queued by a THROW/THROW_PART command. It loops until the
// client sends NO_MORE_SOURCES or disconnects; after a CONTEXT_RESET it
// waits for the next injected source.
func runDemoScript(ctx context.Context, sess *debugger.Session, eng *refengine.Engine) error {
	for sess.IsConnected() {
		var program []instruction
		var bc message.CompressedPointer

		status := sess.WaitForClientSource(func(name string, source []byte) {
			program = parseScript(source)
			offsets := make([]uint32, len(program))
			for i := range program {
				offsets[i] = uint32(i)
			}
			bc = eng.RegisterFunction(offsets)

			_ = sess.NotifyParse(debugger.ParsedFunction{
				Source:            source,
				SourceName:        name,
				FunctionName:      "main",
				Line:              1,
				Column:            1,
				BreakpointLines:   offsets,
				BreakpointOffsets: offsets,
				ByteCode:          bc,
			})
		})

		switch status {
		case debugger.SourceReceived:
			runProgram(sess, eng, bc, program)
		case debugger.SourceEnd:
			log.Info().Msg("client reported no more sources")
			return nil
		case debugger.SourceReset:
			log.Info().Msg("client requested context reset")
			continue
		default:
			return nil
		}
	}
	return ctx.Err()
}

func runProgram(sess *debugger.Session, eng *refengine.Engine, bc message.CompressedPointer, program []instruction) {
	frame := eng.CurrentFrame()

	for offset, instr := range program {
		sess.Safepoint(bc, uint32(offset), frame)
		if !sess.IsConnected() {
			return
		}

		switch instr.op {
		case "var":
			if len(instr.args) == 2 {
				eng.SetVar(instr.args[0], instr.args[1])
			}
		case "print":
			_ = sess.SendOutput([]byte(strings.Join(instr.args, " ")+"\n"), 0)
		case "call":
			frame = eng.PushFrame()
		case "return":
			eng.PopFrame()
			frame = eng.CurrentFrame()
		}

		for _, v := range eng.PendingThrows() {
			sess.NotifyException(bc, uint32(offset), frame, v)
		}
	}
}

// parseScript splits source into whitespace-tokenized instructions, one
// per non-empty line; lines starting with '#' are comments and are
// skipped. Unrecognized ops are kept as no-ops so a malformed
// line never aborts the whole run.
func parseScript(source []byte) []instruction {
	lines := strings.Split(string(source), "\n")
	program := make([]instruction, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		program = append(program, instruction{op: fields[0], args: fields[1:]})
	}
	return program
}

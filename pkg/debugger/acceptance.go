package debugger

import "github.com/jerryscript-project/jerry-debugger-go/pkg/message"

// acceptance is spec.md §4.5's matrix of which inbound message types are
// legal in which primary mode. A message type arriving in a mode it is
// not listed for is a protocol error.
var acceptance = map[message.Inbound][4]bool{
	// mode order: Run, Breakpoint, ParserWait, ClientSource
	message.FreeByteCodeCP:   {true, true, true, true},
	message.UpdateBreakpoint: {true, true, true, true},
	message.ExceptionConfig:  {true, true, true, true},
	message.ParserConfig:     {true, true, true, true},
	message.MemStats:         {true, true, true, true},
	message.Stop:             {true, true, true, true},

	message.ParserResume: {false, false, true, false},

	message.ClientSource:     {false, false, false, true},
	message.ClientSourcePart: {false, false, false, true},
	message.NoMoreSources:    {false, false, false, true},
	message.ContextReset:     {false, false, false, true},

	message.Continue: {false, true, false, false},
	message.Step:     {false, true, false, false},
	message.Next:     {false, true, false, false},
	message.Finish:   {false, true, false, false},

	message.GetBacktrace: {false, true, false, false},

	message.Eval:     {false, true, false, false},
	message.EvalPart: {false, true, false, false},

	message.Throw:     {false, true, false, false},
	message.ThrowPart: {false, true, false, false},
}

func modeIndex(m PrimaryMode) int {
	switch m {
	case ModeRun:
		return 0
	case ModeBreakpoint:
		return 1
	case ModeParserWait:
		return 2
	case ModeClientSource:
		return 3
	default:
		return -1
	}
}

// accepts reports whether t may be processed while in mode m.
func accepts(m PrimaryMode, t message.Inbound) bool {
	row, ok := acceptance[t]
	idx := modeIndex(m)
	if !ok || idx < 0 {
		return false
	}
	return row[idx]
}

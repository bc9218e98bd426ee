// Package message implements the debugger's typed, fragmented message
// protocol that rides inside wsframe's binary frames: every payload is a
// one-byte type followed by a body, and long bodies (source text, function
// names, exception strings, eval input, backtraces) are split across
// successive fragments using distinct continuation and end type codes.
//
// Ingress and egress type codes are independent namespaces, each starting
// at 1, exactly as spec.md §6 specifies.
package message

// Inbound is a client-to-server message type.
type Inbound byte

// Inbound message types, per spec.md §4.5's acceptance matrix.
const (
	FreeByteCodeCP Inbound = iota + 1
	UpdateBreakpoint
	ExceptionConfig
	ParserConfig
	MemStats
	Stop

	ParserResume

	ClientSource
	ClientSourcePart
	NoMoreSources
	ContextReset

	Continue
	Step
	Next
	Finish

	GetBacktrace

	Eval
	EvalPart

	Throw
	ThrowPart
)

// String names an inbound type for logging; unrecognized values report
// their numeric code.
func (t Inbound) String() string {
	switch t {
	case FreeByteCodeCP:
		return "FREE_BYTE_CODE_CP"
	case UpdateBreakpoint:
		return "UPDATE_BREAKPOINT"
	case ExceptionConfig:
		return "EXCEPTION_CONFIG"
	case ParserConfig:
		return "PARSER_CONFIG"
	case MemStats:
		return "MEMSTATS"
	case Stop:
		return "STOP"
	case ParserResume:
		return "PARSER_RESUME"
	case ClientSource:
		return "CLIENT_SOURCE"
	case ClientSourcePart:
		return "CLIENT_SOURCE_PART"
	case NoMoreSources:
		return "NO_MORE_SOURCES"
	case ContextReset:
		return "CONTEXT_RESET"
	case Continue:
		return "CONTINUE"
	case Step:
		return "STEP"
	case Next:
		return "NEXT"
	case Finish:
		return "FINISH"
	case GetBacktrace:
		return "GET_BACKTRACE"
	case Eval:
		return "EVAL"
	case EvalPart:
		return "EVAL_PART"
	case Throw:
		return "THROW"
	case ThrowPart:
		return "THROW_PART"
	default:
		return "UNKNOWN_INBOUND"
	}
}

// Outbound is a server-to-client message type.
type Outbound byte

// Outbound message types, per spec.md §4.3-§4.5.
const (
	Configuration Outbound = iota + 1

	BreakpointHit
	ExceptionHit
	ExceptionStr
	ExceptionStrEnd

	SourceCode
	SourceCodeEnd
	SourceCodeName
	SourceCodeNameEnd
	FunctionName
	FunctionNameEnd
	ParseFunction
	BreakpointList
	BreakpointOffsetList
	ByteCodeCP

	WaitingAfterParse

	WaitForSource
	ReleaseByteCodeCP

	EvalResult
	EvalResultEnd
	EvalError

	Backtrace
	BacktraceEnd

	OutputResult
	OutputResultEnd

	MemStatsReply
)

// String names an outbound type for logging.
func (t Outbound) String() string {
	switch t {
	case Configuration:
		return "CONFIGURATION"
	case BreakpointHit:
		return "BREAKPOINT_HIT"
	case ExceptionHit:
		return "EXCEPTION_HIT"
	case ExceptionStr:
		return "EXCEPTION_STR"
	case ExceptionStrEnd:
		return "EXCEPTION_STR_END"
	case SourceCode:
		return "SOURCE_CODE"
	case SourceCodeEnd:
		return "SOURCE_CODE_END"
	case SourceCodeName:
		return "SOURCE_CODE_NAME"
	case SourceCodeNameEnd:
		return "SOURCE_CODE_NAME_END"
	case FunctionName:
		return "FUNCTION_NAME"
	case FunctionNameEnd:
		return "FUNCTION_NAME_END"
	case ParseFunction:
		return "PARSE_FUNCTION"
	case BreakpointList:
		return "BREAKPOINT_LIST"
	case BreakpointOffsetList:
		return "BREAKPOINT_OFFSET_LIST"
	case ByteCodeCP:
		return "BYTE_CODE_CP"
	case WaitingAfterParse:
		return "WAITING_AFTER_PARSE"
	case WaitForSource:
		return "WAIT_FOR_SOURCE"
	case ReleaseByteCodeCP:
		return "RELEASE_BYTE_CODE_CP"
	case EvalResult:
		return "EVAL_RESULT"
	case EvalResultEnd:
		return "EVAL_RESULT_END"
	case EvalError:
		return "EVAL_ERROR"
	case Backtrace:
		return "BACKTRACE"
	case BacktraceEnd:
		return "BACKTRACE_END"
	case OutputResult:
		return "OUTPUT_RESULT"
	case OutputResultEnd:
		return "OUTPUT_RESULT_END"
	case MemStatsReply:
		return "MEMSTATS"
	default:
		return "UNKNOWN_OUTBOUND"
	}
}

// EvalSubtype distinguishes a plain EVAL request from one whose result
// is also thrown as an exception at the paused frame, per spec.md §4.5.
// The result is streamed back to the client for both subtypes.
type EvalSubtype byte

const (
	EvalOKRequest EvalSubtype = iota + 1
	EvalThrowRequest
)

// ProtocolVersion is advertised in the Configuration message.
const ProtocolVersion = 2

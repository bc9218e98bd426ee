// Package logger provides context-scoped logging helpers for the frame/
// codec layer (pkg/wsframe, pkg/message), which logs through [log/slog].
// The session/HTTP layer (pkg/debugger, cmd/jerrydbg) narrates connection
// lifecycles through [zerolog] instead; this package only covers the
// slog half of that split.
package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

type ctxKey struct{}

var ctxLoggerKey = ctxKey{}

// InContext returns a copy of ctx carrying l, retrievable with FromContext.
func InContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, l)
}

// FromContext returns the logger stashed in ctx by InContext, or
// slog.Default() if none was stashed.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if ctxLogger, ok := ctx.Value(ctxLoggerKey).(*slog.Logger); ok {
		l = ctxLogger
	}
	return l
}

// Fatal logs msg at error level and exits the process. Reserved for
// startup failures (bad flags, an unusable config file, a port that
// won't bind) — never for per-connection errors, which a debugger
// session logs and recovers from by tearing itself down.
func Fatal(ctx context.Context, msg string, attrs ...slog.Attr) {
	fatalErrorCtx(ctx, msg, nil, attrs...)
}

// FatalError is Fatal with an accompanying error, logged outside any
// request context.
func FatalError(msg string, err error, attrs ...slog.Attr) {
	fatalErrorCtx(context.Background(), msg, err, attrs...)
}

func fatalErrorCtx(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // Discard wrapper frames (Callers, fatalErrorCtx, Fatal*).

	r := slog.NewRecord(time.Now(), slog.LevelError, msg, pcs[0])
	if err != nil {
		r.AddAttrs(slog.Any("error", err))
	}
	r.AddAttrs(attrs...)

	_ = slog.Default().Handler().Handle(ctx, r)
	os.Exit(1)
}

package hss

import (
	"context"
	"time"

	"github.com/hssmat/hss/pkg/logging"
)

// ctxKey is an unexported type so context values set by WithLogger never
// collide with keys other packages might put on the same context.
type ctxKey struct{}

var loggerCtxKey = ctxKey{}

// WithLogger attaches l to ctx so Compress, MatVec, and Solve log through it
// instead of the package-level default. Passing the returned context
// to those calls is the only wiring a caller needs to do.
func WithLogger(ctx context.Context, l *logging.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, l)
}

// loggerFrom returns ctx's attached logger, or the application-owned default
// if none was attached.
func loggerFrom(ctx context.Context) *logging.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*logging.Logger); ok && l != nil {
		return l
	}
	return logging.Default()
}

// logCall logs an Info entry, and returns a closure the caller defers to log
// the matching Info/Warn exit with elapsed time, shared by Compress, MatVec,
// and Solve so their entry/exit logging stays identical.
func logCall(ctx context.Context, op string, attrs ...any) func(errp *error) {
	log := loggerFrom(ctx)
	start := time.Now()
	log.Info(op+" start", attrs...)
	return func(errp *error) {
		took := time.Since(start).Milliseconds()
		if errp != nil && *errp != nil {
			log.Warn(op+" failed", append(append([]any{}, attrs...), "error", (*errp).Error(), "took_ms", took)...)
			return
		}
		log.Info(op+" done", append(append([]any{}, attrs...), "took_ms", took)...)
	}
}

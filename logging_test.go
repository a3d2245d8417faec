package hss

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hssmat/hss/pkg/logging"
)

func newTestLogger(exp *logging.BufferedExporter) *logging.Logger {
	return logging.New(logging.Config{Level: logging.LevelInfo, Service: "test", Quiet: true, Exporter: exp})
}

func TestLoggerFrom_FallsBackToDefault(t *testing.T) {
	got := loggerFrom(context.Background())
	require.NotNil(t, got)
}

func TestWithLogger_AttachesAndRoundTrips(t *testing.T) {
	l := newTestLogger(logging.NewBufferedExporter())
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, loggerFrom(ctx))
}

func TestLogCall_LogsStartAndDoneOnSuccess(t *testing.T) {
	exp := logging.NewBufferedExporter()
	ctx := WithLogger(context.Background(), newTestLogger(exp))

	done := logCall(ctx, "hss.Test", "n", 3)
	var err error
	done(&err)

	require.Eventually(t, func() bool { return len(exp.Entries()) == 2 }, time.Second, time.Millisecond)
	entries := exp.Entries()
	assert.Equal(t, "hss.Test start", entries[0].Message)
	assert.Equal(t, "hss.Test done", entries[1].Message)
}

func TestLogCall_LogsWarnOnFailure(t *testing.T) {
	exp := logging.NewBufferedExporter()
	ctx := WithLogger(context.Background(), newTestLogger(exp))

	done := logCall(ctx, "hss.Test")
	failure := errors.New("boom")
	done(&failure)

	require.Eventually(t, func() bool { return len(exp.Entries()) == 2 }, time.Second, time.Millisecond)
	entries := exp.Entries()
	assert.Equal(t, "hss.Test failed", entries[1].Message)
	assert.Equal(t, logging.LevelWarn, entries[1].Level)
	assert.Equal(t, "boom", entries[1].Attrs["error"])
}

func TestLogCall_NilErrPointerLogsDone(t *testing.T) {
	exp := logging.NewBufferedExporter()
	ctx := WithLogger(context.Background(), newTestLogger(exp))

	done := logCall(ctx, "hss.Test")
	done(nil)

	require.Eventually(t, func() bool { return len(exp.Entries()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, "hss.Test done", exp.Entries()[1].Message)
}

// TestCompress_LogsThroughAttachedLogger checks that Compress's entry/exit
// logging actually reaches a caller-attached logger end to end, rather than
// only the package default.
func TestCompress_LogsThroughAttachedLogger(t *testing.T) {
	exp := logging.NewBufferedExporter()
	ctx := WithLogger(context.Background(), newTestLogger(exp))

	n := 8
	a := cauchyMatrix(n)
	rowTree, colTree := squareTrees(t, n, 2)
	_, err := Compress(ctx, a, rowTree, colTree, DefaultConfig())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(exp.Entries()) >= 2 }, time.Second, time.Millisecond)
	entries := exp.Entries()
	assert.Equal(t, "hss.Compress start", entries[0].Message)
	assert.Equal(t, "hss.Compress done", entries[len(entries)-1].Message)
}

package profiler

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndSummary(t *testing.T) {
	p := NewProfiler()
	assert.Equal(t, Stats{}, p.Summary())
	assert.Zero(t, p.Summary().Average())

	p.Record("a", 10*time.Millisecond, 100)
	p.Record("b", 30*time.Millisecond, 50)
	p.Record("c", 20*time.Millisecond, 25)

	s := p.Summary()
	assert.Equal(t, 3, s.Builds)
	assert.Equal(t, 60*time.Millisecond, s.Total)
	assert.Equal(t, 175, s.Bytes)
	assert.Equal(t, "b", s.Slowest)
	assert.Equal(t, 30*time.Millisecond, s.SlowestDuration)
	assert.Equal(t, 20*time.Millisecond, s.Average())
}

func TestTime(t *testing.T) {
	p := NewProfiler()
	require.NoError(t, p.Time("ok", func() (int, error) { return 42, nil }))

	boom := errors.New("boom")
	assert.ErrorIs(t, p.Time("fail", func() (int, error) { return 0, boom }), boom)

	s := p.Summary()
	assert.Equal(t, 1, s.Builds)
	assert.Equal(t, 42, s.Bytes)
	assert.Equal(t, "ok", s.Slowest)
}

func TestTick(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := NewProfiler(WithInterval(time.Hour), WithLogger(logger))
	p.Record("a", time.Millisecond, 1)
	assert.False(t, p.Tick())
	assert.Empty(t, buf.String())

	p = NewProfiler(WithInterval(time.Nanosecond), WithLogger(logger))
	p.Record("lit", time.Millisecond, 1)
	time.Sleep(time.Millisecond)
	require.True(t, p.Tick())
	assert.Contains(t, buf.String(), "shader build stats")
	assert.Contains(t, buf.String(), "builds=1")
	assert.Contains(t, buf.String(), "slowest=lit")

	time.Sleep(time.Millisecond)
	buf.Reset()
	require.True(t, p.Tick())
	assert.Contains(t, buf.String(), "builds=0", "the window resets after a logged tick")
	assert.Equal(t, 1, p.Summary().Builds, "the summary does not reset")
}

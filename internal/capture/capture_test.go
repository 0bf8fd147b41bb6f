package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nic0w/zbars/zbar"
)

// scriptedSource replays a fixed list of polls, then reports nothing.
type scriptedSource struct {
	polls    [][]zbar.Decoded
	errAt    int
	err      error
	calls    int
	timeouts []time.Duration
	onPoll   func(call int)
}

func (s *scriptedSource) Next(timeout time.Duration) ([]zbar.Decoded, error) {
	s.calls++
	s.timeouts = append(s.timeouts, timeout)
	if s.onPoll != nil {
		s.onPoll(s.calls)
	}
	if s.err != nil && s.calls == s.errAt {
		return nil, s.err
	}
	if s.calls <= len(s.polls) {
		return s.polls[s.calls-1], nil
	}
	return nil, nil
}

func qr(text string) zbar.Decoded {
	return zbar.Decoded{Type: zbar.SymbolQRCode, Data: []byte(text)}
}

func TestLoop_MaxFrames(t *testing.T) {
	src := &scriptedSource{polls: [][]zbar.Decoded{nil, {qr("a")}, nil, {qr("b"), qr("c")}, {qr("d")}}}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	loop := &Loop{Source: src, MaxFrames: 2, now: func() time.Time { return fixed }}

	var frames []Frame
	err := loop.Run(context.Background(), func(f Frame) error {
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, uint64(1), frames[0].Seq)
	assert.Equal(t, uint64(2), frames[1].Seq)
	assert.Len(t, frames[1].Symbols, 2)
	assert.Equal(t, fixed, frames[0].Time)
	assert.Equal(t, 4, src.calls, "empty polls are skipped, loop stops after the second frame")
	assert.Equal(t, DefaultInterval, src.timeouts[0])
}

func TestLoop_CustomInterval(t *testing.T) {
	src := &scriptedSource{polls: [][]zbar.Decoded{{qr("a")}}}
	loop := &Loop{Source: src, Interval: 10 * time.Millisecond, MaxFrames: 1}
	require.NoError(t, loop.Run(context.Background(), func(Frame) error { return nil }))
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, src.timeouts)
}

func TestLoop_CancellationBetweenPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{onPoll: func(call int) {
		if call == 3 {
			cancel()
		}
	}}
	loop := &Loop{Source: src}
	require.NoError(t, loop.Run(ctx, func(Frame) error {
		t.Fatal("no frame expected")
		return nil
	}))
	assert.Equal(t, 3, src.calls, "the in-flight poll completes before the loop notices")
}

func TestLoop_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptedSource{}
	require.NoError(t, (&Loop{Source: src}).Run(ctx, func(Frame) error { return nil }))
	assert.Zero(t, src.calls)
}

func TestLoop_SourceError(t *testing.T) {
	boom := errors.New("device vanished")
	src := &scriptedSource{polls: [][]zbar.Decoded{{qr("a")}}, errAt: 2, err: boom}
	n := 0
	err := (&Loop{Source: src}).Run(context.Background(), func(Frame) error { n++; return nil })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
}

func TestLoop_SinkStopAndError(t *testing.T) {
	src := &scriptedSource{polls: [][]zbar.Decoded{{qr("a")}, {qr("b")}}}
	require.NoError(t, (&Loop{Source: src}).Run(context.Background(), func(Frame) error { return ErrStop }))
	assert.Equal(t, 1, src.calls)

	sinkErr := errors.New("write failed")
	src = &scriptedSource{polls: [][]zbar.Decoded{{qr("a")}}}
	err := (&Loop{Source: src}).Run(context.Background(), func(Frame) error { return sinkErr })
	require.ErrorIs(t, err, sinkErr)
}

func TestProcessorSource_WithoutVideo(t *testing.T) {
	proc, err := zbar.NewProcessor(false)
	require.NoError(t, err)
	defer func() { _ = proc.Close() }()

	_, err = ProcessorSource{Processor: proc}.Next(10 * time.Millisecond)
	var scanErr *zbar.ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, "process_one", scanErr.Op)
}

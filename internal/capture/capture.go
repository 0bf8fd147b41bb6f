// Package capture drives a video processor in a polling loop and forwards
// detached results to a sink.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Nic0w/zbars/zbar"
)

// DefaultInterval bounds each poll, which is also the cancellation latency.
const DefaultInterval = 250 * time.Millisecond

// ErrStop may be returned by a Sink to end the loop without error.
var ErrStop = errors.New("capture: stop")

// Source yields decoded frames. Next blocks for at most timeout and returns
// nil symbols without error when nothing was decoded.
type Source interface {
	Next(timeout time.Duration) ([]zbar.Decoded, error)
}

// ProcessorSource reads frames from an initialized, active processor.
type ProcessorSource struct {
	Processor *zbar.Processor
}

func (s ProcessorSource) Next(timeout time.Duration) ([]zbar.Decoded, error) {
	set, err := s.Processor.ProcessOne(timeout)
	if err != nil || set == nil {
		return nil, err
	}
	return set.Snapshot(), nil
}

// Frame is one decoded video frame.
type Frame struct {
	Seq     uint64         `json:"seq"`
	Time    time.Time      `json:"time"`
	Symbols []zbar.Decoded `json:"symbols"`
}

type Sink func(Frame) error

// Loop polls Source until the context is done, MaxFrames frames with
// symbols were delivered, or the source or sink fails.
type Loop struct {
	Source   Source
	Interval time.Duration
	// MaxFrames stops the loop after that many delivered frames. Zero
	// means no limit.
	MaxFrames int

	now func() time.Time
}

func (l *Loop) interval() time.Duration {
	if l.Interval <= 0 {
		return DefaultInterval
	}
	return l.Interval
}

// Run blocks until the loop ends. Cancellation is observed between polls
// only, so Run returns at most one interval after ctx is done. A canceled
// context is a normal stop and yields nil.
func (l *Loop) Run(ctx context.Context, sink Sink) error {
	now := l.now
	if now == nil {
		now = time.Now
	}

	var seq uint64
	delivered := 0
	for ctx.Err() == nil {
		symbols, err := l.Source.Next(l.interval())
		if err != nil {
			return err
		}
		if len(symbols) == 0 {
			continue
		}
		seq++
		frame := Frame{Seq: seq, Time: now(), Symbols: symbols}
		slog.Debug("capture frame", "seq", seq, "symbols", len(symbols))
		if err := sink(frame); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
		delivered++
		if l.MaxFrames > 0 && delivered >= l.MaxFrames {
			return nil
		}
	}
	slog.Info("capture loop stopped", "frames", delivered)
	return nil
}

package game

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"
)

const (
	DefaultTickLength = time.Second * 2
	DefaultQueueSize  = 1024
)

type Ticker interface {
	Tick(context.Context) error
}

// Handler is a unit of work run on the loop goroutine.
type Handler func(context.Context)

// Loop serialises every world mutation onto a single goroutine. Handlers
// run one at a time in submission order, interleaved with periodic ticks.
type Loop struct {
	queue      chan Handler
	done       chan struct{}
	tickLength time.Duration
	tickers    []Ticker
}

type LoopOpt func(*Loop)

func WithTickLength(d time.Duration) LoopOpt {
	return func(l *Loop) {
		l.tickLength = d
	}
}

func WithQueueSize(n int) LoopOpt {
	return func(l *Loop) {
		l.queue = make(chan Handler, n)
	}
}

func WithTickers(t ...Ticker) LoopOpt {
	return func(l *Loop) {
		l.tickers = append(l.tickers, t...)
	}
}

func NewLoop(opts ...LoopOpt) *Loop {
	l := &Loop{
		queue:      make(chan Handler, DefaultQueueSize),
		done:       make(chan struct{}),
		tickLength: DefaultTickLength,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// AddTicker registers a ticker. It must be called before Start.
func (l *Loop) AddTicker(t Ticker) {
	l.tickers = append(l.tickers, t)
}

func (l *Loop) Start(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.tickLength)
	defer ticker.Stop()

	slog.InfoContext(ctx, "event loop started", "tick", l.tickLength)

	for {
		select {
		case <-ctx.Done():
			return nil
		case h := <-l.queue:
			l.run(ctx, h)
		case <-ticker.C:
			err := l.tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (l *Loop) tick(ctx context.Context) error {
	for _, t := range l.tickers {
		err := t.Tick(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) run(ctx context.Context, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "handler panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	h(ctx)
}

// Submit queues h. It blocks while the queue is full and fails once the
// loop has stopped.
func (l *Loop) Submit(h Handler) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.queue <- h:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Do runs h on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, h Handler) error {
	finished := make(chan struct{})
	err := l.Submit(func(ctx context.Context) {
		defer close(finished)
		h(ctx)
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package assembler turns a keystroke stream from a barcode scanner or a
// keyboard into discrete scan submissions.
//
// Scanners emit a fast burst of characters and do not always send a
// terminator, so a buffer is flushed either on an explicit submit key or after
// the input has been idle for a fixed delay. Every buffer is flushed at most once.
package assembler

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-handover/pkg/logging"
)

const DefaultDelay = 2 * time.Second

type State int

const (
	Idle State = iota
	Accumulating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	}
	return "unknown"
}

type Scanner interface {
	Scan(ctx context.Context, raw string) error
}

type ScannerFunc func(ctx context.Context, raw string) error

func (f ScannerFunc) Scan(ctx context.Context, raw string) error {
	return f(ctx, raw)
}

type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Assembler)

func WithDelay(delay time.Duration) Option {
	return func(a *Assembler) {
		if delay > 0 {
			a.delay = delay
		}
	}
}

func WithAfterFunc(afterFunc AfterFunc) Option {
	return func(a *Assembler) {
		a.afterFunc = afterFunc
	}
}

type Assembler struct {
	mu    sync.Mutex
	state State
	buf   []rune
	timer Timer
	// seq identifies the armed timer; it changes on every re-arm and every
	// flush so late callbacks of replaced timers are ignored.
	seq      uint64
	inFlight int

	delay     time.Duration
	afterFunc AfterFunc
	scanner   Scanner
	ctx       context.Context
	logger    *logging.ZapLogger
}

func New(ctx context.Context, scanner Scanner, logger *logging.ZapLogger, opts ...Option) *Assembler {
	a := &Assembler{
		state:     Idle,
		delay:     DefaultDelay,
		afterFunc: realAfterFunc,
		scanner:   scanner,
		ctx:       ctx,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Keystroke feeds one character. Carriage return and line feed act as submit.
func (a *Assembler) Keystroke(r rune) {
	if r == '\n' || r == '\r' {
		a.Submit()
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.buf = append(a.buf, r)
	a.state = Accumulating
	// While a flush is pending the timer stays disarmed; flush re-arms it.
	if a.inFlight == 0 {
		a.armLocked()
	}
}

// Submit flushes the current buffer immediately and cancels the pending timer.
// It blocks until the scan call returns.
func (a *Assembler) Submit() {
	a.mu.Lock()
	raw, ok := a.takeLocked()
	a.mu.Unlock()
	if ok {
		a.flush(raw)
	}
}

func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Assembler) Buffer() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return string(a.buf)
}

// Close drops the pending timer without flushing.
func (a *Assembler) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTimerLocked()
	a.seq++
}

func (a *Assembler) armLocked() {
	a.stopTimerLocked()
	a.seq++
	seq := a.seq
	a.timer = a.afterFunc(a.delay, func() {
		a.onTimer(seq)
	})
}

func (a *Assembler) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Assembler) onTimer(seq uint64) {
	a.mu.Lock()
	if seq != a.seq || a.state != Accumulating {
		a.mu.Unlock()
		return
	}
	raw, ok := a.takeLocked()
	a.mu.Unlock()
	if ok {
		a.flush(raw)
	}
}

// takeLocked empties the buffer and returns to Idle. ok is false when the
// buffer held nothing worth scanning.
func (a *Assembler) takeLocked() (raw string, ok bool) {
	a.stopTimerLocked()
	a.seq++
	raw = string(a.buf)
	a.buf = nil
	a.state = Idle
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	a.inFlight++
	return raw, true
}

func (a *Assembler) flush(raw string) {
	if err := a.scanner.Scan(a.ctx, raw); err != nil {
		a.logger.ErrorCtx(a.ctx, "scan submission failed", zap.String("raw", raw), zap.Error(err))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight--
	if a.inFlight == 0 && a.state == Accumulating && len(a.buf) > 0 {
		a.armLocked()
	}
}

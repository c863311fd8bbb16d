package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-handover/internal/common/notifyprotocol"
	"go-handover/pkg/logging"
)

type Sink interface {
	Name() string
	Send(ctx context.Context, msg notifyprotocol.Message) error
}

type Config struct {
	WorkersCount      int
	TasksBufferLength int
	SendTimeout       time.Duration
}

// Dispatcher delivers scan notifications in the background. Enqueueing never
// blocks the caller and delivery failures are only logged.
type Dispatcher struct {
	sinks    []Sink
	config   Config
	queue    chan notifyprotocol.Message
	logger   *logging.ZapLogger
	done     chan struct{}
	stopOnce sync.Once
}

func NewDispatcher(config Config, logger *logging.ZapLogger, sinks ...Sink) *Dispatcher {
	if config.WorkersCount < 1 {
		config.WorkersCount = 1
	}
	if config.TasksBufferLength < 1 {
		config.TasksBufferLength = 1
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = 5 * time.Second
	}
	return &Dispatcher{
		sinks:  sinks,
		config: config,
		queue:  make(chan notifyprotocol.Message, config.TasksBufferLength),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Notify queues msg for delivery and reports whether it was accepted.
func (d *Dispatcher) Notify(msg notifyprotocol.Message) bool {
	if len(d.sinks) == 0 {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.WarnCtx(
			context.Background(),
			"notification queue is full, dropping message",
			zap.String("trackingNumber", msg.TrackingNumber),
		)
		return false
	}
}

// Run starts the workers and blocks until Stop. Messages still queued at
// Stop are delivered before Run returns.
func (d *Dispatcher) Run() {
	wg := &sync.WaitGroup{}
	for range d.config.WorkersCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker()
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
}

func (d *Dispatcher) worker() {
	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		case <-d.done:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(msg notifyprotocol.Message) {
	for _, sink := range d.sinks {
		if err := d.send(sink, msg); err != nil {
			d.logger.ErrorCtx(
				context.Background(),
				"failed to deliver scan notification",
				zap.String("sink", sink.Name()),
				zap.String("trackingNumber", msg.TrackingNumber),
				zap.Error(err),
			)
			continue
		}
		d.logger.DebugCtx(
			context.Background(),
			"scan notification delivered",
			zap.String("sink", sink.Name()),
			zap.String("trackingNumber", msg.TrackingNumber),
		)
	}
}

func (d *Dispatcher) send(sink Sink, msg notifyprotocol.Message) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.SendTimeout)
	defer cancel()
	defer func() {
		if rcv := recover(); rcv != nil {
			err = fmt.Errorf("sink %s panicked: %v", sink.Name(), rcv)
		}
	}()
	return sink.Send(ctx, msg)
}

package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

const (
	DispatchedMetric   = "notification_dispatched_total"
	DroppedMetric      = "notification_dropped_total"
	SendDurationMetric = "notification_send_duration_seconds"
)

const (
	defaultQueueSize   = 256
	defaultWorkers     = 2
	defaultSendTimeout = 10 * time.Second

	logMsgSendFailed = "notification delivery failed"
	logMsgDropped    = "notification queue full, notice dropped"
)

var (
	ErrInvalidQueueSize = errors.New("queue size must be positive")
	ErrInvalidWorkers   = errors.New("number of workers must be positive")
	ErrAlreadyStarted   = errors.New("dispatcher already started")
)

// Dispatcher is a bounded queue drained by a fixed number of workers.
type Dispatcher struct {
	sink        Sink
	queue       chan Notification
	workers     int
	sendTimeout time.Duration
	logger      eventstore.Logger
	metrics     eventstore.MetricsCollector

	mu      sync.Mutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithQueueSize sets the capacity of the queue.
func WithQueueSize(size int) Option {
	return func(d *Dispatcher) error {
		if size <= 0 {
			return ErrInvalidQueueSize
		}

		d.queue = make(chan Notification, size)

		return nil
	}
}

// WithWorkers sets the number of delivering goroutines.
func WithWorkers(workers int) Option {
	return func(d *Dispatcher) error {
		if workers <= 0 {
			return ErrInvalidWorkers
		}

		d.workers = workers

		return nil
	}
}

// WithSendTimeout bounds a single delivery.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) error {
		d.sendTimeout = timeout
		return nil
	}
}

// WithLogger sets the logger for delivery failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// WithMetrics sets the collector for the dispatch counters.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(d *Dispatcher) error {
		d.metrics = collector
		return nil
	}
}

// NewDispatcher creates a Dispatcher delivering to sink. Call Start before enqueueing.
func NewDispatcher(sink Sink, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		sink:        sink,
		queue:       make(chan Notification, defaultQueueSize),
		workers:     defaultWorkers,
		sendTimeout: defaultSendTimeout,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Start launches the workers. They run until Stop is called.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrAlreadyStarted
	}

	d.started = true

	for range d.workers {
		d.wg.Add(1)
		go d.work()
	}

	return nil
}

// Enqueue hands n to the workers without blocking. It returns false if the queue is full or stopped.
func (d *Dispatcher) Enqueue(n Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	select {
	case d.queue <- n:
		return true
	default:
		d.logWarn(logMsgDropped, "kind", string(n.Kind), "loan_id", n.LoanID)
		shell.IncrementCounter(context.Background(), d.metrics, DroppedMetric, map[string]string{"kind": string(n.Kind)})

		return false
	}
}

// Stop closes the queue and waits until the workers delivered what was queued or ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sink.Send(ctx, n)

	status := shell.StatusSuccess
	if err != nil {
		status = shell.StatusError
		d.logError(logMsgSendFailed, "kind", string(n.Kind), "loan_id", n.LoanID, "error", err.Error())
	}

	labels := map[string]string{"kind": string(n.Kind), "status": status}
	shell.IncrementCounter(ctx, d.metrics, DispatchedMetric, labels)
	shell.RecordDuration(ctx, d.metrics, SendDurationMetric, time.Since(start), labels)
}

func (d *Dispatcher) logWarn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}

func (d *Dispatcher) logError(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Error(msg, args...)
	}
}

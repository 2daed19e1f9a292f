// Package notification forwards domain events out of the process.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
)

// Sender delivers an encoded event to a subject.
type Sender interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSSender is the Sender backed by a NATS connection.
type NATSSender struct {
	conn *nats.Conn
}

// NewNATSSender connects to the NATS server at url.
func NewNATSSender(url string) (*NATSSender, error) {
	conn, err := nats.Connect(url, nats.Name("restaurant-pos"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSender{conn: conn}, nil
}

// Publish sends data on subject.
func (s *NATSSender) Publish(_ context.Context, subject string, data []byte) error {
	return s.conn.Publish(subject, data)
}

// Close flushes pending messages and closes the connection.
func (s *NATSSender) Close() error {
	if err := s.conn.Flush(); err != nil {
		s.conn.Close()
		return err
	}
	s.conn.Close()
	return nil
}

// WorkerPool forwards events to a Sender from a fixed number of goroutines.
type WorkerPool struct {
	size    int
	jobs    chan events.Event
	sender  Sender
	prefix  string
	log     logrus.FieldLogger
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewWorkerPool creates a pool of size workers publishing to
// "<prefix>.<event type>".
func NewWorkerPool(size int, sender Sender, prefix string, log logrus.FieldLogger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:   size,
		jobs:   make(chan events.Event, size*64),
		sender: sender,
		prefix: prefix,
		log:    log.WithField("component", "notification"),
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log := wp.log.WithField("worker", id)
	log.Debug("worker started")
	for {
		select {
		case e := <-wp.jobs:
			wp.forward(ctx, e)
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		}
	}
}

// Dispatch queues e without blocking. Events are dropped when the queue is
// full so that publishers never wait on the network.
func (wp *WorkerPool) Dispatch(e events.Event) bool {
	select {
	case wp.jobs <- e:
		return true
	default:
		wp.dropped.Add(1)
		wp.log.WithField("event_type", e.Type).Warn("event queue full, dropping event")
		return false
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (wp *WorkerPool) Dropped() int64 {
	return wp.dropped.Load()
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan events.Event {
	return wp.jobs
}

// Attach subscribes the pool to every event on bus. The returned func
// detaches it.
func (wp *WorkerPool) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func(_ context.Context, e events.Event) {
		wp.Dispatch(e)
	})
}

// Subject is the subject an event is published on.
func (wp *WorkerPool) Subject(e events.Event) string {
	if wp.prefix == "" {
		return e.Type
	}
	return wp.prefix + "." + e.Type
}

func (wp *WorkerPool) forward(ctx context.Context, e events.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		wp.log.WithError(err).WithField("event_type", e.Type).Error("failed to encode event")
		return
	}
	subject := wp.Subject(e)
	if err := wp.sender.Publish(ctx, subject, data); err != nil {
		wp.log.WithError(err).WithField("subject", subject).Error("failed to forward event")
	}
}

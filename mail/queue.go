package mail

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/bloombox/internal/logging"
)

const defaultSendTimeout = 30 * time.Second

// QueueConfig controls buffering.
type QueueConfig struct {
	BufferSize  int
	SendTimeout time.Duration
}

// Observer receives delivery outcomes. metrics.Metrics satisfies it.
type Observer interface {
	MailOutcome(outcome string)
}

// Queue hands messages to a Sender on a background worker.
type Queue struct {
	cfg       QueueConfig
	sender    Sender
	log       logging.Logger
	observer  Observer
	ch        chan Message
	done      chan struct{}
	wg        sync.WaitGroup
	sent      atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
	// mu orders Enqueue against Close: a message accepted under the read
	// lock is always buffered before done is closed, so the worker drains it.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewQueue(cfg QueueConfig, sender Sender, log logging.Logger, observer Observer) *Queue {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if log == nil {
		log = logging.Nop()
	}

	q := &Queue{
		cfg:      cfg,
		sender:   sender,
		log:      log,
		observer: observer,
		ch:       make(chan Message, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	q.wg.Add(1)
	go q.run()

	return q
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		select {
		case msg := <-q.ch:
			q.deliver(msg)
		case <-q.done:
			for {
				select {
				case msg := <-q.ch:
					q.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.SendTimeout)
	defer cancel()

	if err := q.sender.Send(ctx, msg); err != nil {
		q.failed.Add(1)
		q.observe("failed")
		q.log.Error(ctx, "mail delivery failed",
			"to", strings.Join(msg.To, ","),
			"subject", msg.Subject,
			"error", err,
		)
		return
	}
	q.sent.Add(1)
	q.observe("sent")
}

// Enqueue schedules msg without blocking. It reports false when the message
// was dropped because the queue is full or closed.
func (q *Queue) Enqueue(ctx context.Context, msg Message) bool {
	if q == nil {
		return false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}

	select {
	case q.ch <- msg:
		return true
	default:
		q.dropped.Add(1)
		q.observe("dropped")
		q.log.Warn(ctx, "mail queue full, message dropped", "subject", msg.Subject)
		return false
	}
}

// Close stops accepting messages and waits for the buffered ones to be sent.
func (q *Queue) Close() {
	if q == nil {
		return
	}
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.done)
		q.mu.Unlock()
		q.wg.Wait()
	})
}

func (q *Queue) Sent() uint64    { return q.sent.Load() }
func (q *Queue) Failed() uint64  { return q.failed.Load() }
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

func (q *Queue) observe(outcome string) {
	if q.observer != nil {
		q.observer.MailOutcome(outcome)
	}
}

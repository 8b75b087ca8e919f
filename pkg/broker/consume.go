package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/go-pkgz/lgr"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"

	"github.com/umputun/newswatch/pkg/domain"
)

// Handler processes one decoded message. Returning nil acknowledges the message,
// an error asks the broker to redeliver it after the configured delay. Errors wrapping
// domain.ErrStoreUnavailable are redelivered until the store is back, any other error
// gives up after Config.MaxDeliver attempts.
type Handler[T any] func(ctx context.Context, v T) error

// Consume pulls messages of the queue and passes them to the handler, one at a time per worker.
// It blocks until ctx is canceled or the broker connection is lost. On cancellation each worker
// stops pulling, finishes the message in hand and returns nil. A lost connection returns
// an error wrapping domain.ErrBrokerUnavailable.
// Messages that can't be decoded into T are terminated and never redelivered.
func Consume[T any](ctx context.Context, c *Client, queue domain.Queue, workers int, handler Handler[T]) error {
	if workers <= 0 {
		workers = 1
	}

	// delivery budget is enforced by dispatch, the consumer itself never drops a message
	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.streamName(queue), jetstream.ConsumerConfig{
		Durable:    c.durableName(queue),
		AckPolicy:  jetstream.AckExplicitPolicy,
		AckWait:    c.cfg.AckWait,
		MaxDeliver: -1,
	})
	if err != nil {
		return c.brokerErr(fmt.Sprintf("create consumer for %s", queue), err)
	}

	// processing is detached from ctx, a pulled message always runs to completion
	procCtx := context.WithoutCancel(ctx)

	type worker struct {
		cc      jetstream.ConsumeContext
		mu      sync.Mutex // held while a message is processed
		stopped bool
	}

	running := make([]*worker, 0, workers)
	stopAll := func() {
		for _, w := range running {
			w.cc.Stop()
			w.mu.Lock() // wait for the message in hand
			w.stopped = true
			w.mu.Unlock()
		}
	}

	for i := 0; i < workers; i++ {
		w := &worker{}
		cc, err := cons.Consume(func(msg jetstream.Msg) {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.stopped {
				_ = msg.Nak() // let another worker take it
				return
			}
			c.dispatch(procCtx, queue, msg, func(ctx context.Context, data []byte) error {
				var v T
				if err := json.Unmarshal(data, &v); err != nil {
					return &decodeError{err: err}
				}
				return handler(ctx, v)
			})
		}, jetstream.PullMaxMessages(1))
		if err != nil {
			stopAll()
			return c.brokerErr(fmt.Sprintf("consume %s", queue), err)
		}
		w.cc = cc
		running = append(running, w)
	}
	log.Printf("[INFO] consuming %s with %d worker(s)", queue, workers)

	select {
	case <-ctx.Done():
		stopAll()
		log.Printf("[INFO] stopped consuming %s", queue)
		return nil
	case <-c.closed:
		stopAll()
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("consume %s: connection closed: %w", queue, domain.ErrBrokerUnavailable)
	}
}

// decodeError marks a payload that can never be processed
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode payload: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

// dispatch runs the handler and settles the message according to its result
func (c *Client) dispatch(ctx context.Context, queue domain.Queue, msg jetstream.Msg, fn func(context.Context, []byte) error) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier(msg.Headers()))

	err := fn(ctx, msg.Data())
	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("[WARN] ack %s message: %v", queue, ackErr)
		}
		return
	}

	var de *decodeError
	if errors.As(err, &de) {
		log.Printf("[WARN] dropping undecodable %s message: %v", queue, err)
		if termErr := msg.Term(); termErr != nil {
			log.Printf("[WARN] terminate %s message: %v", queue, termErr)
		}
		return
	}

	attempt := uint64(1)
	if meta, metaErr := msg.Metadata(); metaErr == nil {
		attempt = meta.NumDelivered
	}

	if errors.Is(err, domain.ErrStoreUnavailable) {
		log.Printf("[WARN] %s message hit unavailable store on delivery %d, will be redelivered: %v", queue, attempt, err)
		if nakErr := msg.NakWithDelay(c.cfg.NakDelay); nakErr != nil {
			log.Printf("[WARN] nak %s message: %v", queue, nakErr)
		}
		return
	}

	if attempt >= uint64(c.cfg.MaxDeliver) { //nolint:gosec // MaxDeliver is positive
		log.Printf("[WARN] %s message failed on final delivery %d, giving up: %v", queue, attempt, err)
		if termErr := msg.Term(); termErr != nil {
			log.Printf("[WARN] terminate %s message: %v", queue, termErr)
		}
		return
	}

	log.Printf("[WARN] %s message failed on delivery %d, will be redelivered: %v", queue, attempt, err)
	if nakErr := msg.NakWithDelay(c.cfg.NakDelay); nakErr != nil {
		log.Printf("[WARN] nak %s message: %v", queue, nakErr)
	}
}

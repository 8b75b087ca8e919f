// Package broker is the message broker client of the pipeline. Each queue is a durable NATS JetStream
// stream with work-queue retention, consumed through one shared durable pull consumer so that several
// worker instances compete for the same messages. Payloads are JSON, trace context travels in headers.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"

	"github.com/umputun/newswatch/pkg/domain"
)

// Config defines broker connection and delivery parameters
type Config struct {
	URL             string
	Name            string        // client connection name
	Prefix          string        // subject and stream prefix
	AckWait         time.Duration // redelivery timeout of an unacknowledged message
	MaxDeliver      int           // delivery attempts before a failing message is given up, store outages excluded
	NakDelay        time.Duration // redelivery delay after a handler error
	DuplicateWindow time.Duration // publish dedup window keyed by message id
	ReconnectWait   time.Duration
	MaxReconnects   int
}

// Client is a JetStream connection bound to the pipeline queues
type Client struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	cfg    Config
	closed chan struct{}
	once   sync.Once
}

// Connect dials the broker and sets up JetStream. The returned client signals Closed when
// the connection is lost for good, the process is expected to exit then.
func Connect(cfg Config) (*Client, error) {
	cfg = withDefaults(cfg)
	c := &Client{cfg: cfg, closed: make(chan struct{})}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[WARN] broker disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[INFO] broker reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.once.Do(func() { close(c.closed) })
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w: %w", cfg.URL, domain.ErrBrokerUnavailable, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	c.nc, c.js = nc, js
	return c, nil
}

func withDefaults(cfg Config) Config {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Name == "" {
		cfg.Name = "newswatch"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "newswatch"
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 5 * time.Minute
	}
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = 5
	}
	if cfg.NakDelay <= 0 {
		cfg.NakDelay = 10 * time.Second
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = 10 * time.Minute
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 30
	}
	return cfg
}

// EnsureQueues creates or updates the durable streams of all pipeline queues
func (c *Client) EnsureQueues(ctx context.Context) error {
	for _, q := range domain.Queues {
		_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:       c.streamName(q),
			Subjects:   []string{c.subject(q)},
			Retention:  jetstream.WorkQueuePolicy,
			Storage:    jetstream.FileStorage,
			Duplicates: c.cfg.DuplicateWindow,
		})
		if err != nil {
			return c.brokerErr(fmt.Sprintf("ensure stream for %s", q), err)
		}
		log.Printf("[DEBUG] queue %s ready, stream %s", q, c.streamName(q))
	}
	return nil
}

// Publish serializes v as JSON and publishes it to the queue. The msgID is used by the broker to
// drop repeated publishes of the same message inside the duplicate window.
func (c *Client) Publish(ctx context.Context, queue domain.Queue, msgID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", queue, err)
	}

	msg := nats.NewMsg(c.subject(queue))
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(msg.Header))

	var opts []jetstream.PublishOpt
	if msgID != "" {
		opts = append(opts, jetstream.WithMsgID(msgID))
	}
	ack, err := c.js.PublishMsg(ctx, msg, opts...)
	if err != nil {
		return c.brokerErr(fmt.Sprintf("publish to %s", queue), err)
	}
	if ack.Duplicate {
		log.Printf("[DEBUG] duplicate publish of %s to %s ignored by broker", msgID, queue)
	}
	return nil
}

// QueueDepth returns the number of messages waiting in the queue
func (c *Client) QueueDepth(ctx context.Context, queue domain.Queue) (uint64, error) {
	stream, err := c.js.Stream(ctx, c.streamName(queue))
	if err != nil {
		return 0, c.brokerErr(fmt.Sprintf("get stream of %s", queue), err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return 0, c.brokerErr(fmt.Sprintf("get stream info of %s", queue), err)
	}
	return info.State.Msgs, nil
}

// Closed is closed once the connection is lost for good
func (c *Client) Closed() <-chan struct{} {
	return c.closed
}

// Close drains and closes the connection
func (c *Client) Close() error {
	if c.nc.IsClosed() {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("drain broker connection: %w", err)
	}
	return nil
}

func (c *Client) subject(q domain.Queue) string {
	return c.cfg.Prefix + "." + string(q)
}

func (c *Client) streamName(q domain.Queue) string {
	return strings.ToUpper(c.cfg.Prefix + "_" + string(q))
}

func (c *Client) durableName(q domain.Queue) string {
	return c.cfg.Prefix + "-" + string(q)
}

// brokerErr marks errors of a closed connection as broker-unavailable, those are fatal for the process
func (c *Client) brokerErr(op string, err error) error {
	if c.nc.IsClosed() || errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBrokerUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// headerCarrier adapts nats headers for OTel TextMapCarrier
type headerCarrier nats.Header

func (c headerCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c headerCarrier) Set(key, val string) {
	nats.Header(c).Set(key, val)
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

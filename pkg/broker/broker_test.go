package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newswatch/pkg/domain"
)

func startJetStream(t *testing.T) *natsserver.Server {
	t.Helper()
	opts := &natsserver.Options{Port: -1, JetStream: true, StoreDir: t.TempDir()}
	ns, err := natsserver.NewServer(opts)
	require.NoError(t, err)
	ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func newTestClient(t *testing.T, ns *natsserver.Server) *Client {
	t.Helper()
	c, err := Connect(Config{URL: ns.ClientURL(), NakDelay: 50 * time.Millisecond, MaxDeliver: 3, MaxReconnects: -1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.EnsureQueues(context.Background()))
	return c
}

// collect runs Consume in background and returns received values through a channel
func collect[T any](t *testing.T, c *Client, queue domain.Queue, fn Handler[T]) (received chan T, stop func() error) {
	t.Helper()
	received = make(chan T, 100)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Consume(ctx, c, queue, 1, func(ctx context.Context, v T) error {
			if fn != nil {
				if err := fn(ctx, v); err != nil {
					return err
				}
			}
			received <- v
			return nil
		})
	}()
	return received, func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			return errors.New("consume did not stop")
		}
	}
}

func TestClient_PublishConsume(t *testing.T) {
	c := newTestClient(t, startJetStream(t))
	ctx := context.Background()

	item := domain.ContentItem{TaskID: 1, SourceItemID: "p1", Title: "Flask 3.0 released", URL: "https://example.com/p1",
		BodyExcerpt: "Flask release notes", Metadata: map[string]string{domain.MetaAuthor: "alice"}}
	require.NoError(t, c.Publish(ctx, domain.QueueRawContent, item.MessageID(), item))

	received, stop := collect[domain.ContentItem](t, c, domain.QueueRawContent, nil)
	select {
	case got := <-received:
		assert.Equal(t, item, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
	require.NoError(t, stop())

	depth, err := c.QueueDepth(ctx, domain.QueueRawContent)
	require.NoError(t, err)
	assert.Zero(t, depth, "acked message is removed from the work queue")
}

func TestClient_PublishDuplicateMsgID(t *testing.T) {
	c := newTestClient(t, startJetStream(t))
	ctx := context.Background()

	n := domain.Notification{ID: "n-1", RoutingKey: "user@example.com", Subject: "s", Body: "b", TaskID: 1}
	require.NoError(t, c.Publish(ctx, domain.QueueFilteredContent, n.ID, n))
	require.NoError(t, c.Publish(ctx, domain.QueueFilteredContent, n.ID, n))

	depth, err := c.QueueDepth(ctx, domain.QueueFilteredContent)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), depth)
}

func TestConsume_RedeliversOnError(t *testing.T) {
	c := newTestClient(t, startJetStream(t))
	ctx := context.Background()

	ev := domain.FeedbackEvent{TaskID: 7, FeedbackText: "only tutorials", CriterionAtTimeOf: "about Python"}
	require.NoError(t, c.Publish(ctx, domain.QueueFeedback, ev.MessageID(), ev))

	var calls int32
	received, stop := collect(t, c, domain.QueueFeedback, func(_ context.Context, _ domain.FeedbackEvent) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return domain.ErrStoreUnavailable
		}
		return nil
	})

	select {
	case got := <-received:
		assert.Equal(t, ev, got)
	case <-time.After(5 * time.Second):
		t.Fatal("message was not redelivered")
	}
	require.NoError(t, stop())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestConsume_GivesUpAfterMaxDeliver(t *testing.T) {
	c := newTestClient(t, startJetStream(t))
	ctx := context.Background()

	require.NoError(t, c.Publish(ctx, domain.QueueFeedback, "ev-1", domain.FeedbackEvent{TaskID: 1, FeedbackText: "x"}))

	var calls int32
	_, stop := collect(t, c, domain.QueueFeedback, func(_ context.Context, _ domain.FeedbackEvent) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("always fails")
	})

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 3 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, stop())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "no delivery beyond max deliver")

	depth, err := c.QueueDepth(ctx, domain.QueueFeedback)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestConsume_StoreOutageOutlastsMaxDeliver(t *testing.T) {
	c := newTestClient(t, startJetStream(t))
	ctx := context.Background()

	item := domain.ContentItem{TaskID: 1, SourceItemID: "p1", Title: "Flask 3.0 released", URL: "https://example.com/p1"}
	require.NoError(t, c.Publish(ctx, domain.QueueRawContent, item.MessageID(), item))

	var calls int32
	received, stop := collect(t, c, domain.QueueRawContent, func(_ context.Context, _ domain.ContentItem) error {
		if atomic.AddInt32(&calls, 1) <= 6 { // twice the max deliver of the test client
			return fmt.Errorf("get task 1: %w", domain.ErrStoreUnavailable)
		}
		return nil
	})

	select {
	case got := <-received:
		assert.Equal(t, item, got)
	case <-time.After(10 * time.Second):
		t.Fatalf("message was dropped during store outage after %d calls", atomic.LoadInt32(&calls))
	}
	require.NoError(t, stop())
	assert.Equal(t, int32(7), atomic.LoadInt32(&calls))

	depth, err := c.QueueDepth(ctx, domain.QueueRawContent)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestConsume_TerminatesUndecodable(t *testing.T) {
	ns := startJetStream(t)
	c := newTestClient(t, ns)
	ctx := context.Background()

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer nc.Close()
	_, err = nc.Request(c.subject(domain.QueueRawContent), []byte("{not json"), time.Second)
	require.NoError(t, err)
	item := domain.ContentItem{TaskID: 2, SourceItemID: "ok"}
	require.NoError(t, c.Publish(ctx, domain.QueueRawContent, item.MessageID(), item))

	var calls int32
	received, stop := collect(t, c, domain.QueueRawContent, func(_ context.Context, _ domain.ContentItem) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	select {
	case got := <-received:
		assert.Equal(t, "ok", got.SourceItemID)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for valid message")
	}
	require.NoError(t, stop())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "undecodable message never reaches the handler")
}

func TestConsume_CompetingWorkers(t *testing.T) {
	c := newTestClient(t, startJetStream(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const total = 20
	for i := 0; i < total; i++ {
		ev := domain.FeedbackEvent{TaskID: int64(i + 1), FeedbackText: "text"}
		require.NoError(t, c.Publish(ctx, domain.QueueFeedback, ev.MessageID(), ev))
	}

	var mu sync.Mutex
	seen := map[int64]int{}
	done := make(chan error, 1)
	go func() {
		done <- Consume(ctx, c, domain.QueueFeedback, 4, func(_ context.Context, ev domain.FeedbackEvent) error {
			mu.Lock()
			seen[ev.TaskID]++
			mu.Unlock()
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == total
	}, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	for id, n := range seen {
		assert.Equal(t, 1, n, "task %d delivered more than once", id)
	}
}

func TestConsume_BrokerLost(t *testing.T) {
	ns := startJetStream(t)
	c, err := Connect(Config{URL: ns.ClientURL(), MaxReconnects: 1, ReconnectWait: 10 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.EnsureQueues(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- Consume(context.Background(), c, domain.QueueRawContent, 1, func(context.Context, domain.ContentItem) error {
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	ns.Shutdown()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
	case <-time.After(10 * time.Second):
		t.Fatal("consume did not notice lost connection")
	}
}

func TestHeaderCarrier(t *testing.T) {
	h := nats.Header{}
	carrier := headerCarrier(h)
	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Equal(t, "00-abc-def-01", h.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, carrier.Keys())
	assert.Empty(t, carrier.Get("missing"))
}

package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newswatch/pkg/domain"
	"github.com/umputun/newswatch/pkg/scheduler/mocks"
)

func TestDispatcher_Handle(t *testing.T) {
	n := domain.Notification{ID: "n1", RoutingKey: "user@example.com", Subject: "[Task #1] hi", Body: "body", TaskID: 1}

	t.Run("delivered", func(t *testing.T) {
		d := &mocks.DelivererMock{DeliverFunc: func(context.Context, domain.Notification) error { return nil }}
		require.NoError(t, NewDispatcher(d).Handle(context.Background(), n))
		require.Len(t, d.DeliverCalls(), 1)
		assert.Equal(t, n, d.DeliverCalls()[0].N)
	})

	t.Run("delivery failure is redelivered", func(t *testing.T) {
		d := &mocks.DelivererMock{DeliverFunc: func(context.Context, domain.Notification) error { return errors.New("502") }}
		err := NewDispatcher(d).Handle(context.Background(), n)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deliver notification n1")
	})

	t.Run("invalid notification dropped", func(t *testing.T) {
		d := &mocks.DelivererMock{}
		bad := n
		bad.RoutingKey = ""
		require.NoError(t, NewDispatcher(d).Handle(context.Background(), bad))
		assert.Empty(t, d.DeliverCalls())
	})
}

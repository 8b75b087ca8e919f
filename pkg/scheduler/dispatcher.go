package scheduler

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newswatch/pkg/domain"
)

// Dispatcher consumes filtered_content and hands notifications to the delivery channel.
// A failed delivery is returned to the broker for redelivery, bounded by max-deliver.
type Dispatcher struct {
	deliverer Deliverer
}

// NewDispatcher creates a dispatcher for the given delivery channel
func NewDispatcher(d Deliverer) *Dispatcher {
	return &Dispatcher{deliverer: d}
}

// Handle delivers one notification
func (d *Dispatcher) Handle(ctx context.Context, n domain.Notification) error {
	if err := n.Validate(); err != nil {
		lgr.Printf("[WARN] drop notification %s for task %d: %v", n.ID, n.TaskID, err)
		return nil
	}
	if err := d.deliverer.Deliver(ctx, n); err != nil {
		return fmt.Errorf("deliver notification %s for task %d: %w", n.ID, n.TaskID, err)
	}
	lgr.Printf("[DEBUG] delivered notification %s for task %d to %s", n.ID, n.TaskID, n.RoutingKey)
	return nil
}

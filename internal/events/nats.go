package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// SubjectCartReconciled is the NATS subject cart reconciliation events are
// published on.
const SubjectCartReconciled = "cart.reconciled"

// NATSPublisher publishes cart events to a NATS broker.
type NATSPublisher struct {
	conn *nats.Conn
}

var _ Publisher = (*NATSPublisher)(nil)

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("foodcart"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) PublishCartReconciled(ctx context.Context, event CartReconciledEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.conn.Publish(SubjectCartReconciled, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close drains the connection, flushing buffered events.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// Package trigger pulls queue messages for the long-running server, where no
// platform trigger delivers them.
package trigger

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"docbridge/internal/config"
	"docbridge/internal/invocation"
)

// Dispatcher runs one invocation; implemented by dispatcher.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, inv invocation.Invocation) invocation.Response
}

// PubSub receives messages from a subscription one at a time and dispatches
// each as a single-message queue batch. Messages are acked whatever the outcome.
type PubSub struct {
	client *pubsub.Client
	sub    *pubsub.Subscription
	d      Dispatcher
	logger *zap.Logger
	owned  bool
}

// NewPubSub connects to cfg.ProjectID with Application Default Credentials.
func NewPubSub(ctx context.Context, cfg config.PubSubConfig, d Dispatcher, logger *zap.Logger) (*PubSub, error) {
	if cfg.ProjectID == "" || cfg.SubscriptionID == "" {
		return nil, fmt.Errorf("pubsub project and subscription are required")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	p := NewPubSubWithClient(client, cfg.SubscriptionID, d, logger)
	p.owned = true
	return p, nil
}

// NewPubSubWithClient uses an existing client, which the caller keeps owning.
func NewPubSubWithClient(client *pubsub.Client, subscriptionID string, d Dispatcher, logger *zap.Logger) *PubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	sub := client.Subscription(subscriptionID)
	sub.ReceiveSettings.MaxOutstandingMessages = 1
	sub.ReceiveSettings.NumGoroutines = 1
	return &PubSub{
		client: client,
		sub:    sub,
		d:      d,
		logger: logger.With(zap.String("component", "pubsub"), zap.String("subscription", subscriptionID)),
	}
}

// Run blocks until ctx is done or the subscription fails.
func (p *PubSub) Run(ctx context.Context) error {
	p.logger.Info("pubsub receiver started")
	err := p.sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		defer m.Ack()
		p.d.Dispatch(ctx, invocation.Queue{Messages: []invocation.Message{{
			ID:   m.ID,
			Body: string(m.Data),
		}}})
	})
	if err != nil {
		return fmt.Errorf("pubsub receive: %w", err)
	}
	p.logger.Info("pubsub receiver stopped")
	return nil
}

// Close releases the client if NewPubSub created it.
func (p *PubSub) Close() error {
	if !p.owned {
		return nil
	}
	return p.client.Close()
}

package messaging

import (
	"context"
)

// Broker is the publish side of the decision-event pipeline. Consumers are
// external systems subscribing to the Redis channels directly.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

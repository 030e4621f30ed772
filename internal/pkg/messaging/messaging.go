// Package messaging is a broker-agnostic publish/consume layer.
//
// The service publishes domain events (codes issued, passwords changed) and
// the notification worker consumes them; which broker carries them is a
// deployment choice, selected by driver name in configuration. Kafka, NATS
// and NSQ backends are provided.
package messaging

import (
	"context"
	"io"
	"time"
)

// Messaging is a broker client that can both publish and consume.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg OutgoingMessage) error
}

// Consumer consumes messages from a topic. Consume blocks until ctx is
// canceled or the underlying subscription fails.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message. A nil return acknowledges the
// message; a non-nil return asks the broker to redeliver where the broker
// supports that.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a broker-agnostic message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte

	// Key is used for partitioning by brokers that support it.
	Key []byte

	// Headers carries string metadata alongside the payload.
	Headers map[string]string
}

// Message is a broker-agnostic received message.
type Message interface {
	// Body returns the message payload.
	Body() []byte
	// Key returns the partition key, when the broker carries one.
	Key() []byte
	// Header returns the named header value, or "".
	Header(key string) string
	// Topic returns the topic the message arrived on.
	Topic() string
	// Timestamp returns the broker timestamp, when known.
	Timestamp() time.Time
}

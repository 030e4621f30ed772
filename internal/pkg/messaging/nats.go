package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired is returned when no server URL is configured.
var ErrNATSURLRequired = errors.New("messaging: nats url is required")

// NATSConfig configures the NATS backend.
type NATSConfig struct {
	// URL is the server address, e.g. nats://127.0.0.1:4222.
	URL string
	// Name identifies this client to the server.
	Name string
}

// NATS is a Messaging implementation on core NATS subjects. Core NATS is
// at-most-once: a message delivered while no consumer is subscribed is gone.
type NATS struct {
	conn *nats.Conn

	mu     sync.Mutex
	subs   []*nats.Subscription
	closed bool
}

// NewNATS connects to the configured server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	opts := []nats.Option{nats.RetryOnFailedConnect(true)}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Publish sends a message on a subject.
func (n *NATS) Publish(_ context.Context, topic string, msg OutgoingMessage) error {
	nmsg := nats.NewMsg(topic)
	nmsg.Data = msg.Body
	for k, v := range msg.Headers {
		nmsg.Header.Set(k, v)
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}

	return nil
}

// Consume subscribes to a subject until ctx is canceled. With a queue group,
// instances of the service share the subscription instead of each receiving
// every message.
func (n *NATS) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)

	sem := make(chan struct{}, co.concurrency)
	cb := func(nmsg *nats.Msg) {
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			_ = callHandler(ctx, DriverNATS, handler, &natsMessage{msg: nmsg})
		}()
	}

	var (
		sub *nats.Subscription
		err error
	)
	if co.queueGroup != "" {
		sub, err = n.conn.QueueSubscribe(topic, co.queueGroup, cb)
	} else {
		sub, err = n.conn.Subscribe(topic, cb)
	}
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	<-ctx.Done()

	if err := sub.Drain(); err != nil {
		return fmt.Errorf("messaging: nats drain: %w", err)
	}

	return nil
}

// Close drains and closes the connection.
func (n *NATS) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return fmt.Errorf("messaging: nats close: %w", err)
	}

	return nil
}

type natsMessage struct {
	msg *nats.Msg
}

func (m *natsMessage) Body() []byte             { return m.msg.Data }
func (m *natsMessage) Key() []byte              { return nil }
func (m *natsMessage) Header(key string) string { return m.msg.Header.Get(key) }
func (m *natsMessage) Topic() string            { return m.msg.Subject }
func (m *natsMessage) Timestamp() time.Time     { return time.Time{} }

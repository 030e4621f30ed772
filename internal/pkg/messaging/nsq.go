package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
)

var (
	// ErrNSQAddressRequired is returned when no nsqd address is configured.
	ErrNSQAddressRequired = errors.New("messaging: nsqd address is required")
	// ErrNSQChannelRequired is returned when Consume is called without a channel.
	ErrNSQChannelRequired = errors.New("messaging: nsq channel is required")
)

// NSQConfig configures the NSQ backend.
type NSQConfig struct {
	// Address is the nsqd TCP address used for publishing and consuming.
	Address string
	// LookupAddresses, when set, are nsqlookupd HTTP addresses used for
	// consumer discovery instead of the direct nsqd address.
	LookupAddresses []string
}

// NSQ is a Messaging implementation backed by go-nsq.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

// NewNSQ constructs an NSQ messaging client.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.Address == "" {
		return nil, ErrNSQAddressRequired
	}

	producer, err := nsq.NewProducer(cfg.Address, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}

	return &NSQ{cfg: cfg, producer: producer}, nil
}

// Publish sends a message to an NSQ topic. NSQ has no native headers or
// keys, so only the body travels.
func (n *NSQ) Publish(ctx context.Context, topic string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.producer.Publish(topic, msg.Body); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return nil
}

// Consume reads from topic on the given channel until ctx is canceled. A
// handler error requeues the message with NSQ's default backoff.
func (n *NSQ) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)
	if co.channel == "" {
		return ErrNSQChannelRequired
	}

	cfg := nsq.NewConfig()
	if co.maxInFlight > 0 {
		cfg.MaxInFlight = co.maxInFlight
	}

	consumer, err := nsq.NewConsumer(topic, co.channel, cfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq consumer: %w", err)
	}

	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(nmsg *nsq.Message) error {
		return callHandler(ctx, DriverNSQ, handler, &nsqMessage{msg: nmsg, topic: topic})
	}), co.concurrency)

	if len(n.cfg.LookupAddresses) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.LookupAddresses)
	} else {
		err = consumer.ConnectToNSQD(n.cfg.Address)
	}
	if err != nil {
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	n.mu.Lock()
	n.consumers = append(n.consumers, consumer)
	n.mu.Unlock()

	<-ctx.Done()

	consumer.Stop()
	<-consumer.StopChan

	return nil
}

// Close stops the producer and all consumers.
func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
	}
	n.producer.Stop()

	return nil
}

type nsqMessage struct {
	msg   *nsq.Message
	topic string
}

func (m *nsqMessage) Body() []byte         { return m.msg.Body }
func (m *nsqMessage) Key() []byte          { return nil }
func (m *nsqMessage) Header(string) string { return "" }
func (m *nsqMessage) Topic() string        { return m.topic }
func (m *nsqMessage) Timestamp() time.Time { return time.Unix(0, m.msg.Timestamp) }

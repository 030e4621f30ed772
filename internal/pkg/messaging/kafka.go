package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
)

var (
	// ErrKafkaBrokersRequired is returned when no broker addresses are configured.
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	// ErrKafkaGroupRequired is returned when Consume is called without a consumer group.
	ErrKafkaGroupRequired = errors.New("messaging: kafka consumer group is required")
)

// KafkaConfig configures the Kafka backend.
type KafkaConfig struct {
	// Brokers lists broker addresses.
	Brokers []string
}

// Kafka is a Messaging implementation backed by kafka-go. Writers are created
// lazily per topic; each Consume call gets its own reader group.
type Kafka struct {
	brokers []string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers []*kafka.Reader
	closed  bool
}

// NewKafka constructs a Kafka messaging client.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	return &Kafka{
		brokers: append([]string{}, cfg.Brokers...),
		writers: map[string]*kafka.Writer{},
	}, nil
}

// Publish sends a message to a Kafka topic.
func (k *Kafka) Publish(ctx context.Context, topic string, msg OutgoingMessage) error {
	writer, err := k.writer(topic)
	if err != nil {
		return err
	}

	kmsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Body,
		Headers: lo.MapToSlice(msg.Headers, func(key, value string) kafka.Header {
			return kafka.Header{Key: key, Value: []byte(value)}
		}),
	}

	if err := writer.WriteMessages(ctx, kmsg); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return nil
}

// Consume reads from topic until ctx is canceled. A consumer group is
// mandatory so redeliveries survive restarts; concurrency spawns that many
// readers in the same group.
func (k *Kafka) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)
	if co.group == "" {
		return ErrKafkaGroupRequired
	}

	readers := make([]*kafka.Reader, 0, co.concurrency)
	for range co.concurrency {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers: k.brokers,
			Topic:   topic,
			GroupID: co.group,
		})
		if err := k.track(r); err != nil {
			return errors.Join(err, r.Close())
		}
		readers = append(readers, r)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(readers))
	for i, r := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = k.readLoop(ctx, r, topic, handler)
		}()
	}
	wg.Wait()

	for _, r := range readers {
		k.untrack(r)
		_ = r.Close()
	}

	return errors.Join(errs...)
}

func (k *Kafka) readLoop(ctx context.Context, r *kafka.Reader, topic string, handler Handler) error {
	for {
		kmsg, err := r.FetchMessage(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("messaging: kafka fetch: %w", err)
		}

		// A failed handler leaves the offset uncommitted; the message comes
		// back on the next rebalance or restart.
		if err := callHandler(ctx, DriverKafka, handler, &kafkaMessage{msg: kmsg, topic: topic}); err != nil {
			continue
		}

		if err := r.CommitMessages(ctx, kmsg); err != nil {
			return fmt.Errorf("messaging: kafka commit: %w", err)
		}
	}
}

// Close shuts down all writers and readers.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers := lo.Values(k.writers)
	readers := k.readers
	k.writers = nil
	k.readers = nil
	k.mu.Unlock()

	var errs []error
	for _, r := range readers {
		errs = append(errs, r.Close())
	}
	for _, w := range writers {
		errs = append(errs, w.Close())
	}

	return errors.Join(errs...)
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, io.ErrClosedPipe
	}

	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(k.brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	k.writers[topic] = w

	return w, nil
}

func (k *Kafka) track(r *kafka.Reader) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return io.ErrClosedPipe
	}
	k.readers = append(k.readers, r)

	return nil
}

func (k *Kafka) untrack(r *kafka.Reader) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.readers = lo.Without(k.readers, r)
}

type kafkaMessage struct {
	msg   kafka.Message
	topic string
}

func (m *kafkaMessage) Body() []byte { return m.msg.Value }
func (m *kafkaMessage) Key() []byte  { return m.msg.Key }

func (m *kafkaMessage) Header(key string) string {
	for _, h := range m.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (m *kafkaMessage) Topic() string        { return m.topic }
func (m *kafkaMessage) Timestamp() time.Time { return m.msg.Time }

package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/nubitera/authcore/internal/pkg/config"
	"github.com/nubitera/authcore/internal/pkg/goroutine"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/messaging"
	"github.com/nubitera/authcore/internal/pkg/uid"
	"github.com/nubitera/authcore/internal/shared/event"
)

// Consumer names; also the Kafka group / NATS queue group / NSQ channel, so
// each event is handled once per deployment regardless of replica count.
const (
	consumerOTPIssued       = "notification-otp-issued"
	consumerPasswordChanged = "notification-password-changed"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	handler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")

	consumers := []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    consumerOTPIssued,
			topic:   event.TopicOTPIssued,
			handler: handler.OTPIssuedNotification,
		},
		{
			name:    consumerPasswordChanged,
			topic:   event.TopicPasswordChanged,
			handler: handler.PasswordChangedNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enabled) > 0 && slices.Contains(enabled, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "running consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithGroup(consumer.name),
					messaging.WithQueueGroup(consumer.name),
					messaging.WithChannel(consumer.name),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}

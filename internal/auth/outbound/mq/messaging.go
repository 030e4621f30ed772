// Package mq publishes the auth module's domain events to the broker.
package mq

import (
	"context"
	"encoding/json"

	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/messaging"
	"github.com/nubitera/authcore/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// Deliver publishes an issued code for the notification worker to send out.
// It satisfies the engine's delivery hook; the code never travels back over
// HTTP, only over the broker.
func (m *Messaging) Deliver(ctx context.Context, target, purpose, channel, code string) error {
	ctx, span := m.startSpan(ctx, "Deliver")
	defer span.End()

	return m.publish(ctx, span, event.TopicOTPIssued, target, event.OTPIssued{
		Target:  target,
		Channel: channel,
		Purpose: purpose,
		Code:    code,
	})
}

// PublishPasswordChanged notifies the account owner that their password
// was reset.
func (m *Messaging) PublishPasswordChanged(ctx context.Context, ev event.PasswordChanged) error {
	ctx, span := m.startSpan(ctx, "PublishPasswordChanged")
	defer span.End()

	return m.publish(ctx, span, event.TopicPasswordChanged, ev.Target, ev)
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, topic, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	err = m.client.Publish(ctx, topic, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(key),
		Headers: map[string]string{keyOfCorrelationID: cID},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return m.ins.Tracer("auth.outbound.mq").Start(ctx, name)
}

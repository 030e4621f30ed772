package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nubitera/authcore/internal/notification/usecase"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/messaging"
	"github.com/nubitera/authcore/internal/pkg/uid"
	"github.com/nubitera/authcore/internal/shared/event"
)

const keyOfCorrelationID = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPIssuedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPIssuedNotification")
	defer span.End()

	// The payload carries the code, so the body is never logged here.
	slog.InfoContext(ctx, "consume: otp issued", "topic", msg.Topic())

	var payload event.OTPIssued
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse otp issued event", "error", err)
		return nil
	}

	return h.uc.ConsumeOTPIssued(ctx, usecase.ConsumeOTPIssuedInput{
		Target:  payload.Target,
		Channel: payload.Channel,
		Purpose: payload.Purpose,
		Code:    payload.Code,
	})
}

func (h *MQHandler) PasswordChangedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "PasswordChangedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: password changed", "msg_body", string(body))

	var payload event.PasswordChanged
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse password changed event", "msg_body", string(body), "error", err)
		return nil
	}

	return h.uc.ConsumePasswordChanged(ctx, usecase.ConsumePasswordChangedInput{
		UserID:  payload.UserID,
		Target:  payload.Target,
		Channel: payload.Channel,
	})
}

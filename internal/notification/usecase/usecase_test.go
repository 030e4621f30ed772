package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/mail"
	"github.com/nubitera/authcore/internal/pkg/validator"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

func newTestUsecase(t *testing.T) (*Usecase, *fakeMailer) {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	mailer := &fakeMailer{}
	uc := New(Dependency{
		Mailer:     mailer,
		Validator:  v10,
		Instrument: instrument.NewNoop(),
	})

	return uc, mailer
}

func TestConsumeOTPIssued(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsEmail", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)

		err := uc.ConsumeOTPIssued(ctx, ConsumeOTPIssuedInput{
			Target:  "user@example.com",
			Channel: "email",
			Purpose: "register",
			Code:    "482913",
		})
		if err != nil {
			t.Fatalf("consume: %v", err)
		}

		msgs := mailer.messages()
		if len(msgs) != 1 {
			t.Fatalf("expected one email, got %d", len(msgs))
		}
		msg := msgs[0]
		if msg.To[0] != "user@example.com" || msg.Subject != "Your registration code" {
			t.Fatalf("unexpected email %+v", msg)
		}
		if !strings.Contains(msg.TextBody, "482913") || !strings.Contains(msg.HTMLBody, "482913") {
			t.Fatalf("email must carry the code: %+v", msg)
		}
	})

	t.Run("SubjectFollowsPurpose", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)

		subjects := map[string]string{
			"register":          "Your registration code",
			"login":             "Your login code",
			"reset_password":    "Your password reset code",
			"change_identifier": "Confirm your new contact details",
			"something_else":    "Your verification code",
		}

		for purpose, want := range subjects {
			err := uc.ConsumeOTPIssued(ctx, ConsumeOTPIssuedInput{
				Target:  "user@example.com",
				Channel: "email",
				Purpose: purpose,
				Code:    "482913",
			})
			if err != nil {
				t.Fatalf("%s: %v", purpose, err)
			}

			msgs := mailer.messages()
			if got := msgs[len(msgs)-1].Subject; got != want {
				t.Fatalf("%s: expected subject %q, got %q", purpose, want, got)
			}
		}
	})

	t.Run("SMSIsLoggedOnly", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)

		err := uc.ConsumeOTPIssued(ctx, ConsumeOTPIssuedInput{
			Target:  "+989123456789",
			Channel: "sms",
			Purpose: "login",
			Code:    "482913",
		})
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if len(mailer.messages()) != 0 {
			t.Fatalf("sms events must not produce email")
		}
	})

	t.Run("MalformedEventIsDropped", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)

		// Returning nil acknowledges the event so the broker stops retrying.
		err := uc.ConsumeOTPIssued(ctx, ConsumeOTPIssuedInput{
			Target:  "user@example.com",
			Channel: "carrier-pigeon",
			Purpose: "register",
			Code:    "482913",
		})
		if err != nil {
			t.Fatalf("malformed event must be dropped, got %v", err)
		}
		if len(mailer.messages()) != 0 {
			t.Fatalf("malformed event must not produce email")
		}
	})

	t.Run("SendFailurePropagates", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)
		mailer.err = errors.New("smtp down")

		err := uc.ConsumeOTPIssued(ctx, ConsumeOTPIssuedInput{
			Target:  "user@example.com",
			Channel: "email",
			Purpose: "register",
			Code:    "482913",
		})
		if err == nil {
			t.Fatalf("a failed send must be returned for redelivery")
		}
	})
}

func TestConsumePasswordChanged(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsWarningEmail", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)

		err := uc.ConsumePasswordChanged(ctx, ConsumePasswordChangedInput{
			UserID:  7,
			Target:  "user@example.com",
			Channel: "email",
		})
		if err != nil {
			t.Fatalf("consume: %v", err)
		}

		msgs := mailer.messages()
		if len(msgs) != 1 {
			t.Fatalf("expected one email, got %d", len(msgs))
		}
		if msgs[0].Subject != "Your password was changed" {
			t.Fatalf("unexpected subject %q", msgs[0].Subject)
		}
	})

	t.Run("SMSIsLoggedOnly", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)

		err := uc.ConsumePasswordChanged(ctx, ConsumePasswordChangedInput{
			UserID:  7,
			Target:  "+989123456789",
			Channel: "sms",
		})
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if len(mailer.messages()) != 0 {
			t.Fatalf("sms events must not produce email")
		}
	})

	t.Run("MalformedEventIsDropped", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)

		err := uc.ConsumePasswordChanged(ctx, ConsumePasswordChangedInput{
			UserID:  0,
			Target:  "user@example.com",
			Channel: "email",
		})
		if err != nil {
			t.Fatalf("malformed event must be dropped, got %v", err)
		}
		if len(mailer.messages()) != 0 {
			t.Fatalf("malformed event must not produce email")
		}
	})

	t.Run("SendFailurePropagates", func(t *testing.T) {
		uc, mailer := newTestUsecase(t)
		mailer.err = errors.New("smtp down")

		err := uc.ConsumePasswordChanged(ctx, ConsumePasswordChangedInput{
			UserID:  7,
			Target:  "user@example.com",
			Channel: "email",
		})
		if err == nil {
			t.Fatalf("a failed send must be returned for redelivery")
		}
	})
}

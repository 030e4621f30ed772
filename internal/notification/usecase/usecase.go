// Package usecase turns consumed domain events into outbound notifications.
package usecase

import (
	"context"

	"github.com/nubitera/authcore/internal/pkg/config"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/mail"
	"github.com/nubitera/authcore/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Usecase renders and dispatches notifications for consumed events.
type Usecase struct {
	mailer    mailer
	validator validator.Validator
	cfg       config.Config
	ins       instrument.Instrumentation
}

// Dependency carries the collaborators a Usecase needs.
type Dependency struct {
	Mailer     mailer
	Validator  validator.Validator
	Config     config.Config
	Instrument instrument.Instrumentation
}

// New constructs a Usecase.
func New(dep Dependency) *Usecase {
	return &Usecase{
		mailer:    dep.Mailer,
		validator: dep.Validator,
		cfg:       dep.Config,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

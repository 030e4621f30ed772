package auth

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nubitera/authcore/internal/auth/inbound"
	"github.com/nubitera/authcore/internal/auth/outbound/db"
	"github.com/nubitera/authcore/internal/auth/outbound/mq"
	"github.com/nubitera/authcore/internal/auth/usecase"
	"github.com/nubitera/authcore/internal/pkg/clock"
	"github.com/nubitera/authcore/internal/pkg/config"
	"github.com/nubitera/authcore/internal/pkg/goroutine"
	"github.com/nubitera/authcore/internal/pkg/hash"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/jwt"
	"github.com/nubitera/authcore/internal/pkg/messaging"
	"github.com/nubitera/authcore/internal/pkg/otp"
	"github.com/nubitera/authcore/internal/pkg/router"
	"github.com/nubitera/authcore/internal/pkg/session"
	"github.com/nubitera/authcore/internal/pkg/signer"
	"github.com/nubitera/authcore/internal/pkg/uid"
	"github.com/nubitera/authcore/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

const resetTokenSalt = "password-reset-salt"

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	engine := otp.NewEngine(otp.EngineConfig{
		Store:       otp.NewRedisStore(dep.CacheConn),
		Deliverer:   repoMsg,
		Goroutine:   dep.Goroutine,
		CodeLength:  dep.Config.GetInt("modules.auth.otp_code_length"),
		TTL:         dep.Config.GetSecond("modules.auth.otp_ttl_seconds"),
		MaxAttempts: dep.Config.GetInt("modules.auth.otp_max_attempts"),
	})

	resetSigner := signer.NewTimestampSigner(
		dep.Config.GetString("modules.auth.reset_token_secret"),
		resetTokenSalt,
		dep.Clock,
	)

	flowTTL := dep.Config.GetMinute("modules.auth.flow_session_ttl_minutes")
	if flowTTL <= 0 {
		flowTTL = 10 * time.Minute
	}
	flows := session.NewStore(dep.CacheConn, flowTTL)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		OTP:           engine,
		Signer:        resetSigner,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Bcrypt:        dep.Bcrypt,
		HMAC:          dep.HMAC,
		UID:           dep.UID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, flows)

	return nil
}

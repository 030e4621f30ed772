package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nubitera/authcore/internal/pkg/clock"
	"github.com/nubitera/authcore/internal/pkg/config"
	"github.com/nubitera/authcore/internal/pkg/goroutine"
	"github.com/nubitera/authcore/internal/pkg/hash"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/jwt"
	"github.com/nubitera/authcore/internal/pkg/mail"
	"github.com/nubitera/authcore/internal/pkg/messaging"
	"github.com/nubitera/authcore/internal/pkg/router"
	"github.com/nubitera/authcore/internal/pkg/uid"
	"github.com/nubitera/authcore/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	bcrypt    hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

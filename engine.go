package bloombox

import (
	"context"
	"time"

	"github.com/MrEthical07/bloombox/internal/logging"
	"github.com/MrEthical07/bloombox/internal/stores"
	"github.com/MrEthical07/bloombox/jwt"
	"github.com/MrEthical07/bloombox/mail"
	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/password"
	"github.com/MrEthical07/bloombox/revocation"
	"github.com/MrEthical07/bloombox/signedtoken"
	"github.com/MrEthical07/bloombox/users"
)

// Mailer accepts rendered messages for asynchronous delivery. *mail.Queue
// satisfies it.
type Mailer interface {
	Enqueue(ctx context.Context, msg mail.Message) bool
}

type discardMailer struct {
	log logging.Logger
}

func (d discardMailer) Enqueue(ctx context.Context, msg mail.Message) bool {
	d.log.Warn(ctx, "no mailer configured, message discarded", "subject", msg.Subject)
	return false
}

// Engine runs the account flows and guards. Safe for concurrent use.
type Engine struct {
	config    Config
	log       logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	jwt       *jwt.Manager
	hasher    *password.Pool
	dummyHash string
	links     *signedtoken.Codec
	revoked   *revocation.Store
	consumed  *stores.ConsumedLedger
	throttle  throttle
	users     *users.Service
	mailer    Mailer
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Users exposes the directory service.
func (e *Engine) Users() *users.Service {
	return e.users
}

// Ready checks the Redis backend used by the guard.
func (e *Engine) Ready(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.revoked.Ping(ctx); err != nil {
		return mapRevocationErr(err)
	}
	return nil
}

func (e *Engine) observeHash(op string, start time.Time) {
	e.metrics.ObserveHash(op, time.Since(start))
}

func (e *Engine) hashPassword(ctx context.Context, pw string) (string, error) {
	defer e.observeHash("hash", time.Now())
	return e.hasher.Hash(ctx, pw)
}

func (e *Engine) verifyPassword(ctx context.Context, pw, hash string) (bool, error) {
	defer e.observeHash("verify", time.Now())
	return e.hasher.Verify(ctx, pw, hash)
}

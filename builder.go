package bloombox

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/bloombox/internal/logging"
	"github.com/MrEthical07/bloombox/internal/rate"
	"github.com/MrEthical07/bloombox/internal/stores"
	"github.com/MrEthical07/bloombox/jwt"
	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/password"
	"github.com/MrEthical07/bloombox/revocation"
	"github.com/MrEthical07/bloombox/signedtoken"
	"github.com/MrEthical07/bloombox/users"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder can be used once.
type Builder struct {
	config   Config
	redis    redis.UniversalClient
	userRepo users.Repository
	mailer   Mailer
	log      logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the blocklist, the throttles and the
// link ledger. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserRepository sets the directory storage. Required.
func (b *Builder) WithUserRepository(repo users.Repository) *Builder {
	b.userRepo = repo
	return b
}

// WithMailer sets where account emails go. Without one, emails are logged
// and discarded.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

func (b *Builder) WithLogger(log logging.Logger) *Builder {
	b.log = log
	return b
}

func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.metrics = m
	return b
}

// WithClock overrides the time source for token issue and validation.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the Engine. It hashes one
// throwaway password to prime the dummy hash used for unknown-email logins.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userRepo == nil {
		return nil, errors.New("user repository required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = logging.Nop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	engine := &Engine{
		config:  cfg,
		log:     log,
		metrics: b.metrics,
		now:     now,
	}

	jm, err := jwt.NewManager(jwt.Config{
		Secret:        cloneBytes(cfg.JWT.Secret),
		SigningMethod: jwt.SigningMethod(strings.ToUpper(cfg.JWT.SigningMethod)),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Leeway:        cfg.JWT.Leeway,
	}, log.With("component", "jwt"), jwt.WithClock(now))
	if err != nil {
		return nil, err
	}
	engine.jwt = jm

	hasher, err := password.NewArgon2(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
	})
	if err != nil {
		return nil, err
	}
	engine.hasher = password.NewPool(hasher, cfg.Password.Workers)

	dummy, err := hasher.Hash("bloombox-dummy-password")
	if err != nil {
		return nil, err
	}
	engine.dummyHash = dummy

	engine.links = signedtoken.New(string(cfg.JWT.Secret), cfg.Links.Salt, signedtoken.WithClock(now))
	engine.revoked = revocation.NewStore(b.redis, cfg.Revocation.RedisPrefix, cfg.Revocation.FallbackTTL)
	engine.consumed = stores.NewConsumedLedger(b.redis, cfg.Links.ConsumedPrefix)
	engine.throttle = newThrottle(rate.New(b.redis), cfg.Security)
	engine.users = users.NewService(b.userRepo)

	engine.mailer = b.mailer
	if engine.mailer == nil {
		engine.mailer = discardMailer{log: log}
	}

	b.built = true

	return engine, nil
}

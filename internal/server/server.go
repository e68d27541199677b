package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/bloombox"
	"github.com/MrEthical07/bloombox/internal/logging"
	"github.com/MrEthical07/bloombox/metrics"
	"github.com/gorilla/mux"
)

// Options tunes the HTTP layer.
type Options struct {
	Addr            string
	TrustProxy      bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxBodyBytes caps JSON request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
}

// Server serves the bloombox HTTP API.
type Server struct {
	engine  *bloombox.Engine
	log     logging.Logger
	metrics *metrics.Metrics
	opts    Options
	router  *mux.Router
	http    *http.Server
}

// New builds the router. m may be nil.
func New(engine *bloombox.Engine, log logging.Logger, m *metrics.Metrics, opts Options) *Server {
	if log == nil {
		log = logging.Nop()
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		engine:  engine,
		log:     log.With("component", "http"),
		metrics: m,
		opts:    opts,
	}
	s.router = s.newRouter()
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: opts.ReadTimeout,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s
}

// Handler returns the root handler: CORS, then the request middleware, then
// the router.
func (s *Server) Handler() http.Handler {
	return corsHandler(s.wrap(s.router))
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.opts.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	s.log.Info(shutdownCtx, "http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

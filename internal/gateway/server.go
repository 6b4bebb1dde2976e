// Package gateway serves the faucet's JSON transfer protocol over HTTP in
// front of a Backend, for local development against the ledger simulator.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ledgerfaucet/internal/ledger"
	"ledgerfaucet/internal/logging"
	"ledgerfaucet/internal/remote"
	"ledgerfaucet/internal/token"
)

// Backend performs transfers for the gateway.
type Backend interface {
	Transfer(ctx context.Context, tt token.Type, identifier string) (ledger.Receipt, error)
	AccountIdentifier() string
}

// Server is the gateway HTTP server.
type Server struct {
	app      *fiber.App
	addr     string
	backend  Backend
	registry *prometheus.Registry
	metrics  *metrics
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry sets the registry metrics are registered with and served from.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithLogger enables per-request access logging.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a server listening on addr once Run is called.
func NewServer(addr string, backend Backend, opts ...Option) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
			DisableStartupMessage: true,
		}),
		addr:    addr,
		backend: backend,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)

	if s.logger != nil {
		s.app.Use(fiberzap.New(fiberzap.Config{Logger: s.logger}))
	}
	s.mapRoutes()
	return s
}

// App exposes the fiber app, mainly for App.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) mapRoutes() {
	s.app.Get("/readiness", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	errLog := s.logger
	if errLog == nil {
		errLog = logging.Get(logging.CategoryDevnet).Zap()
	}
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(errLog.Named("metrics")),
		ErrorHandling: promhttp.ContinueOnError,
	})))

	s.app.Post(remote.PathTransferLegacy, s.handleLegacy)
	s.app.Post(remote.PathTransferStandard, s.handleStandard)
	s.app.Get(remote.PathAccount, s.handleAccount)
}

func (s *Server) handleLegacy(c *fiber.Ctx) error {
	var req remote.LegacyTransferRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return s.transfer(c, token.Legacy, req.To)
}

func (s *Server) handleStandard(c *fiber.Ctx) error {
	var req remote.StandardTransferRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return s.transfer(c, token.Standard, req.Owner)
}

func (s *Server) transfer(c *fiber.Ctx, tt token.Type, identifier string) error {
	start := time.Now()
	receipt, err := s.backend.Transfer(c.UserContext(), tt, identifier)
	s.metrics.duration.WithLabelValues(tt.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		status, outcome := classify(err)
		s.metrics.transfers.WithLabelValues(tt.String(), outcome).Inc()
		logging.Get(logging.CategoryDevnet).Warn("%s transfer to %q failed: %v", tt, identifier, err)

		msg := err.Error()
		var rej *remote.RejectedError
		if errors.As(err, &rej) {
			msg = rej.Message
		}
		return c.Status(status).JSON(remote.ErrorResponse{Error: msg})
	}

	s.metrics.transfers.WithLabelValues(tt.String(), outcomeSuccess).Inc()
	return c.Status(fiber.StatusOK).JSON(remote.TransferResponse{BlockIndex: receipt.BlockIndex})
}

func (s *Server) handleAccount(c *fiber.Ctx) error {
	return c.JSON(remote.AccountResponse{AccountIdentifier: s.backend.AccountIdentifier()})
}

func classify(err error) (int, string) {
	var rej *remote.RejectedError
	switch {
	case errors.As(err, &rej) && rej.Status >= 400:
		return rej.Status, outcomeRejected
	case errors.Is(err, remote.ErrRejected):
		return fiber.StatusUnprocessableEntity, outcomeRejected
	case errors.Is(err, remote.ErrTransport):
		return fiber.StatusServiceUnavailable, outcomeError
	default:
		return fiber.StatusInternalServerError, outcomeError
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(remote.ErrorResponse{Error: msg})
}

// Run listens on the configured address until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Devnet("gateway listening on %s", ln.Addr())
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.Stop()
		return <-errCh
	}
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if err := s.app.ShutdownWithTimeout(time.Second); err != nil {
		logging.Get(logging.CategoryDevnet).Debug("gateway shutdown: %v", err)
	}
	logging.Devnet("gateway stopped")
}

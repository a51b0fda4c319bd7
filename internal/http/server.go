package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"mywallet/internal/bucket"
	"mywallet/internal/core"
	"mywallet/internal/filter"
	"mywallet/internal/log"
	"mywallet/internal/middleware/ratelimit"
	"mywallet/internal/middleware/security"
	"mywallet/internal/middleware/trace"
	"mywallet/internal/ports"
)

// TransactionQueries is the read side served by the API.
type TransactionQueries interface {
	ListByOwner(ctx context.Context, q core.OwnerQuery) (*core.Result[bucket.Page], error)
	ListAll(ctx context.Context, q core.PageQuery) (*core.Result[core.Page[core.TransactionSummary]], error)
	GetByID(ctx context.Context, id int64) (*core.Result[core.TransactionSummary], error)
	ExportFiltered(ctx context.Context, c filter.Criteria) ([]core.TransactionSummary, error)
}

// TransactionWrites is the write side served by the API.
type TransactionWrites interface {
	Add(ctx context.Context, req core.TransactionRequest) (*core.Result[core.Confirmation], error)
	Update(ctx context.Context, id int64, req core.TransactionRequest) (*core.Result[core.Confirmation], error)
	Delete(ctx context.Context, id int64) (*core.Result[core.Confirmation], error)
}

// Options wires the server's collaborators.
type Options struct {
	Queries TransactionQueries
	Writes  TransactionWrites
	// Alerts receives manually triggered test alerts.
	Alerts ports.AlertPublisher
	// Hub serves websocket alert subscriptions; nil disables /ws/alerts.
	Hub    http.Handler
	Logger *log.Logger
	// WriteRateLimit caps writes per client per minute; 0 disables it.
	WriteRateLimit int
	TrustedProxies []string
}

type Server struct {
	http.Server
	queries TransactionQueries
	writes  TransactionWrites
	alerts  ports.AlertPublisher
	logger  *log.Logger

	ipResolver      *security.IPResolver
	limiter         *ratelimit.Limiter
	traceMiddleware *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	resolver, err := security.NewIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		queries:         opts.Queries,
		writes:          opts.Writes,
		alerts:          opts.Alerts,
		logger:          logger,
		ipResolver:      resolver,
		traceMiddleware: trace.NewMiddleware(resolver.ExtractClientIP, logger),
		started:         time.Now(),
	}

	write := func(h http.HandlerFunc) http.Handler { return h }
	if opts.WriteRateLimit > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.WriteRateLimit})
		limit := s.limiter.Middleware(resolver.ExtractClientIP, s.handleRateLimited)
		write = func(h http.HandlerFunc) http.Handler { return limit(h) }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/transactions", s.handleListByOwner)
	mux.HandleFunc("GET /api/transactions/all", s.handleListAll)
	mux.HandleFunc("GET /api/transactions/export", s.handleExport)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGet)
	mux.Handle("POST /api/transactions", write(s.handleCreate))
	mux.Handle("PUT /api/transactions/{id}", write(s.handleUpdate))
	mux.Handle("DELETE /api/transactions/{id}", write(s.handleDelete))

	mux.HandleFunc("POST /api/notify/test", s.handleNotifyTest)
	if opts.Hub != nil {
		mux.Handle("GET /ws/alerts", opts.Hub)
	}

	var handler http.Handler = mux
	handler = log.RequestIDMiddleware(trace.FromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

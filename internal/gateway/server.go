package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pixil98/hamlet/internal/game"
	"github.com/pixil98/hamlet/internal/messaging"
)

const shutdownTimeout = 5 * time.Second

// Server accepts browser sessions over websockets and exposes a small
// read-only HTTP API next to them.
type Server struct {
	loop  *game.Loop
	world *game.World
	bus   messaging.Bus
	pub   *messaging.Publisher

	host      string
	port      int
	staticDir string
	origins   []string
	newID     func() string
	upgrader  websocket.Upgrader

	addrMu sync.Mutex
	addr   net.Addr
	ready  chan struct{}
}

type ServerOpt func(*Server)

func WithHost(host string) ServerOpt {
	return func(s *Server) {
		s.host = host
	}
}

// WithPort sets the listen port. Zero picks a free port.
func WithPort(port int) ServerOpt {
	return func(s *Server) {
		s.port = port
	}
}

// WithStaticDir serves a client bundle from dir, falling back to
// index.html for unknown paths.
func WithStaticDir(dir string) ServerOpt {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// WithAllowedOrigins restricts CORS and websocket origins. An empty list
// or "*" allows any origin.
func WithAllowedOrigins(origins ...string) ServerOpt {
	return func(s *Server) {
		s.origins = origins
	}
}

func WithSessionIDGenerator(fn func() string) ServerOpt {
	return func(s *Server) {
		s.newID = fn
	}
}

func NewServer(loop *game.Loop, world *game.World, bus messaging.Bus, pub *messaging.Publisher, opts ...ServerOpt) *Server {
	s := &Server{
		loop:  loop,
		world: world,
		bus:   bus,
		pub:   pub,
		newID: uuid.NewString,
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler builds the HTTP routes.
func (s *Server) Handler(connCtx context.Context, wg *sync.WaitGroup) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(sub chi.Router) {
		sub.Get("/world", s.handleWorld)
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		wg.Add(1)
		defer wg.Done()
		s.handleSocket(connCtx, w, r)
	})

	if s.staticDir != "" {
		r.Handle("/*", staticFileServer(s.staticDir, "index.html"))
	}

	return r
}

func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", s.port, err)
	}

	s.addrMu.Lock()
	s.addr = listener.Addr()
	s.addrMu.Unlock()
	close(s.ready)

	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()
	var wg sync.WaitGroup

	srv := &http.Server{
		Handler:           s.Handler(connCtx, &wg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	slog.InfoContext(ctx, "listening for websocket sessions", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		cancelConns()
		wg.Wait()
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	cancelConns()
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// Addr waits until the server is listening and returns its address.
func (s *Server) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	return s.addr, nil
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	var stats game.Stats
	err := s.loop.Do(r.Context(), func(context.Context) {
		stats = s.world.Stats()
	})
	if err != nil {
		slog.WarnContext(r.Context(), "reading world stats", "error", err)
		http.Error(w, "world unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(stats)
	if err != nil {
		slog.WarnContext(r.Context(), "writing world stats", "error", err)
	}
}

func (s *Server) allowedOrigins() []string {
	if len(s.origins) == 0 {
		return []string{"*"}
	}
	return s.origins
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.allowedOrigins() {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

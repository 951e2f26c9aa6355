// Package server implements the cid daemon: the long-lived process that
// answers analysis queries for one project over the resolved endpoint.
//
// The server owns the shared filesystem markers (PID record, status
// marker, socket file) for its lifetime and removes them on shutdown.
package server

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"cid/internal/config"
	"cid/internal/endpoint"
	"cid/internal/lifecycle"
	"cid/internal/logging"
	"cid/internal/paths"
	"cid/internal/protocol"
	"cid/internal/status"
	"cid/internal/version"
)

// Server is the daemon for one project.
type Server struct {
	projectDir string
	cfg        config.Config
	tuning     config.Tuning
	logger     *logging.Logger

	analyzer Analyzer
	cache    *WarmCache
	activity *ActivityStore

	listener net.Listener
	ep       endpoint.Endpoint

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startedAt     time.Time
	queriesServed atomic.Int64
	eventsStored  atomic.Int64
	lastQuery     atomic.Int64 // unix nanos
}

// New creates a server with the baseline analyzer.
func New(projectDir string, cfg config.Config, tuning config.Tuning, logger *logging.Logger) (*Server, error) {
	canonical, err := paths.CanonicalProject(projectDir)
	if err != nil {
		return nil, err
	}
	cache := OpenWarmCache(canonical)
	return NewWithAnalyzer(canonical, cfg, tuning, logger, newMemoryAnalyzer(canonical, cache), cache)
}

// NewWithAnalyzer creates a server around a specific analyzer. Engines
// and tests plug in here.
func NewWithAnalyzer(projectDir string, cfg config.Config, tuning config.Tuning, logger *logging.Logger, analyzer Analyzer, cache *WarmCache) (*Server, error) {
	canonical, err := paths.CanonicalProject(projectDir)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		projectDir: canonical,
		cfg:        cfg,
		tuning:     tuning,
		logger:     logger,
		analyzer:   analyzer,
		cache:      cache,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start binds the endpoint, runs analyzer warmup, and begins serving.
// The status marker reads "indexing" until warmup completes.
func (s *Server) Start() error {
	if _, err := paths.EnsureStateDir(s.projectDir); err != nil {
		return err
	}
	if err := status.Write(s.projectDir, status.Indexing); err != nil {
		return err
	}
	if err := lifecycle.WritePIDRecord(s.projectDir); err != nil {
		return err
	}

	ep, err := endpoint.Resolve(s.projectDir)
	if err != nil {
		return err
	}
	s.ep = ep
	if ep.Network == endpoint.Unix {
		// A previous daemon that died hard leaves its socket file behind;
		// we own the endpoint now.
		_ = os.Remove(ep.Address)
	}
	listener, err := net.Listen(string(ep.Network), ep.Address)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startedAt = time.Now()
	s.lastQuery.Store(time.Now().UnixNano())

	if store, err := OpenActivityStore(mustActivityPath(s.projectDir)); err == nil {
		s.activity = store
		if s.tuning.ActivityRetentionDays > 0 {
			_ = store.Prune(time.Duration(s.tuning.ActivityRetentionDays) * 24 * time.Hour)
		}
	} else {
		s.logger.Warn("activity store unavailable", map[string]interface{}{"error": err.Error()})
	}

	s.wg.Add(1)
	go s.acceptLoop()

	s.wg.Add(1)
	go s.warmup()

	if s.tuning.IdleShutdownMinutes > 0 {
		s.wg.Add(1)
		go s.idleWatch()
	}

	s.logger.Info("daemon started", map[string]interface{}{
		"pid":      os.Getpid(),
		"endpoint": ep.String(),
		"project":  s.projectDir,
		"version":  version.Version,
	})
	return nil
}

func (s *Server) warmup() {
	defer s.wg.Done()
	if err := s.analyzer.Warmup(s.ctx); err != nil {
		s.logger.Warn("warmup failed", map[string]interface{}{"error": err.Error()})
	}
	if s.ctx.Err() != nil {
		return
	}
	if err := status.Write(s.projectDir, status.Ready); err != nil {
		s.logger.Warn("status write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			s.logger.Warn("accept failed", map[string]interface{}{"error": err.Error()})
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn handles one connection: any number of query lines, one
// response line each, in order.
func (s *Server) serveConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	reader := protocol.NewReader(conn)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		q, err := reader.ReadQuery()
		if err != nil {
			return
		}
		s.queriesServed.Add(1)
		s.lastQuery.Store(time.Now().UnixNano())
		resp := s.dispatch(q)
		if err := protocol.WriteMessage(conn, resp); err != nil {
			return
		}
	}
}

func (s *Server) idleWatch() {
	defer s.wg.Done()
	idle := time.Duration(s.tuning.IdleShutdownMinutes) * time.Minute
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			last := time.Unix(0, s.lastQuery.Load())
			if time.Since(last) > idle {
				s.logger.Info("idle shutdown", map[string]interface{}{"idle": idle.String()})
				s.cancel()
				return
			}
		}
	}
}

// Wait blocks until a shutdown signal or internal cancellation.
func (s *Server) Wait() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		s.logger.Info("received signal", map[string]interface{}{"signal": sig.String()})
	case <-s.ctx.Done():
	}
}

// Stop tears down the listener and removes every shared marker the
// daemon owns.
func (s *Server) Stop() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()

	if s.tuning.WarmCache {
		if err := s.cache.Save(); err != nil {
			s.logger.Warn("warm cache save failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.activity != nil {
		_ = s.activity.Close()
	}
	_ = status.Clear(s.projectDir)
	_ = lifecycle.RemovePIDRecord(s.projectDir)
	if s.ep.Network == endpoint.Unix {
		_ = os.Remove(s.ep.Address)
	}
	s.logger.Info("daemon stopped", nil)
}

// Endpoint returns the bound endpoint (valid after Start).
func (s *Server) Endpoint() endpoint.Endpoint {
	return s.ep
}

func mustActivityPath(projectDir string) string {
	path, err := paths.ActivityDBPath(projectDir)
	if err != nil {
		return ""
	}
	return path
}

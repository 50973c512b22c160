// Package remote proxies the times.Store contract over JSON-RPC.
// Server hosts any Store; Dial returns a Store that forwards every
// operation to a Server.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"

	"times-go/internal/times"
)

// DefaultMaxConnections is used when no connection limit is configured.
const DefaultMaxConnections = 16

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(l times.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithMaxConnections limits the number of connections served at once.
// Connections over the limit are closed on accept.
func WithMaxConnections(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxConnections = n
		}
	}
}

// Server serves a times.Store to remote clients.
type Server struct {
	rpc            *rpc.Server
	logger         times.Logger
	maxConnections int

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewServer registers store under ServiceName.
func NewServer(store times.Store, opts ...ServerOption) (*Server, error) {
	s := &Server{
		rpc:            rpc.NewServer(),
		logger:         times.NewNopLogger(),
		maxConnections: DefaultMaxConnections,
		conns:          make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	svc := &service{ctx: context.Background(), store: store}
	if err := s.rpc.RegisterName(ServiceName, svc); err != nil {
		return nil, fmt.Errorf("registering %s service: %w", ServiceName, err)
	}
	return s, nil
}

// Serve accepts connections on ln until ctx is cancelled or ln fails.
// Temporary accept errors are retried with backoff. On cancellation the
// listener and every open connection are closed and Serve returns nil once
// all connections have finished; any other accept error does the same and
// is returned.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("serving store", "addr", ln.Addr().String(), "max_connections", s.maxConnections)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
			s.closeAll()
		case <-stop:
		}
	}()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				s.logger.Info("server stopped", "addr", ln.Addr().String())
				return nil
			}
			if isTemporary(err) {
				delay = nextDelay(delay)
				s.logger.Warn("accept failed, retrying", "error", err, "delay", delay)
				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					continue
				}
			}

			ln.Close()
			s.closeAll()
			s.wg.Wait()
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("server stopped", "addr", ln.Addr().String(), "error", err)
			return fmt.Errorf("accepting connection: %w", err)
		}
		delay = 0

		if !s.track(conn) {
			s.logger.Warn("connection limit reached, dropping client", "remote", conn.RemoteAddr().String())
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.logger.Debug("client connected", "remote", conn.RemoteAddr().String())
			s.rpc.ServeCodec(jsonrpc.NewServerCodec(conn))
			s.logger.Debug("client disconnected", "remote", conn.RemoteAddr().String())
		}()
	}
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	if d *= 2; d > maxAcceptDelay {
		return maxAcceptDelay
	}
	return d
}

// isTemporary reports whether err is an accept error worth retrying, such
// as EMFILE or ECONNABORTED.
func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}

// track registers conn unless the server is shutting down or the
// connection limit has been reached.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.conns) >= s.maxConnections {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
	conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
}

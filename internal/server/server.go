// Package server establishes the responder's stream: it listens, accepts a
// single peer and hands back a chat.Stream for it.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/omochice/framechat/internal/chat"
	"github.com/omochice/framechat/internal/transport/tcp"
	"github.com/omochice/framechat/internal/transport/ws"
	"github.com/rs/zerolog"
)

// Mode selects which transports the server accepts.
type Mode string

const (
	// ModeAuto accepts raw TCP and WebSocket upgrades on the same port.
	ModeAuto      Mode = "auto"
	ModeTCP       Mode = "tcp"
	ModeWebSocket Mode = "ws"
)

// Server accepts exactly one peer.
type Server struct {
	address  string
	mode     Mode
	listener net.Listener
	logger   zerolog.Logger
}

// New creates a Server listening on address once Listen is called.
func New(address string, mode Mode, logger zerolog.Logger) *Server {
	return &Server{
		address: address,
		mode:    mode,
		logger:  logger,
	}
}

// Listen binds the listening socket.
func (s *Server) Listen() error {
	switch s.mode {
	case ModeAuto, ModeTCP, ModeWebSocket:
	default:
		return fmt.Errorf("unsupported transport mode %q", s.mode)
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	s.logger.Info().
		Str("addr", listener.Addr().String()).
		Str("mode", string(s.mode)).
		Msg("listening for connection")
	return nil
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Accept waits for the first peer, stops listening and returns the peer's
// stream. Cancelling ctx aborts the wait.
func (s *Server) Accept(ctx context.Context) (chat.Stream, error) {
	if s.listener == nil {
		return nil, errors.New("server is not listening")
	}
	defer s.listener.Close()

	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()
	})
	conn, err := s.listener.Accept()
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}

	stream, kind, err := s.wrap(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	s.logger.Info().
		Str("remote", stream.RemoteAddr()).
		Stringer("transport", kind).
		Msg("client connected")
	return stream, nil
}

// Close stops listening.
func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) wrap(conn net.Conn) (chat.Stream, protocolType, error) {
	switch s.mode {
	case ModeTCP:
		return tcp.NewConn(conn), protocolTCP, nil
	case ModeWebSocket:
		wsConn, err := ws.Upgrade(conn, bufio.NewReader(conn))
		if err != nil {
			return nil, protocolHTTP, err
		}
		return wsConn, protocolHTTP, nil
	}

	kind, reader, err := detectProtocol(conn)
	if err != nil {
		return nil, kind, fmt.Errorf("failed to detect protocol: %w", err)
	}
	if kind == protocolHTTP {
		wsConn, err := ws.Upgrade(conn, reader)
		if err != nil {
			return nil, kind, err
		}
		return wsConn, kind, nil
	}
	return tcp.NewConnWithReader(conn, reader), kind, nil
}

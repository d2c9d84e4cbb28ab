// Package ws provides the server side WebSocket stream adapter for
// conversations.
//
// Each binary WebSocket message carries an arbitrary run of stream bytes, so
// message boundaries carry no meaning and framing happens one layer up.
package ws

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Conn adapts an upgraded server side WebSocket connection to chat.Stream.
type Conn struct {
	conn    net.Conn
	rw      io.ReadWriter
	pending []byte
}

// Upgrade performs the WebSocket handshake on conn. reader must hold any
// bytes already peeked from conn; it keeps serving reads afterwards.
func Upgrade(conn net.Conn, reader *bufio.Reader) (*Conn, error) {
	rw := struct {
		io.Reader
		io.Writer
	}{reader, conn}

	if _, err := ws.Upgrade(rw); err != nil {
		return nil, fmt.Errorf("failed to upgrade websocket: %w", err)
	}
	return &Conn{conn: conn, rw: rw}, nil
}

// Read implements io.Reader. A close frame from the client reads as io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		data, err := wsutil.ReadClientBinary(c.rw)
		if err != nil {
			var closed wsutil.ClosedError
			if errors.As(err, &closed) {
				return 0, io.EOF
			}
			return 0, err
		}
		c.pending = data
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write implements io.Writer. p is sent as one binary message.
func (c *Conn) Write(p []byte) (int, error) {
	if err := wsutil.WriteServerBinary(c.conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a normal closure frame and closes the connection.
func (c *Conn) Close() error {
	_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
	return c.conn.Close()
}

// RemoteAddr implements chat.Stream.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

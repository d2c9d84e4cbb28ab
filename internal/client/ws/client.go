// Package ws dials the responder over WebSocket.
package ws

import (
	"context"
	"fmt"
	"net"
	"strings"

	"nhooyr.io/websocket"
)

// readLimit lets a single WebSocket message carry the largest payload the
// length prefix can describe.
const readLimit = 1 << 32

// Conn is a WebSocket connection exposed as a byte stream.
type Conn struct {
	conn net.Conn
	url  string
}

// Dial connects to address. A bare host:port is dialed as ws://host:port/.
func Dial(ctx context.Context, address string) (*Conn, error) {
	url := URL(address)
	wsConn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	wsConn.SetReadLimit(readLimit)

	// The stream outlives the dial context; conversations have no deadline.
	return &Conn{
		conn: websocket.NetConn(context.Background(), wsConn, websocket.MessageBinary),
		url:  url,
	}, nil
}

// URL normalizes address into a WebSocket URL.
func URL(address string) string {
	if strings.HasPrefix(address, "ws://") || strings.HasPrefix(address, "wss://") {
		return address
	}
	return "ws://" + address + "/"
}

// Read implements io.Reader. A normal closure from the server reads as io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

// Write implements io.Writer. p is sent as one binary message.
func (c *Conn) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

// Close performs the WebSocket closing handshake.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Stream.
func (c *Conn) RemoteAddr() string {
	return c.url
}

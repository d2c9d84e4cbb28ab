// Package tcp provides the TCP stream adapter for conversations.
package tcp

import (
	"bufio"
	"io"
	"net"
)

// Conn adapts net.Conn to the chat.Stream interface.
type Conn struct {
	conn   net.Conn
	reader io.Reader
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, reader: conn}
}

// NewConnWithReader wraps a net.Conn whose first bytes were already peeked
// through reader. Reads go through reader so no peeked byte is lost.
func NewConnWithReader(conn net.Conn, reader *bufio.Reader) *Conn {
	return &Conn{conn: conn, reader: reader}
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

// Write implements io.Writer.
func (c *Conn) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

// Close implements chat.Stream.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Stream.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

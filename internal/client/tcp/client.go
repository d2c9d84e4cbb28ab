// Package tcp dials the responder over plain TCP.
package tcp

import (
	"context"
	"fmt"
	"net"

	"github.com/omochice/framechat/internal/transport/tcp"
)

// Dial connects to address and returns the stream.
func Dial(ctx context.Context, address string) (*tcp.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return tcp.NewConn(conn), nil
}

// Package client establishes the initiator's stream to a responder.
package client

import (
	"context"
	"fmt"

	"github.com/omochice/framechat/internal/chat"
	"github.com/omochice/framechat/internal/client/tcp"
	"github.com/omochice/framechat/internal/client/ws"
)

// Transport names accepted by Dial.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// Dial connects to address over the named transport.
func Dial(ctx context.Context, transport, address string) (chat.Stream, error) {
	switch transport {
	case TransportTCP, "":
		return tcp.Dial(ctx, address)
	case TransportWebSocket:
		return ws.Dial(ctx, address)
	default:
		return nil, fmt.Errorf("unsupported transport %q", transport)
	}
}

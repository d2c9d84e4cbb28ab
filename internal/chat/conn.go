// Package chat provides the conversation logic shared by all transports.
package chat

import "io"

// Stream abstracts the bidirectional byte stream a conversation runs on.
// Transports (TCP, WebSocket) adapt their connections to this interface so
// the conversation never sees how the stream was obtained.
type Stream interface {
	io.ReadWriteCloser

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}

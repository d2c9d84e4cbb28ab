package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrPeerClosed is returned when the remote side closes the stream in an
	// orderly fashion while more bytes were still expected.
	ErrPeerClosed = errors.New("protocol: peer closed connection")

	// ErrMessageTooLong is returned by SendMessage when a message cannot be
	// described by the 32-bit length prefix. Nothing is written in that case.
	ErrMessageTooLong = errors.New("protocol: message exceeds 32-bit length")

	// ErrFrameTooLarge is returned by ReceiveMessageLimit when the peer declares
	// a payload longer than the configured limit.
	ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum size")

	errInvalidWrite = errors.New("invalid write result")
)

// TransportError reports an I/O failure of the underlying stream.
// The stream must be considered unusable afterwards.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("protocol: transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

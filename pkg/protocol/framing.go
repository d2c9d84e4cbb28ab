// Package protocol implements the length-prefixed framing used by framechat.
//
// Every message travels as a frame:
//
//	[4 bytes] payload length (big-endian uint32)
//	[N bytes] payload
//
// There is no magic number, version byte, terminator or checksum.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// LengthPrefixSize is the size of the frame header in bytes.
	LengthPrefixSize = 4

	// MaxMessageLength is the largest payload the length prefix can describe.
	MaxMessageLength = math.MaxUint32
)

// EncodeLength returns the network byte order representation of n.
func EncodeLength(n uint32) [LengthPrefixSize]byte {
	var b [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(b[:], n)
	return b
}

// DecodeLength parses a network byte order length prefix.
func DecodeLength(b [LengthPrefixSize]byte) uint32 {
	return binary.BigEndian.Uint32(b[:])
}

// SendMessage writes msg to w as a single frame.
func SendMessage(w io.Writer, msg []byte) error {
	length, err := messageLength(len(msg))
	if err != nil {
		return err
	}

	prefix := EncodeLength(length)
	if err := WriteExact(w, prefix[:]); err != nil {
		return err
	}
	return WriteExact(w, msg)
}

// ReceiveMessage reads one frame from r and returns its payload.
// The declared length is trusted; see ReceiveMessageLimit for a bounded read.
func ReceiveMessage(r io.Reader) (Message, error) {
	return ReceiveMessageLimit(r, 0)
}

// ReceiveMessageLimit is like ReceiveMessage but rejects frames whose declared
// length exceeds limit with ErrFrameTooLarge. A limit of zero disables the check.
func ReceiveMessageLimit(r io.Reader, limit uint32) (Message, error) {
	raw, err := ReadExact(r, LengthPrefixSize)
	if err != nil {
		return nil, err
	}

	length := DecodeLength([LengthPrefixSize]byte(raw))
	if limit > 0 && length > limit {
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d", ErrFrameTooLarge, length, limit)
	}

	payload, err := ReadExact(r, int(length))
	if err != nil {
		return nil, err
	}
	return Message(payload), nil
}

func messageLength(n int) (uint32, error) {
	if uint64(n) > MaxMessageLength {
		return 0, fmt.Errorf("%w: %d bytes", ErrMessageTooLong, n)
	}
	return uint32(n), nil
}

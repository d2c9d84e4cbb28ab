package protocol

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

// readChunk bounds how far the read buffer grows ahead of received data.
const readChunk = 64 << 10

// ReadExact reads exactly n bytes from r.
//
// Short reads are accumulated until n bytes are available. An orderly close
// (io.EOF) before that point yields ErrPeerClosed; any other failure is
// returned as a *TransportError. A request for zero bytes does not touch r.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("protocol: invalid read length %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, 0, min(n, readChunk))
	for {
		if len(buf) == cap(buf) {
			buf = slices.Grow(buf, min(n-len(buf), readChunk))
		}
		m, err := r.Read(buf[len(buf):min(cap(buf), n)])
		buf = buf[:len(buf)+m]
		if len(buf) == n {
			return buf, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w after %d of %d bytes", ErrPeerClosed, len(buf), n)
			}
			return nil, &TransportError{Op: "read", Err: err}
		}
	}
}

// WriteExact writes all of p to w, looping over short writes.
// Any failure is returned as a *TransportError.
func WriteExact(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return &TransportError{Op: "write", Err: err}
		}
		if n < 0 || n > len(p) {
			return &TransportError{Op: "write", Err: errInvalidWrite}
		}
		if n == 0 {
			return &TransportError{Op: "write", Err: io.ErrShortWrite}
		}
		p = p[n:]
	}
	return nil
}

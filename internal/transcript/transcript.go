// Package transcript records the messages of a conversation to a file.
//
// A transcript is a sequence of frames in the chat wire format. Each frame
// payload is one protobuf-encoded record:
//
//	1: session id   (string)
//	2: direction    (varint, 1 sent, 2 received)
//	3: payload      (bytes)
//	4: unix nanos   (varint)
//
// Readers skip fields they do not know.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/omochice/framechat/pkg/protocol"
	"google.golang.org/protobuf/encoding/protowire"
)

// Direction tells whether a payload was sent or received by the recorder.
type Direction uint8

const (
	DirectionUnknown Direction = iota
	Sent
	Received
)

func (d Direction) String() string {
	switch d {
	case Sent:
		return "sent"
	case Received:
		return "received"
	default:
		return "unknown"
	}
}

const (
	fieldSession   protowire.Number = 1
	fieldDirection protowire.Number = 2
	fieldPayload   protowire.Number = 3
	fieldTime      protowire.Number = 4
)

// Entry is one recorded message.
type Entry struct {
	SessionID string
	Direction Direction
	Payload   []byte
	Time      time.Time
}

// Writer appends entries for a single session.
type Writer struct {
	w         io.Writer
	sessionID string
	now       func() time.Time
}

// NewWriter returns a Writer tagging every entry with sessionID.
func NewWriter(w io.Writer, sessionID string) *Writer {
	return &Writer{w: w, sessionID: sessionID, now: time.Now}
}

// RecordSent implements chat.Recorder.
func (w *Writer) RecordSent(payload []byte) error {
	return w.write(Sent, payload)
}

// RecordReceived implements chat.Recorder.
func (w *Writer) RecordReceived(payload []byte) error {
	return w.write(Received, payload)
}

func (w *Writer) write(dir Direction, payload []byte) error {
	rec := Marshal(Entry{
		SessionID: w.sessionID,
		Direction: dir,
		Payload:   payload,
		Time:      w.now(),
	})
	if err := protocol.SendMessage(w.w, rec); err != nil {
		return fmt.Errorf("failed to write transcript entry: %w", err)
	}
	return nil
}

// Marshal encodes e as a record.
func Marshal(e Entry) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSession, protowire.BytesType)
	b = protowire.AppendString(b, e.SessionID)
	b = protowire.AppendTag(b, fieldDirection, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Direction))
	b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Payload)
	b = protowire.AppendTag(b, fieldTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Time.UnixNano()))
	return b
}

// ErrMalformed is returned for a record that cannot be decoded.
var ErrMalformed = errors.New("transcript: malformed record")

// Unmarshal decodes a record produced by Marshal.
func Unmarshal(b []byte) (Entry, error) {
	var e Entry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Entry{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldSession && typ == protowire.BytesType:
			var v string
			v, n = protowire.ConsumeString(b)
			e.SessionID = v
		case num == fieldDirection && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			e.Direction = Direction(v)
		case num == fieldPayload && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			e.Payload = append([]byte{}, v...)
		case num == fieldTime && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			e.Time = time.Unix(0, int64(v))
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return Entry{}, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return e, nil
}

// Reader iterates over the entries of a transcript.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next entry. It returns io.EOF after the last complete
// entry and an error wrapping protocol.ErrPeerClosed if the file ends inside
// an entry.
func (r *Reader) Next() (Entry, error) {
	if _, err := r.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("failed to read transcript: %w", err)
	}

	msg, err := protocol.ReceiveMessage(r.r)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read transcript: %w", err)
	}
	return Unmarshal(msg)
}

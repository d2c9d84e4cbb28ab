package chat_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/omochice/framechat/pkg/protocol"
)

// scriptedStream plays back frames from a peer and records everything the
// conversation writes. ops keeps the order of Read ('R') and Write ('W')
// calls.
type scriptedStream struct {
	in       *bytes.Reader
	out      bytes.Buffer
	ops      []byte
	readErr  error
	writeErr error
}

func newScriptedStream(t *testing.T, incoming ...string) *scriptedStream {
	t.Helper()
	var wire bytes.Buffer
	for _, m := range incoming {
		if err := protocol.SendMessage(&wire, []byte(m)); err != nil {
			t.Fatalf("failed to build frame: %v", err)
		}
	}
	return &scriptedStream{in: bytes.NewReader(wire.Bytes())}
}

func (s *scriptedStream) Read(p []byte) (int, error) {
	s.ops = append(s.ops, 'R')
	if s.in.Len() == 0 && s.readErr != nil {
		return 0, s.readErr
	}
	return s.in.Read(p)
}

func (s *scriptedStream) Write(p []byte) (int, error) {
	s.ops = append(s.ops, 'W')
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.out.Write(p)
}

// turns collapses consecutive operations of the same kind, so one framed
// send shows up as a single 'W' and one framed receive as a single 'R'.
func (s *scriptedStream) turns() string {
	var b []byte
	for _, op := range s.ops {
		if len(b) == 0 || b[len(b)-1] != op {
			b = append(b, op)
		}
	}
	return string(b)
}

// sent decodes the frames the conversation wrote.
func (s *scriptedStream) sent(t *testing.T) []string {
	t.Helper()
	r := bytes.NewReader(s.out.Bytes())
	var msgs []string
	for r.Len() > 0 {
		msg, err := protocol.ReceiveMessage(r)
		if err != nil {
			t.Fatalf("failed to decode sent frame: %v", err)
		}
		msgs = append(msgs, msg.String())
	}
	return msgs
}

// scriptedLines is a LineSource returning fixed lines, then err or io.EOF.
type scriptedLines struct {
	lines []string
	err   error
	calls int
}

func (l *scriptedLines) NextLine() (string, error) {
	l.calls++
	if len(l.lines) == 0 {
		if l.err != nil {
			return "", l.err
		}
		return "", io.EOF
	}
	line := l.lines[0]
	l.lines = l.lines[1:]
	return line, nil
}

type recordingSink struct {
	msgs []string
}

func (s *recordingSink) Display(msg []byte) {
	s.msgs = append(s.msgs, string(msg))
}

type recordingRecorder struct {
	events []string
	err    error
}

func (r *recordingRecorder) RecordSent(msg []byte) error {
	r.events = append(r.events, "sent:"+string(msg))
	return r.err
}

func (r *recordingRecorder) RecordReceived(msg []byte) error {
	r.events = append(r.events, "received:"+string(msg))
	return r.err
}

var errBoom = errors.New("boom")

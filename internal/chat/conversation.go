package chat

import (
	"errors"
	"fmt"
	"io"

	"github.com/omochice/framechat/pkg/protocol"
	"github.com/rs/zerolog"
)

// Role selects which side of the conversation sends first.
type Role int

const (
	Initiator Role = iota
	Responder
)

// String returns the string representation of Role
func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	default:
		return "unknown"
	}
}

// Peer returns how the other party is named when showing its messages.
func (r Role) Peer() string {
	if r == Initiator {
		return "server"
	}
	return "client"
}

// State is a phase of the turn-taking state machine.
type State int

const (
	StateAwaitingLocalInput State = iota
	StateSending
	StateAwaitingRemoteMessage
	StateReceiving
	StateEnded
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateAwaitingLocalInput:
		return "AWAITING_LOCAL_INPUT"
	case StateSending:
		return "SENDING"
	case StateAwaitingRemoteMessage:
		return "AWAITING_REMOTE_MESSAGE"
	case StateReceiving:
		return "RECEIVING"
	case StateEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// Reason explains why a conversation ended.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonSentinelSent
	ReasonSentinelReceived
	ReasonInputExhausted
	ReasonPeerClosed
	ReasonTransportFailure
	ReasonFrameTooLarge
	ReasonInvalidMessage
	ReasonInputFailure
)

// String returns the string representation of Reason
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSentinelSent:
		return "sentinel sent"
	case ReasonSentinelReceived:
		return "sentinel received"
	case ReasonInputExhausted:
		return "end of input"
	case ReasonPeerClosed:
		return "peer disconnected"
	case ReasonTransportFailure:
		return "transport error"
	case ReasonFrameTooLarge:
		return "frame too large"
	case ReasonInvalidMessage:
		return "invalid message"
	case ReasonInputFailure:
		return "input error"
	default:
		return "unknown"
	}
}

// Normal reports whether the reason is one of the regular ways to finish:
// the sentinel was exchanged or local input ran out.
func (r Reason) Normal() bool {
	switch r {
	case ReasonSentinelSent, ReasonSentinelReceived, ReasonInputExhausted:
		return true
	default:
		return false
	}
}

// Result summarizes a finished conversation.
type Result struct {
	Role      Role
	Reason    Reason
	Sent      int
	Received  int
	SessionID string
}

// LineSource supplies outgoing messages typed by the operator.
// NextLine returns io.EOF once no further input is available.
type LineSource interface {
	NextLine() (string, error)
}

// Sink shows received messages to the operator.
type Sink interface {
	Display(msg []byte)
}

// Recorder observes every message that was fully sent or received.
type Recorder interface {
	RecordSent(msg []byte) error
	RecordReceived(msg []byte) error
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithLogger sets the logger used for state transitions and diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Conversation) {
		c.logger = logger
	}
}

// WithMaxMessageSize rejects incoming frames declaring more than n bytes.
// Zero keeps the wire format's unbounded behavior.
func WithMaxMessageSize(n uint32) Option {
	return func(c *Conversation) {
		c.maxMessageSize = n
	}
}

// WithRecorder attaches a Recorder. Recorder failures are logged and never
// end the conversation.
func WithRecorder(r Recorder) Option {
	return func(c *Conversation) {
		c.recorder = r
	}
}

// WithSessionID tags the result and every log line with id.
func WithSessionID(id string) Option {
	return func(c *Conversation) {
		c.sessionID = id
	}
}

// Conversation alternates framed messages with a single peer.
// It owns the stream exclusively for the duration of Run and is not safe
// for concurrent use.
type Conversation struct {
	role           Role
	stream         io.ReadWriter
	input          LineSource
	output         Sink
	recorder       Recorder
	logger         zerolog.Logger
	maxMessageSize uint32
	sessionID      string
	state          State
}

// New creates a Conversation for role over stream.
func New(role Role, stream io.ReadWriter, input LineSource, output Sink, opts ...Option) *Conversation {
	c := &Conversation{
		role:   role,
		stream: stream,
		input:  input,
		output: output,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx := c.logger.With().Str("role", role.String())
	if c.sessionID != "" {
		ctx = ctx.Str("session", c.sessionID)
	}
	c.logger = ctx.Logger()

	if role == Initiator {
		c.state = StateAwaitingLocalInput
	} else {
		c.state = StateAwaitingRemoteMessage
	}
	return c
}

// State returns the current phase of the conversation.
func (c *Conversation) State() State {
	return c.state
}

// Run drives the conversation until it ends.
//
// The error is nil when the conversation ended normally (see Reason.Normal);
// otherwise it is the failure that ended it, propagated unchanged from the
// framing layer. Failed operations are never retried.
func (c *Conversation) Run() (Result, error) {
	res := Result{Role: c.role, SessionID: c.sessionID}
	sending := c.role == Initiator

	for {
		var (
			reason Reason
			err    error
		)
		if sending {
			reason, err = c.sendTurn(&res)
		} else {
			reason, err = c.receiveTurn(&res)
		}
		if reason != ReasonNone {
			return c.finish(res, reason, err)
		}
		sending = !sending
	}
}

func (c *Conversation) sendTurn(res *Result) (Reason, error) {
	c.transition(StateAwaitingLocalInput)
	line, err := c.input.NextLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ReasonInputExhausted, nil
		}
		return ReasonInputFailure, fmt.Errorf("failed to read local input: %w", err)
	}

	msg := protocol.Message(line)
	c.transition(StateSending)
	if err := protocol.SendMessage(c.stream, msg); err != nil {
		return reasonFor(err), err
	}
	res.Sent++
	if c.recorder != nil {
		if err := c.recorder.RecordSent(msg); err != nil {
			c.logger.Warn().Err(err).Msg("failed to record sent message")
		}
	}

	if msg.IsSentinel() {
		return ReasonSentinelSent, nil
	}
	return ReasonNone, nil
}

func (c *Conversation) receiveTurn(res *Result) (Reason, error) {
	c.transition(StateAwaitingRemoteMessage)
	c.transition(StateReceiving)
	msg, err := protocol.ReceiveMessageLimit(c.stream, c.maxMessageSize)
	if err != nil {
		return reasonFor(err), err
	}
	res.Received++
	if c.recorder != nil {
		if err := c.recorder.RecordReceived(msg); err != nil {
			c.logger.Warn().Err(err).Msg("failed to record received message")
		}
	}

	c.output.Display(msg)

	if msg.IsSentinel() {
		return ReasonSentinelReceived, nil
	}
	return ReasonNone, nil
}

func (c *Conversation) finish(res Result, reason Reason, err error) (Result, error) {
	c.transition(StateEnded)
	res.Reason = reason

	event := c.logger.Info()
	if !reason.Normal() {
		event = c.logger.Warn().Err(err)
	}
	event.Stringer("reason", reason).
		Int("sent", res.Sent).
		Int("received", res.Received).
		Msg("conversation ended")

	if reason.Normal() {
		return res, nil
	}
	return res, err
}

func (c *Conversation) transition(to State) {
	if c.state == to {
		return
	}
	c.logger.Debug().Stringer("from", c.state).Stringer("to", to).Msg("state transition")
	c.state = to
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, protocol.ErrPeerClosed):
		return ReasonPeerClosed
	case errors.Is(err, protocol.ErrFrameTooLarge):
		return ReasonFrameTooLarge
	case errors.Is(err, protocol.ErrMessageTooLong):
		return ReasonInvalidMessage
	default:
		return ReasonTransportFailure
	}
}

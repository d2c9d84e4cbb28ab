// Package runner drives one conversation over an established stream.
package runner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/omochice/framechat/internal/chat"
	"github.com/omochice/framechat/internal/config"
	"github.com/omochice/framechat/internal/transcript"
	"github.com/rs/zerolog"
)

// Options configures Run.
type Options struct {
	Role   chat.Role
	Config config.Config
	Stdin  io.Reader
	Stdout io.Writer
	// Interactive writes Config.Prompt to Stdout before each line.
	Interactive bool
	// Color styles the message label.
	Color  bool
	Logger zerolog.Logger
}

// Run holds the conversation on stream and closes it afterwards. The
// returned error is nil exactly when the conversation ended normally.
func Run(stream chat.Stream, opts Options) (chat.Result, error) {
	sessionID := uuid.NewString()
	logger := opts.Logger.With().Str("remote", stream.RemoteAddr()).Logger()

	defer func() {
		if err := stream.Close(); err != nil {
			logger.Debug().Err(err).Msg("failed to close stream")
		}
	}()

	input := chat.NewLineReader(opts.Stdin)
	if opts.Interactive {
		input.SetPrompt(opts.Stdout, opts.Config.Prompt)
	}
	output := chat.NewConsoleSink(opts.Stdout, opts.Role.Peer(), opts.Color)

	chatOpts := []chat.Option{
		chat.WithLogger(logger),
		chat.WithSessionID(sessionID),
		chat.WithMaxMessageSize(opts.Config.MaxMessageSize),
	}

	if path := opts.Config.Transcript; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return chat.Result{Role: opts.Role, SessionID: sessionID},
				fmt.Errorf("failed to open transcript: %w", err)
		}
		defer f.Close()
		chatOpts = append(chatOpts, chat.WithRecorder(transcript.NewWriter(f, sessionID)))
	}

	conv := chat.New(opts.Role, stream, input, output, chatOpts...)
	result, err := conv.Run()

	if result.Reason == chat.ReasonPeerClosed {
		fmt.Fprintf(opts.Stdout, "%s disconnected\n", capitalize(opts.Role.Peer()))
	}
	return result, err
}

// ExitCode maps a finished conversation to a process exit status.
// An orderly close by the peer counts as success.
func ExitCode(result chat.Result, err error) int {
	if err == nil || result.Reason == chat.ReasonPeerClosed {
		return 0
	}
	return 1
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/omochice/framechat/internal/chat"
	"github.com/omochice/framechat/internal/client"
	"github.com/omochice/framechat/internal/config"
	"github.com/omochice/framechat/internal/logging"
	"github.com/omochice/framechat/internal/runner"
	"github.com/spf13/cobra"
)

func main() {
	var flags runner.Flags

	rootCmd := &cobra.Command{
		Use:          "client [SERVER_IP PORT]",
		Short:        "Connect to a server and chat with it, one message per turn",
		Args:         runner.PositionalArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Resolve(cmd, args, config.DefaultClient())
			if err != nil {
				return err
			}
			return connect(cfg)
		},
	}
	flags.Register(rootCmd, "server", "Server address (e.g. localhost:8080 or ws://host:port/)", "Transport: tcp or ws")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func connect(cfg config.Config) error {
	logOpts := cfg.Log.Options()
	logOpts.NoColor = logOpts.NoColor || !runner.IsTerminal(os.Stderr)
	logger := logging.New("client", os.Stderr, logOpts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	stream, err := client.Dial(ctx, cfg.Transport, cfg.Address)
	stop()
	if err != nil {
		return err
	}
	logger.Info().
		Str("remote", stream.RemoteAddr()).
		Str("transport", cfg.Transport).
		Msg("connected to server")

	result, err := runner.Run(stream, runner.Options{
		Role:        chat.Initiator,
		Config:      cfg,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Interactive: runner.Interactive(os.Stdin),
		Color:       runner.IsTerminal(os.Stdout),
		Logger:      logger,
	})
	fmt.Println("Client is shutting down...")

	if runner.ExitCode(result, err) == 0 {
		return nil
	}
	return err
}

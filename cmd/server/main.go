package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/omochice/framechat/internal/chat"
	"github.com/omochice/framechat/internal/config"
	"github.com/omochice/framechat/internal/logging"
	"github.com/omochice/framechat/internal/runner"
	"github.com/omochice/framechat/internal/server"
	"github.com/spf13/cobra"
)

func main() {
	var flags runner.Flags

	rootCmd := &cobra.Command{
		Use:          "server [LISTEN_IP PORT]",
		Short:        "Wait for one client and chat with it, one message per turn",
		Args:         runner.PositionalArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Resolve(cmd, args, config.DefaultServer())
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	flags.Register(rootCmd, "listen", "Address to listen on (e.g. :8080)", "Accepted transport: auto, tcp or ws")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cfg config.Config) error {
	logOpts := cfg.Log.Options()
	logOpts.NoColor = logOpts.NoColor || !runner.IsTerminal(os.Stderr)
	logger := logging.New("server", os.Stderr, logOpts)

	srv := server.New(cfg.Address, server.Mode(cfg.Transport), logger)
	if err := srv.Listen(); err != nil {
		return err
	}
	fmt.Println("The server has been started. Listening for connection...")

	// Signals only interrupt the wait for a peer.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	stream, err := srv.Accept(ctx)
	stop()
	if err != nil {
		return err
	}
	fmt.Println("Client connected")

	result, err := runner.Run(stream, runner.Options{
		Role:        chat.Responder,
		Config:      cfg,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Interactive: runner.Interactive(os.Stdin),
		Color:       runner.IsTerminal(os.Stdout),
		Logger:      logger,
	})
	fmt.Println("Server is shutting down...")

	if runner.ExitCode(result, err) == 0 {
		return nil
	}
	return err
}

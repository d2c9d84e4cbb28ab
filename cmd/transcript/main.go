package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/omochice/framechat/internal/transcript"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect chat transcript files",
	}
	rootCmd.AddCommand(dumpCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func dumpCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every recorded message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open transcript: %w", err)
			}
			defer f.Close()
			return dump(cmd.OutOrStdout(), f, session)
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "Only print messages of this session id")
	return cmd
}

func dump(w io.Writer, r io.Reader, session string) error {
	tr := transcript.NewReader(r)
	for {
		e, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if session != "" && e.SessionID != session {
			continue
		}
		fmt.Fprintf(w, "%s %s %-8s %s\n", e.Time.Format(time.RFC3339Nano), e.SessionID, e.Direction, e.Payload)
	}
}

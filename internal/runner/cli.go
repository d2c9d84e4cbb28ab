package runner

import (
	"fmt"
	"net"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/omochice/framechat/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Flags holds the command-line settings shared by both endpoints.
type Flags struct {
	addressFlag string

	ConfigPath     string
	Address        string
	Transport      string
	MaxMessageSize uint32
	Transcript     string
	LogLevel       string
}

// Register binds the flags to cmd. addressFlag names the flag carrying the
// endpoint address ("listen" or "server").
func (f *Flags) Register(cmd *cobra.Command, addressFlag, addressUsage, transportUsage string) {
	f.addressFlag = addressFlag

	flags := cmd.Flags()
	flags.StringVarP(&f.ConfigPath, "config", "c", "", "Configuration file (.toml, .yaml)")
	flags.StringVar(&f.Address, addressFlag, "", addressUsage)
	flags.StringVarP(&f.Transport, "transport", "t", "", transportUsage)
	flags.Uint32Var(&f.MaxMessageSize, "max-message-size", 0, "Reject incoming messages larger than this many bytes (0 = no limit)")
	flags.StringVar(&f.Transcript, "transcript", "", "Append every message to this transcript file")
	flags.StringVar(&f.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
}

// PositionalArgs accepts either no arguments or an "IP PORT" pair.
func PositionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("expected IP and PORT, got %d argument(s)", len(args))
	}
	return nil
}

// Resolve builds the effective configuration: base, then the config file,
// then the environment, then positional arguments and explicitly set flags.
func (f *Flags) Resolve(cmd *cobra.Command, args []string, base config.Config) (config.Config, error) {
	cfg, err := config.Load(f.ConfigPath, base)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}

	if len(args) == 2 {
		cfg.Address = net.JoinHostPort(args[0], args[1])
	}

	flags := cmd.Flags()
	if flags.Changed(f.addressFlag) {
		cfg.Address = f.Address
	}
	if flags.Changed("transport") {
		cfg.Transport = f.Transport
	}
	if flags.Changed("max-message-size") {
		cfg.MaxMessageSize = f.MaxMessageSize
	}
	if flags.Changed("transcript") {
		cfg.Transcript = f.Transcript
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive reports whether operator input comes from a terminal, in
// which case a prompt is shown before each line.
func Interactive(stdin *os.File) bool {
	return term.IsTerminal(int(stdin.Fd()))
}

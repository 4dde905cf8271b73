package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pymine-dev/mcwire/internal/config"
	"github.com/pymine-dev/mcwire/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli holds the state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE.
type cli struct {
	configPath string
	verbose    bool
	noColor    bool
	jsonErrors bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	c := &cli{}
	rootCmd := newRootCmd(c)

	errors.DetectColors(os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		c.printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mcwire",
		Short: "Inspect and produce Minecraft protocol wire data",
		Long: `mcwire encodes and decodes the primitives of the Minecraft network
protocol: varints, strings, block positions, chat components and
length-prefixed (optionally zlib-compressed) frames.

Input bytes are given as hex; spaces, colons and a 0x prefix are
ignored. Failures point at the offending byte:

  mcwire varint decode "ff ff ff ff ff ff ff ff ff ff 01"

The serve command runs a debug HTTP server that decodes frames
over HTTP and echoes them over WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to mcwire.json (default: nearest in a parent directory)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log at debug level")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&c.jsonErrors, "json-errors", false, "Print errors as JSON")

	rootCmd.AddCommand(
		varintCmd(),
		stringCmd(),
		posCmd(),
		frameCmd(c),
		chatCmd(c),
		itemCmd(c),
		serveCmd(c),
		benchCmd(c),
		configCmd(c),
		versionCmd(),
	)

	return rootCmd
}

// setup loads the configuration and builds the logger.
func (c *cli) setup(logOut io.Writer) error {
	if c.noColor {
		errors.DisableColors()
	}

	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return err
	}

	level := c.cfg.LogLevel()
	if c.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(logOut, opts)
	} else {
		handler = slog.NewTextHandler(logOut, opts)
	}
	c.logger = slog.New(handler)

	if p := c.cfg.Path(); p != "" {
		c.logger.Debug("loaded config", "path", p)
	}
	return nil
}

// printError writes err as a diagnostic.
func (c *cli) printError(w io.Writer, err error) {
	if c.jsonErrors {
		fmt.Fprintln(w, errors.FromError(err, nil).FormatJSON())
		return
	}
	errors.Fprint(w, err)
}

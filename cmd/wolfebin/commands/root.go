// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
	"github.com/andrewrk/wolfebin/lib/client"
	"github.com/andrewrk/wolfebin/lib/config"
	"github.com/andrewrk/wolfebin/lib/progress"
)

// Streams are the process's standard streams.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StandardStreams returns os.Stdin, os.Stdout and os.Stderr.
func StandardStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	streams Streams
	styles  *cli.Styles
}

// Root returns the wolfebin command tree writing to streams.
func Root(streams Streams) *cli.Command {
	a := &app{streams: streams, styles: cli.NewStyles(streams.Stderr)}
	return &cli.Command{
		Name:        "wolfebin",
		Summary:     "Move named file sets to and from a wolfebin server",
		Description: "wolfebin stores sets of files on a server under a key and fetches them back.\nInterrupted uploads resume where they stopped; every file is checked with SHA-1.",
		HelpOutput:  streams.Stderr,
		Subcommands: []*cli.Command{
			a.putCommand(),
			a.getCommand(),
			a.deleteCommand(),
			a.listCommand(),
			a.versionCommand(),
			a.upgradeCommand(),
		},
	}
}

// Styles returns the styles Root uses for streams, for main to print
// the final error with.
func Styles(streams Streams) *cli.Styles {
	return cli.NewStyles(streams.Stderr)
}

// connectionFlags are accepted by every subcommand.
type connectionFlags struct {
	configPath string
	host       string
	port       int
	verbose    bool
}

func (f *connectionFlags) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.configPath, "config", "c", "", "configuration file (default $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&f.host, "host", "", "server host name, overriding the configuration")
	flagSet.IntVar(&f.port, "port", 0, "server port, overriding the configuration")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log protocol details to stderr")
}

// session is everything one command run needs.
type session struct {
	config *config.Config
	client *client.Client
	logger *slog.Logger
}

// connect loads configuration, applies flag overrides, and returns a
// client for command.
func (a *app) connect(flags *connectionFlags, command string) (*session, error) {
	var cfg *config.Config
	var err error
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	if flags.host != "" {
		cfg.HostName = flags.host
	}
	if flags.port != 0 {
		cfg.PortNumber = flags.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("%w", err)
	}

	logger := cli.NewCommandLogger(a.streams.Stderr, flags.verbose).With("command", command)
	c := client.New(cfg, logger)
	c.Warnings = a.streams.Stderr
	c.WarningPrefix = a.styles.WarningPrefix()
	c.Stdout = a.streams.Stdout
	c.Progress = progressFor(a.streams.Stderr)
	logger.Debug("configuration loaded", "address", c.Address)
	return &session{config: cfg, client: c, logger: logger}, nil
}

// progressFor draws status lines only on a terminal.
func progressFor(w io.Writer) progress.Renderer {
	if file, ok := w.(*os.File); ok {
		return progress.ForFile(file)
	}
	return progress.Discard()
}

// interruptible returns a context cancelled by an interrupt signal.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

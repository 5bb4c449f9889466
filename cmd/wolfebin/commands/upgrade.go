// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
	"github.com/andrewrk/wolfebin/lib/codec"
	"github.com/andrewrk/wolfebin/lib/upgrade"
)

func (a *app) upgradeCommand() *cli.Command {
	var flags connectionFlags
	var stagingDir string
	var installer string
	var showManifest bool
	return &cli.Command{
		Name:    "upgrade",
		Summary: "Fetch the server's client binary for installation",
		Description: "Fetch the client binary the server offers into the staging directory,\n" +
			"write a manifest beside it, and run the configured installer unless the\n" +
			"binary is identical to the running one. The payload is not signed.",
		Usage: "wolfebin upgrade [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("upgrade", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flagSet.StringVar(&stagingDir, "staging-dir", "", "directory for the payload (default from configuration)")
			flagSet.StringVar(&installer, "installer", "", "command run with the payload and manifest paths (default from configuration)")
			flagSet.BoolVar(&showManifest, "show-manifest", false, "print the staged manifest in CBOR diagnostic notation")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return cli.Validation("upgrade takes no arguments")
			}
			session, err := a.connect(&flags, "upgrade")
			if err != nil {
				return err
			}

			options := upgrade.Options{
				StagingDir:      session.config.Upgrade.StagingDir,
				Installer:       session.config.Upgrade.Installer,
				InstallerOutput: a.streams.Stderr,
				Progress:        session.client.Progress,
				Logger:          session.logger,
			}
			if stagingDir != "" {
				options.StagingDir = stagingDir
			}
			if installer != "" {
				options.Installer = installer
			}

			ctx, cancel := interruptible()
			defer cancel()
			result, err := upgrade.Stage(ctx, session.client, options)
			if err != nil {
				return cli.Classify(err)
			}

			out := a.streams.Stdout
			switch {
			case result.Manifest.AlreadyCurrent:
				fmt.Fprintf(out, "already current (%s)\n", result.Manifest.SHA256)
			case result.Installed:
				fmt.Fprintf(out, "installed %s\n", result.PayloadPath)
			default:
				fmt.Fprintf(out, "staged %s\nmanifest %s\n", result.PayloadPath, result.ManifestPath)
			}
			if showManifest {
				data, err := os.ReadFile(result.ManifestPath)
				if err != nil {
					return fmt.Errorf("reading manifest: %w", err)
				}
				notation, err := codec.Diagnose(data)
				if err != nil {
					return fmt.Errorf("decoding manifest %s: %w", result.ManifestPath, err)
				}
				fmt.Fprintln(out, notation)
			}
			return nil
		},
	}
}

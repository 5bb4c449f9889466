// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
	"github.com/andrewrk/wolfebin/lib/version"
)

func (a *app) versionCommand() *cli.Command {
	var flags connectionFlags
	var outputJSON bool
	var localOnly bool
	return &cli.Command{
		Name:    "version",
		Summary: "Show client and server versions",
		Usage:   "wolfebin version [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			flagSet.BoolVar(&localOnly, "local", false, "print the client version without contacting the server")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return cli.Validation("version takes no arguments")
			}
			out := a.streams.Stdout
			if localOnly {
				fmt.Fprintf(out, "wolfebin %s\n", version.Full())
				return nil
			}

			session, err := a.connect(&flags, "version")
			if err != nil {
				return err
			}
			ctx, cancel := interruptible()
			defer cancel()
			report, err := session.client.Version(ctx)
			if err != nil {
				return cli.Classify(err)
			}

			if outputJSON {
				return cli.WriteJSON(out, struct {
					Client           string `json:"client"`
					Server           string `json:"server"`
					Comparison       string `json:"comparison"`
					UpgradeAvailable bool   `json:"upgrade_available"`
				}{report.Client, report.Server, report.Comparison.String(), report.UpgradeAvailable()})
			}

			fmt.Fprintf(out, "client: %s\n", version.Info())
			fmt.Fprintf(out, "server: %s\n", report.Server)
			if report.UpgradeAvailable() {
				fmt.Fprintf(out, "A newer client is available: run %s\n", a.styles.Emphasis("wolfebin upgrade"))
			}
			return nil
		},
	}
}

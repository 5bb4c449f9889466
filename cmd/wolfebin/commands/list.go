// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
	"github.com/andrewrk/wolfebin/lib/client"
	"github.com/andrewrk/wolfebin/lib/progress"
)

func (a *app) listCommand() *cli.Command {
	var flags connectionFlags
	var outputJSON bool
	return &cli.Command{
		Name:    "list",
		Summary: "List the keys on the server",
		Usage:   "wolfebin list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return cli.Validation("list takes no arguments")
			}
			session, err := a.connect(&flags, "list")
			if err != nil {
				return err
			}
			ctx, cancel := interruptible()
			defer cancel()
			listing, err := session.client.List(ctx)
			if err != nil {
				return cli.Classify(err)
			}
			session.logger.Debug("listing received", "keys", len(listing.Items), "server_version", listing.ServerVersion)

			if outputJSON {
				return cli.WriteJSON(a.streams.Stdout, listing)
			}
			return a.printListing(a.streams.Stdout, listing)
		},
	}
}

// printListing writes each key followed by its files, indented, with
// human-readable sizes.
func (a *app) printListing(w io.Writer, listing *client.Listing) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	for _, item := range listing.Items {
		var total int64
		for _, file := range item.Files {
			total += file.Size
		}
		if item.Files == nil {
			fmt.Fprintf(tw, "%s\n", item.Key)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t(%d files)\n", item.Key, progress.FormatBinary(total), len(item.Files))
		for _, file := range item.Files {
			fmt.Fprintf(tw, "  %s\t%s\t\n", file.Name, progress.FormatBinary(file.Size))
		}
	}
	return tw.Flush()
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
)

func (a *app) getCommand() *cli.Command {
	var flags connectionFlags
	return &cli.Command{
		Name:    "get",
		Summary: "Download the files stored under a key",
		Description: "Download the files stored under a key.\n\n" +
			"Without a destination the stored names are used as-is. An existing\n" +
			"directory receives the files inside it. Otherwise the destination\n" +
			"renames the single stored file or top-level directory. \"-\" writes\n" +
			"a single file to standard output.",
		Usage: "wolfebin get [flags] <key> [destination]",
		Examples: []cli.Example{
			{Description: "Restore a directory under a new name", Command: "wolfebin get photos trip-copy"},
			{Description: "Stream a single file", Command: "wolfebin get backup - | tar x"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return cli.Validation("get needs a key and an optional destination")
			}
			key, target := args[0], ""
			if len(args) == 2 {
				target = args[1]
			}

			session, err := a.connect(&flags, "get")
			if err != nil {
				return err
			}

			ctx, cancel := interruptible()
			defer cancel()
			result, err := session.client.Get(ctx, key, target)
			if err != nil {
				return cli.Classify(err)
			}
			session.logger.Debug("download complete", "key", key, "files", len(result.Files),
				"bytes", result.Bytes, "mismatches", len(result.Mismatches))
			return nil
		},
	}
}

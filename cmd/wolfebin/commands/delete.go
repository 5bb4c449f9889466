// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
)

func (a *app) deleteCommand() *cli.Command {
	var flags connectionFlags
	return &cli.Command{
		Name:    "delete",
		Summary: "Remove a key from the server",
		Usage:   "wolfebin delete [flags] <key>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("delete needs exactly one key")
			}
			session, err := a.connect(&flags, "delete")
			if err != nil {
				return err
			}
			ctx, cancel := interruptible()
			defer cancel()
			return cli.Classify(session.client.Delete(ctx, args[0]))
		},
	}
}

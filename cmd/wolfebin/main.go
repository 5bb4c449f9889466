// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
	"github.com/andrewrk/wolfebin/cmd/wolfebin/commands"
)

func main() {
	streams := commands.StandardStreams()
	if err := run(streams); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		commands.Styles(streams).PrintError(os.Stderr, err)
		os.Exit(cli.ExitCodeFor(err))
	}
}

func run(streams commands.Streams) error {
	return commands.Root(streams).Execute(os.Args[1:])
}

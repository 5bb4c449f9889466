// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io/fs"

	"github.com/spf13/pflag"

	"github.com/andrewrk/wolfebin/cmd/wolfebin/cli"
	"github.com/andrewrk/wolfebin/lib/transfer"
)

func (a *app) putCommand() *cli.Command {
	var flags connectionFlags
	var stdinName string
	return &cli.Command{
		Name:    "put",
		Summary: "Upload files or directories under a key",
		Description: "Upload files or directories under a key, replacing whatever the key held.\n" +
			"Directories are uploaded recursively. A path of \"-\" reads standard input.\n" +
			"Repeating an interrupted upload resumes it.",
		Usage: "wolfebin put [flags] <key> <path>...",
		Examples: []cli.Example{
			{Description: "Upload a directory", Command: "wolfebin put photos ~/Pictures/trip"},
			{Description: "Upload a pipeline's output", Command: "tar c src | wolfebin put --name src.tar backup -"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("put", pflag.ContinueOnError)
			flags.addFlags(flagSet)
			flagSet.StringVar(&stdinName, "name", "stdin", `file name for data read from "-"`)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return cli.Validation("put needs a key and at least one path")
			}
			key, paths := args[0], args[1:]

			files, err := a.collect(paths, stdinName)
			if err != nil {
				return err
			}

			session, err := a.connect(&flags, "put")
			if err != nil {
				return err
			}
			logger := session.logger.With("key", key)

			ctx, cancel := interruptible()
			defer cancel()
			result, err := session.client.Put(ctx, key, files)
			if err != nil {
				return cli.Classify(err)
			}
			logger.Debug("upload complete", "files", result.Files, "sent", result.Sent,
				"resumed_at", result.ResumedAt, "restarted", result.Restarted)
			return nil
		},
	}
}

func (a *app) collect(paths []string, stdinName string) ([]transfer.FileDescriptor, error) {
	var local []string
	var files []transfer.FileDescriptor
	usedStdin := false
	for _, path := range paths {
		if path != transfer.StdoutTarget {
			local = append(local, path)
			continue
		}
		if usedStdin {
			return nil, cli.Validation("standard input can be uploaded only once")
		}
		usedStdin = true
		file, err := transfer.FromReader(a.streams.Stdin, stdinName)
		if err != nil {
			return nil, cli.Internal("%w", err)
		}
		files = append(files, file)
	}

	collected, err := transfer.Collect(local)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("%w", err)
		}
		return nil, cli.Internal("%w", err)
	}
	return append(files, collected...), nil
}

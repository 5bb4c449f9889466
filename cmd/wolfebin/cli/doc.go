// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the wolfebin
// binary: a tree of [Command] values dispatched by name, pflag flag
// sets parsed per command, typo suggestions for unknown commands and
// flags, and the conventions for how failures reach the terminal.
//
// Errors returned from a command are printed once by main as
// "error: <message>". Commands classify failures with the [ToolError]
// constructors; [ExitCodeFor] maps a failure to the process exit code.
package cli

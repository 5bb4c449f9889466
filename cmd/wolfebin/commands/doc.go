// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the wolfebin command tree. Every subcommand
// takes the connection flags (--host, --port, --config, --verbose),
// loads configuration through lib/config, and runs one operation of
// lib/client.
package commands

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config reads the wolfebin client configuration.
//
// Configuration comes from a single file named by either the
// WOLFEBIN_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. When neither is given the client runs on [Default]:
// localhost, port 55247.
//
// Files ending in .yaml or .yml are parsed as YAML. Files ending in
// .json or .jsonc are parsed as JSON with comments and trailing commas
// allowed, which keeps configs written by older clients readable.
//
// This package only reads. Creating or rewriting the file is the
// job of whatever first-run tooling the user has.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded.
package config

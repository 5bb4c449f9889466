// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andrewrk/wolfebin/lib/binhash"
)

// Comparison describes how a server's reported version relates to this
// client. It is informational only: no operation is ever refused
// because of it.
type Comparison int

const (
	// Unknown means the server did not report a version, or reported
	// one that does not parse as dotted numbers.
	Unknown Comparison = iota
	// Same means client and server report the same version.
	Same
	// ServerNewer means the server is ahead; an upgrade is available.
	ServerNewer
	// ServerOlder means the client is ahead of the server.
	ServerOlder
)

func (c Comparison) String() string {
	switch c {
	case Same:
		return "same"
	case ServerNewer:
		return "server newer"
	case ServerOlder:
		return "server older"
	default:
		return "unknown"
	}
}

// CompareServer compares the server's version string against the
// client's. Versions are dotted decimal ("5.0", "6.0.1"); missing
// components count as zero.
func CompareServer(client, server string) Comparison {
	if server == "" {
		return Unknown
	}
	clientParts, ok := parseDotted(client)
	if !ok {
		return Unknown
	}
	serverParts, ok := parseDotted(server)
	if !ok {
		return Unknown
	}
	for index := 0; index < max(len(clientParts), len(serverParts)); index++ {
		var clientPart, serverPart int
		if index < len(clientParts) {
			clientPart = clientParts[index]
		}
		if index < len(serverParts) {
			serverPart = serverParts[index]
		}
		switch {
		case serverPart > clientPart:
			return ServerNewer
		case serverPart < clientPart:
			return ServerOlder
		}
	}
	return Same
}

func parseDotted(version string) ([]int, bool) {
	fields := strings.Split(strings.TrimSpace(version), ".")
	parts := make([]int, 0, len(fields))
	for _, field := range fields {
		number, err := strconv.Atoi(field)
		if err != nil || number < 0 {
			return nil, false
		}
		parts = append(parts, number)
	}
	return parts, true
}

// ComputeSelfHash returns the SHA256 hex digest and absolute filesystem
// path of the currently running binary. Uses os.Executable() to resolve
// the binary path, which on Linux reads /proc/self/exe and so points at
// the original binary even if it has been replaced on disk since the
// process started.
func ComputeSelfHash() (hash string, binaryPath string, err error) {
	executable, err := os.Executable()
	if err != nil {
		return "", "", fmt.Errorf("resolving own executable path: %w", err)
	}
	digest, err := binhash.HashFile(executable)
	if err != nil {
		return "", "", fmt.Errorf("hashing own binary at %s: %w", executable, err)
	}
	return binhash.FormatDigest(digest), executable, nil
}

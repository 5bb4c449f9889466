// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/andrewrk/wolfebin/lib/clock"
	"github.com/andrewrk/wolfebin/lib/config"
	"github.com/andrewrk/wolfebin/lib/progress"
	"github.com/andrewrk/wolfebin/lib/protocol"
	"github.com/andrewrk/wolfebin/lib/transfer"
	"github.com/andrewrk/wolfebin/lib/version"
)

// Client runs commands against one server.
type Client struct {
	// Address is the server's host:port.
	Address string

	// DialTimeout bounds connection establishment. Zero means no
	// bound beyond ctx.
	DialTimeout time.Duration

	// Logger receives Debug-level protocol milestones. Nil discards.
	Logger *slog.Logger

	// Warnings receives server warnings and checksum mismatches.
	// Nil means os.Stderr.
	Warnings io.Writer

	// WarningPrefix replaces "WARNING:" in front of each warning.
	WarningPrefix string

	// Progress draws transfer status lines. Nil draws nothing.
	Progress progress.Renderer

	// Clock drives progress timing. Nil means the real clock.
	Clock clock.Clock

	// Stdout receives a download whose destination is "-". Nil
	// means os.Stdout.
	Stdout io.Writer
}

// New returns a client for the server named by cfg.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		Address:     cfg.Address(),
		DialTimeout: cfg.DialTimeoutDuration(),
		Logger:      logger,
	}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Client) dial(ctx context.Context) (*protocol.Conn, error) {
	warnings := c.Warnings
	if warnings == nil {
		warnings = os.Stderr
	}
	return protocol.Dial(ctx, c.Address, c.DialTimeout, protocol.Options{
		Version:       version.Version,
		Logger:        c.logger(),
		Warnings:      warnings,
		WarningPrefix: c.WarningPrefix,
	})
}

func (c *Client) transferOptions() transfer.Options {
	return transfer.Options{
		Clock:    c.Clock,
		Progress: c.Progress,
		Logger:   c.logger(),
		Stdout:   c.Stdout,
	}
}

// Put uploads files under key, resuming an interrupted upload of the
// same file list when the server offers one.
func (c *Client) Put(ctx context.Context, key string, files []transfer.FileDescriptor) (*transfer.UploadResult, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return transfer.Upload(ctx, conn, key, transfer.NewSession(files), c.transferOptions())
}

// Get downloads key into target. See transfer.ResolveDestination for
// how target maps the stored names to local paths.
func (c *Client) Get(ctx context.Context, key, target string) (*transfer.DownloadResult, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return transfer.Download(ctx, conn, key, target, c.transferOptions())
}

// Delete removes key from the server.
func (c *Client) Delete(ctx context.Context, key string) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send(protocol.DeleteRequest{Key: key}); err != nil {
		return err
	}
	_, err = conn.Receive(protocol.KindAck)
	return err
}

// Listing is the answer to a list command.
type Listing struct {
	Items []protocol.Item `json:"items"`
	// ServerVersion is the version the server attached to its reply,
	// empty if it sent none.
	ServerVersion string `json:"server_version,omitempty"`
}

// List returns every key on the server.
func (c *Client) List(ctx context.Context) (*Listing, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.Send(protocol.ListRequest{}); err != nil {
		return nil, err
	}
	reply, err := conn.Receive(protocol.KindListing)
	if err != nil {
		return nil, err
	}
	listing := &Listing{Items: reply.Listing()}
	if reply.Version != nil {
		listing.ServerVersion = *reply.Version
	}
	return listing, nil
}

// VersionReport pairs the client's version with the server's.
type VersionReport struct {
	Client     string             `json:"client"`
	Server     string             `json:"server"`
	Comparison version.Comparison `json:"-"`
}

// UpgradeAvailable is true when the server runs a newer version.
func (r *VersionReport) UpgradeAvailable() bool {
	return r.Comparison == version.ServerNewer
}

// Version asks the server for its version. A difference is reported,
// never treated as an error.
func (c *Client) Version(ctx context.Context) (*VersionReport, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.Send(protocol.VersionRequest{}); err != nil {
		return nil, err
	}
	reply, err := conn.Receive(protocol.KindVersionInfo)
	if err != nil {
		return nil, err
	}
	report := &VersionReport{Client: version.Version, Server: *reply.Version}
	report.Comparison = version.CompareServer(report.Client, report.Server)
	c.logger().Debug("server version", "client", report.Client, "server", report.Server,
		"comparison", report.Comparison.String())
	return report, nil
}

// UpgradeHeader describes an upgrade payload before its bytes are read.
type UpgradeHeader struct {
	Size int64
	// Version is the payload's version when the server names it.
	Version string
}

// FetchUpgrade requests the current client binary and passes its bytes
// to consume. body yields exactly header.Size bytes; consume must read
// it to the end or return an error.
func (c *Client) FetchUpgrade(ctx context.Context, consume func(header UpgradeHeader, body io.Reader) error) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send(protocol.UpgradeRequest{}); err != nil {
		return err
	}
	envelope, body, err := conn.ReceiveStream(protocol.KindUpgradeHeader)
	if err != nil {
		return err
	}
	header := UpgradeHeader{Size: *envelope.BinLen}
	if envelope.Version != nil {
		header.Version = *envelope.Version
	}
	c.logger().Debug("upgrade payload announced", "size", header.Size, "version", header.Version)
	if err := consume(header, body); err != nil {
		return fmt.Errorf("receiving upgrade payload: %w", err)
	}
	return nil
}

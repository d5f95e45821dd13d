// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/holonick/internal/config"
	"github.com/holomush/holonick/internal/logging"
	"github.com/holomush/holonick/internal/registry"
	"github.com/holomush/holonick/internal/xdg"
)

const serviceName = "holonick"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the holonick CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holonick",
		Short: "holonick - nickname and color registry",
		Long: `holonick keeps display nicknames and colors for users, enforces
nickname uniqueness and change cooldowns, and persists everything to two
plain-text files in the data directory.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/holonick/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewConsoleCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewRealNameCmd())

	return cmd
}

// loadConfig resolves configuration for cmd. Without --config the XDG config
// file is read when it exists.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, optional := configFile, false
	if path == "" {
		path, optional = xdg.ConfigFile(), true
	}

	cfg, err := config.Load(path, optional, cmd.Flags())
	if err != nil {
		return config.Config{}, oops.Wrapf(err, "invalid configuration")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = xdg.DataDir()
	}
	return cfg, nil
}

// newLogger builds the process logger writing to cmd's error stream.
func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.Setup(serviceName, version, cfg.LogFormat, level, cmd.ErrOrStderr())
}

// openRegistry opens the registry in the configured data directory.
func openRegistry(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...registry.Option) (*registry.Registry, error) {
	opts := append(cfg.RegistryOptions(), registry.WithLogger(logger))
	opts = append(opts, extra...)

	reg, err := registry.Open(ctx, cfg.DataDir, opts...)
	if err != nil {
		return nil, oops.With("data_dir", cfg.DataDir).Wrapf(err, "open registry")
	}
	return reg, nil
}

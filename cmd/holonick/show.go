// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/holomush/holonick/internal/registry"
	"github.com/holomush/holonick/internal/store"
)

// NewShowCmd creates the show subcommand.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <user>",
		Short: "Show a user's stored nickname and color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := openRegistry(cmd.Context(), cfg, newLogger(cmd, cfg), registry.ReadOnly())
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), args[0], reg.Profile(cmd.Context(), args[0]))
		},
	}
}

func writeProfile(w io.Writer, user string, p store.Profile) error {
	nickname := p.Nickname
	if !p.HasNickname() {
		nickname = "(none)"
	}
	_, err := fmt.Fprintf(w, "user:     %s\nnickname: %s\ndisplay:  %s\ncolor:    %s\n",
		user, nickname, p.DisplayName(user), p.Color.Name())
	return err //nolint:wrapcheck // terminal write
}

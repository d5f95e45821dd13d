// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/holonick/internal/registry"
)

// NewRealNameCmd creates the realname subcommand.
func NewRealNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "realname <nickname>",
		Short: "Show which user holds a nickname",
		Long:  `Show which user holds a nickname. The leading ~ is optional.`,
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

			found, err := reg.LookupRealName(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck // NOT_FOUND message is user-facing
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", found.Nickname, found.User, found.Color.Name())
			return err //nolint:wrapcheck // terminal write
		},
	}
}


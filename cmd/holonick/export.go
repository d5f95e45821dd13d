// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/holonick/internal/registry"
)

// Export formats.
const (
	exportText = "text"
	exportYAML = "yaml"
)

// exportRecord is one user in a YAML export.
type exportRecord struct {
	User     string `yaml:"user"`
	Nickname string `yaml:"nickname,omitempty"`
	Color    string `yaml:"color"`
}

type exportDocument struct {
	Profiles []exportRecord `yaml:"profiles"`
}

// NewExportCmd creates the export subcommand.
func NewExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := openRegistry(cmd.Context(), cfg, newLogger(cmd, cfg), registry.ReadOnly())
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), format, reg.Snapshot())
		},
	}

	cmd.Flags().StringVar(&format, "format", exportText, "output format (text or yaml)")
	return cmd
}

func writeExport(w io.Writer, format string, profiles []registry.UserProfile) error {
	switch format {
	case exportYAML:
		doc := exportDocument{Profiles: make([]exportRecord, 0, len(profiles))}
		for _, up := range profiles {
			doc.Profiles = append(doc.Profiles, exportRecord{
				User:     up.User,
				Nickname: up.Profile.Nickname,
				Color:    up.Profile.Color.Name(),
			})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return oops.Wrapf(err, "encode yaml export")
		}
		return oops.Wrap(enc.Close())
	case exportText:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "USER\tNICKNAME\tCOLOR")
		for _, up := range profiles {
			nickname := up.Profile.Nickname
			if nickname == "" {
				nickname = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", up.User, nickname, up.Profile.Color.Name())
		}
		return oops.Wrap(tw.Flush())
	default:
		return oops.Code("INVALID_ARGS").
			With("format", format).
			Errorf("unknown export format %q (want text or yaml)", format)
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/holomush/holonick/internal/color"
	"github.com/holomush/holonick/internal/registry"
	"github.com/holomush/holonick/internal/store"
	"github.com/holomush/holonick/pkg/errutil"
)

var sampleProfiles = []registry.UserProfile{
	{User: "alice", Profile: store.Profile{Nickname: "~Red", Color: color.Gold}},
	{User: "bob", Profile: store.Profile{Color: color.White}},
}

func TestWriteExport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, exportYAML, sampleProfiles))

	var doc exportDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []exportRecord{
		{User: "alice", Nickname: "~Red", Color: "gold"},
		{User: "bob", Color: "white"},
	}, doc.Profiles)
	assert.NotContains(t, buf.String(), "nickname: \"\"")
}

func TestWriteExport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, exportText, sampleProfiles))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"USER", "NICKNAME", "COLOR"}, fields(lines[0]))
	assert.Equal(t, []string{"alice", "~Red", "gold"}, fields(lines[1]))
	assert.Equal(t, []string{"bob", "-", "white"}, fields(lines[2]))
}

func TestWriteExport_UnknownFormat(t *testing.T) {
	err := writeExport(&bytes.Buffer{}, "csv", sampleProfiles)
	errutil.AssertErrorCode(t, err, "INVALID_ARGS")
}

func TestExportCommand(t *testing.T) {
	isolate(t)
	_, err := execute(t, "alice nickname Red\nalice color aqua\n", "console")
	require.NoError(t, err)

	out, err := execute(t, "", "export", "--format", "yaml")
	require.NoError(t, err)
	var doc exportDocument
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []exportRecord{{User: "alice", Nickname: "~Red", Color: "aqua"}}, doc.Profiles)
}

func TestShowAndRealNameCommands(t *testing.T) {
	isolate(t)
	_, err := execute(t, "alice nickname Red\n", "console")
	require.NoError(t, err)

	out, err := execute(t, "", "show", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "nickname: ~Red")
	assert.Contains(t, out, "color:    white")

	out, err = execute(t, "", "realname", "Red")
	require.NoError(t, err)
	assert.Equal(t, "~Red\talice\twhite\n", out)

	_, err = execute(t, "", "realname", "~Ghost")
	errutil.AssertErrorCode(t, err, registry.CodeNotFound)
}

func fields(line []byte) []string {
	out := []string{}
	for _, f := range bytes.Fields(line) {
		out = append(out, string(f))
	}
	return out
}

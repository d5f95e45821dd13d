// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"strings"

	"github.com/samber/oops"
)

// ParsedCommand represents a parsed command input.
type ParsedCommand struct {
	Name string   // command name, lower case, without a leading slash
	Args []string // whitespace-separated arguments
	Raw  string   // original input
}

// Parse splits raw input into a command name and arguments. A leading "/"
// on the command name is optional.
func Parse(input string) (*ParsedCommand, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, oops.Code(CodeEmptyInput).Errorf("no command provided")
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if name == "" {
		return nil, oops.Code(CodeEmptyInput).Errorf("no command provided")
	}

	return &ParsedCommand{
		Name: name,
		Args: fields[1:],
		Raw:  input,
	}, nil
}

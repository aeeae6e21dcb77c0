// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

// ===== ARG PARSER =====

func TestArgParser_Subcommand(t *testing.T) {
	p := NewArgParser([]string{"ask", "what", "is", "go"})
	if p.Subcommand() != "ask" {
		t.Errorf("Subcommand() = %q, want ask", p.Subcommand())
	}
	rest := p.Rest()
	if len(rest) != 3 || rest[0] != "what" {
		t.Errorf("Rest() = %v", rest)
	}
}

func TestArgParser_FlagFormats(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
		want string
	}{
		{"space separated", []string{"ask", "--model", "gpt-4o"}, "model", "gpt-4o"},
		{"equals sign", []string{"ask", "--model=gpt-4o"}, "model", "gpt-4o"},
		{"short flag", []string{"ask", "-m", "gpt-4o"}, "m", "gpt-4o"},
		{"missing", []string{"ask"}, "model", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if got := p.Flag(tt.flag); got != tt.want {
				t.Errorf("Flag(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestArgParser_BoolFlags(t *testing.T) {
	p := NewArgParser([]string{"sessions", "--json", "--verbose=false"})
	if !p.BoolFlag("json") {
		t.Error("BoolFlag(json) should be true")
	}
	if p.BoolFlag("verbose") {
		t.Error("BoolFlag(verbose) explicitly false")
	}
	if p.BoolFlag("missing") {
		t.Error("unset bool flag should be false")
	}
}

func TestArgParser_FlagAliases(t *testing.T) {
	p := NewArgParser([]string{"ask", "-m", "o3-mini"})
	if got := p.Flag("model", "m"); got != "o3-mini" {
		t.Errorf("Flag(model, m) = %q, want o3-mini", got)
	}
}

func TestArgParser_FloatFlag(t *testing.T) {
	p := NewArgParser([]string{"ask", "--temperature", "0.7"})
	if got := p.FloatFlag(0.2, "temperature"); got != 0.7 {
		t.Errorf("FloatFlag = %v, want 0.7", got)
	}

	bad := NewArgParser([]string{"ask", "--temperature", "hot"})
	// "hot" is consumed as the flag value but does not parse.
	if got := bad.FloatFlag(0.2, "temperature"); got != 0.2 {
		t.Errorf("unparseable FloatFlag = %v, want default 0.2", got)
	}
}

func TestArgParser_FlagConsumesNextPositional(t *testing.T) {
	// A flag followed by a bare word takes it as its value; use
	// --flag=true to keep the word positional. This documents the
	// flag grammar.
	p := NewArgParser([]string{"sessions", "--json", "list"})
	if got := p.Flag("json"); got != "list" {
		t.Errorf("Flag(json) = %q, want list", got)
	}

	explicit := NewArgParser([]string{"sessions", "--json=true", "list"})
	if !explicit.BoolFlag("json") {
		t.Error("explicit --json=true should set the bool flag")
	}
	if explicit.Subcommand() != "sessions" {
		t.Errorf("Subcommand() = %q", explicit.Subcommand())
	}
}

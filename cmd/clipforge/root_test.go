package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCommand()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"generate", "version"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q subcommand, have: %s", want, joined)
		}
	}
}

func TestGenerateRequiresImages(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"generate"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error without image arguments")
	}
}

func TestGenerateFlagDefaults(t *testing.T) {
	cmd := newGenerateCommand()
	for flag, want := range map[string]string{
		"output-dir":  "",
		"max-workers": "0",
		"skip-sound":  "false",
		"timeout":     "0s",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Fatalf("flag %q not registered", flag)
		}
		if f.DefValue != want {
			t.Fatalf("flag %q default = %q, want %q", flag, f.DefValue, want)
		}
	}
}

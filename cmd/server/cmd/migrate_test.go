package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestMigrateSubcommands(t *testing.T) {
	cmd := newMigrateCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"up", "down", "version"} {
		found := false
		for _, name := range names {
			if name == expected {
				found = true
			}
		}
		if !found {
			t.Errorf("expected migrate subcommand %q, have %v", expected, names)
		}
	}
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	cmd := newMigrateCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"down", "--steps", "0"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--steps") {
		t.Fatalf("expected steps error, got %v", err)
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunReportsUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"definitely-not-a-command"}, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown command") {
		t.Fatalf("expected unknown command error, got %q", stderr.String())
	}
}

func TestRunSkipsConfigForStaticCommands(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"video", "platforms"}, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, stderr.String())
	}
}

package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/odvcencio/webpilot/pkg/browser"
)

func saveGlobalFlags(t *testing.T) {
	t.Helper()
	origConfig := configPath
	origQuiet := quietMode
	t.Cleanup(func() {
		configPath = origConfig
		quietMode = origQuiet
	})
}

func TestParseGlobalFlags(t *testing.T) {
	saveGlobalFlags(t)

	configPath = ""
	quietMode = false
	rest := parseGlobalFlags([]string{"--config", "/tmp/wp.yaml", "navigate", "https://example.com"})
	if configPath != "/tmp/wp.yaml" {
		t.Errorf("configPath = %q, want /tmp/wp.yaml", configPath)
	}
	if len(rest) != 2 || rest[0] != "navigate" || rest[1] != "https://example.com" {
		t.Errorf("unexpected remaining args: %v", rest)
	}

	configPath = ""
	rest = parseGlobalFlags([]string{"--config=override.yaml", "-q", "search", "go"})
	if configPath != "override.yaml" {
		t.Errorf("configPath = %q, want override.yaml", configPath)
	}
	if !quietMode {
		t.Error("expected -q to set quiet mode")
	}
	if len(rest) != 2 || rest[0] != "search" {
		t.Errorf("unexpected remaining args: %v", rest)
	}

	quietMode = false
	rest = parseGlobalFlags([]string{"--quiet", "version"})
	if !quietMode {
		t.Error("expected --quiet to set quiet mode")
	}
	if len(rest) != 1 || rest[0] != "version" {
		t.Errorf("unexpected remaining args: %v", rest)
	}
}

func TestDispatchSubcommandEmptyArgs(t *testing.T) {
	handled, _ := dispatchSubcommand(nil)
	if handled {
		t.Fatal("empty args should fall through to help")
	}
}

func TestDispatchSubcommandVersion(t *testing.T) {
	for _, alias := range []string{"version", "--version", "-v"} {
		out := captureStdout(t, func() {
			handled, code := dispatchSubcommand([]string{alias})
			if !handled {
				t.Fatalf("%s should be handled", alias)
			}
			if code != 0 {
				t.Fatalf("%s should exit 0, got %d", alias, code)
			}
		})
		if !strings.Contains(out, "webpilot") {
			t.Errorf("expected version banner for %s, got: %s", alias, out)
		}
	}
}

func TestDispatchSubcommandHelp(t *testing.T) {
	out := captureStdout(t, func() {
		handled, code := dispatchSubcommand([]string{"help"})
		if !handled {
			t.Fatal("help should be handled")
		}
		if code != 0 {
			t.Fatalf("help should exit 0, got %d", code)
		}
	})
	if !strings.Contains(out, "USAGE:") {
		t.Errorf("expected usage block, got: %s", out)
	}
	if !strings.Contains(out, "navigate") || !strings.Contains(out, "search") {
		t.Errorf("expected command list in help output, got: %s", out)
	}
}

func TestDispatchSubcommandUnknownCommand(t *testing.T) {
	errOut := captureStderr(t, func() {
		handled, code := dispatchSubcommand([]string{"teleport"})
		if !handled {
			t.Fatal("unknown command should be handled")
		}
		if code != 1 {
			t.Fatalf("unknown command should exit 1, got %d", code)
		}
	})
	if !strings.Contains(errOut, "unknown command: teleport") {
		t.Errorf("expected unknown command message, got: %s", errOut)
	}
}

func TestDispatchSubcommandUnknownFlag(t *testing.T) {
	errOut := captureStderr(t, func() {
		handled, code := dispatchSubcommand([]string{"--frobnicate"})
		if !handled {
			t.Fatal("unknown flag should be handled")
		}
		if code != 1 {
			t.Fatalf("unknown flag should exit 1, got %d", code)
		}
	})
	if !strings.Contains(errOut, "unknown flag: --frobnicate") {
		t.Errorf("expected unknown flag message, got: %s", errOut)
	}
}

func TestRunNavigateCommandUsageError(t *testing.T) {
	err := runNavigateCommand(nil)
	if err == nil {
		t.Fatal("expected usage error for missing url")
	}
	if !strings.Contains(err.Error(), "usage:") {
		t.Errorf("expected usage message, got: %v", err)
	}
}

func TestRunSearchCommandUsageError(t *testing.T) {
	err := runSearchCommand(nil)
	if err == nil {
		t.Fatal("expected usage error for missing query")
	}
	if !strings.Contains(err.Error(), "usage:") {
		t.Errorf("expected usage message, got: %v", err)
	}
}

func TestRunSnapshotCommandUsageError(t *testing.T) {
	err := runSnapshotCommand(nil)
	if err == nil {
		t.Fatal("expected usage error for missing url")
	}
	if !strings.Contains(err.Error(), "usage:") {
		t.Errorf("expected usage message, got: %v", err)
	}
}

func TestRunScreenshotCommandUsageError(t *testing.T) {
	err := runScreenshotCommand(nil)
	if err == nil {
		t.Fatal("expected usage error for missing url")
	}
	if !strings.Contains(err.Error(), "usage:") {
		t.Errorf("expected usage message, got: %v", err)
	}
}

func TestRunConfigCommandUnknownSubcommand(t *testing.T) {
	err := runConfigCommand([]string{"rotate"})
	if err == nil {
		t.Fatal("expected error for unknown config subcommand")
	}
	if !strings.Contains(err.Error(), "unknown config subcommand") {
		t.Errorf("expected unknown subcommand message, got: %v", err)
	}
}

func TestRunConfigCheck(t *testing.T) {
	saveGlobalFlags(t)
	t.Setenv("WEBPILOT_ADAPTER", "")
	t.Setenv("WEBPILOT_BRAVE_API_KEY", "")
	t.Setenv("BRAVE_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("adapter: webcli\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	configPath = path

	out := captureStdout(t, func() {
		if err := runConfigCommand([]string{"check"}); err != nil {
			t.Fatalf("config check: %v", err)
		}
	})
	if !strings.Contains(out, "Configuration OK") {
		t.Errorf("expected OK banner, got: %s", out)
	}
	if !strings.Contains(out, "webcli") {
		t.Errorf("expected adapter from file, got: %s", out)
	}
	if !strings.Contains(out, "not set") {
		t.Errorf("expected brave key status, got: %s", out)
	}
}

func TestRunConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out := captureStdout(t, func() {
		if err := runConfigCommand([]string{"path"}); err != nil {
			t.Fatalf("config path: %v", err)
		}
	})
	if !strings.Contains(out, ".webpilot") {
		t.Errorf("expected config locations, got: %s", out)
	}
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", browser.NewInvalidError("missing selector"), 2},
		{"precondition wrapped", browser.WrapInvalidError("screenshot needs a page", browser.ErrNoCurrentURL), 2},
		{"timeout", browser.NewTimeoutError("navigate", 30*time.Second), 124},
		{"navigation failure", browser.NewNavigationError("https://example.com", errors.New("dns")), 1},
		{"plain error", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		if got := exitCodeForError(tt.err); got != tt.want {
			t.Errorf("%s: exitCodeForError = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)
	return string(out)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	fn()
	_ = w.Close()
	os.Stderr = old
	out, _ := io.ReadAll(r)
	return string(out)
}

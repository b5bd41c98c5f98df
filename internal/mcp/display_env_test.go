package mcp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubEnv replaces the process environment seen by ensureDisplayEnv.
func stubEnv(t *testing.T, env map[string]string) {
	t.Helper()
	origGet, origSet := getenvFn, setenvFn
	getenvFn = func(key string) string { return env[key] }
	setenvFn = func(key, value string) error {
		env[key] = value
		return nil
	}
	t.Cleanup(func() {
		getenvFn, setenvFn = origGet, origSet
	})
}

func TestEnsureDisplayEnv_KeepsExistingDisplay(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":99", "/tmp/should-not-be-used" },
		func(string) string { return ":88" },
	)
	defer restore()

	env := map[string]string{"DISPLAY": ":7"}
	stubEnv(t, env)

	if err := ensureDisplayEnv(); err != nil {
		t.Fatalf("ensureDisplayEnv returned error: %v", err)
	}
	if env["DISPLAY"] != ":7" {
		t.Fatalf("DISPLAY = %q, want %q", env["DISPLAY"], ":7")
	}
	if _, ok := env["XAUTHORITY"]; ok {
		t.Fatalf("XAUTHORITY should not be touched when DISPLAY is set")
	}
}

func TestEnsureDisplayEnv_UsesDetectedSession(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":5", "/tmp/xauth-detected" },
		func(string) string { return "" },
	)
	defer restore()

	env := map[string]string{}
	stubEnv(t, env)

	if err := ensureDisplayEnv(); err != nil {
		t.Fatalf("ensureDisplayEnv returned error: %v", err)
	}
	if env["DISPLAY"] != ":5" {
		t.Fatalf("DISPLAY = %q, want %q", env["DISPLAY"], ":5")
	}
	if env["XAUTHORITY"] != "/tmp/xauth-detected" {
		t.Fatalf("XAUTHORITY = %q, want %q", env["XAUTHORITY"], "/tmp/xauth-detected")
	}
}

func TestEnsureDisplayEnv_FallsBackToSocketAndHomeXAuthority(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return ":1" },
	)
	defer restore()

	home := t.TempDir()
	t.Setenv("HOME", home)
	xauth := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(xauth, []byte("cookie"), 0600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}

	env := map[string]string{}
	stubEnv(t, env)

	if err := ensureDisplayEnv(); err != nil {
		t.Fatalf("ensureDisplayEnv returned error: %v", err)
	}
	if env["DISPLAY"] != ":1" {
		t.Fatalf("DISPLAY = %q, want %q", env["DISPLAY"], ":1")
	}
	if env["XAUTHORITY"] != xauth {
		t.Fatalf("XAUTHORITY = %q, want %q", env["XAUTHORITY"], xauth)
	}
}

func TestEnsureDisplayEnv_ReturnsClearErrorWhenDisplayUnavailable(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()
	stubEnv(t, map[string]string{})

	err := ensureDisplayEnv()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no X display found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDetectDisplayFromSockets(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"X0", "X2", "not-a-display"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if got := detectDisplayFromSockets(dir); got != ":2" {
		t.Fatalf("detectDisplayFromSockets = %q, want %q", got, ":2")
	}
}

func TestParseLoginctlSessions(t *testing.T) {
	out := strings.Join([]string{
		"1 1000 george seat0",
		"2 1001 alice seat0",
		"3 1000 george seat1",
		"",
	}, "\n")
	got := parseLoginctlSessions(out, "1000")
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("parseLoginctlSessions = %v, want [1 3]", got)
	}
}

func TestReadProcEnviron(t *testing.T) {
	orig := readFileFn
	readFileFn = func(path string) ([]byte, error) {
		if path != "/proc/42/environ" {
			t.Fatalf("unexpected path %q", path)
		}
		return []byte("DISPLAY=:3\x00XAUTHORITY=/run/user/1000/xauth\x00junk\x00"), nil
	}
	defer func() { readFileFn = orig }()

	env, err := readProcEnviron("42")
	if err != nil {
		t.Fatalf("readProcEnviron: %v", err)
	}
	if env["DISPLAY"] != ":3" || env["XAUTHORITY"] != "/run/user/1000/xauth" || len(env) != 2 {
		t.Fatalf("unexpected env %v", env)
	}
}

func stubDetectFns(
	detectSession func() (string, string),
	detectSocket func(string) string,
) func() {
	origSession := detectSessionX11EnvFn
	origSocket := detectDisplayFromSocketFn
	detectSessionX11EnvFn = detectSession
	detectDisplayFromSocketFn = detectSocket
	return func() {
		detectSessionX11EnvFn = origSession
		detectDisplayFromSocketFn = origSocket
	}
}

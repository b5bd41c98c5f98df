package mcp

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	getenvFn                  = os.Getenv
	setenvFn                  = os.Setenv
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// ensureDisplayEnv fills in DISPLAY and XAUTHORITY for this process when the
// MCP server was launched without a graphical session environment, so that
// windows can still reach the user's X server.
func ensureDisplayEnv() error {
	display := strings.TrimSpace(getenvFn("DISPLAY"))
	xauthority := strings.TrimSpace(getenvFn("XAUTHORITY"))
	if display != "" {
		return nil
	}

	detectedDisplay, detectedXAuthority := detectSessionX11EnvFn()
	display = strings.TrimSpace(detectedDisplay)
	if xauthority == "" {
		xauthority = strings.TrimSpace(detectedXAuthority)
	}
	if display == "" {
		display = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if display == "" {
		return fmt.Errorf("no X display found; export DISPLAY for the MCP server")
	}

	if xauthority == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				xauthority = candidate
			}
		}
	}

	if err := setenvFn("DISPLAY", display); err != nil {
		return err
	}
	if xauthority != "" {
		return setenvFn("XAUTHORITY", xauthority)
	}
	return nil
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Display"))
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}

		xauth := ""
		leader := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Leader"))
		if leader != "" && leader != "0" {
			if envMap, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(envMap["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(envMap["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		if fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		env[key] = value
	}
	return env, nil
}

// detectDisplayFromSockets picks the highest numbered X server socket.
func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}

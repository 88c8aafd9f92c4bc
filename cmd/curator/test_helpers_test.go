package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/session"
	"curator/internal/testsupport"
)

type cliTestEnv struct {
	svc        *testsupport.ControlService
	configPath string
	stateDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	svc := testsupport.NewControlService(t)
	base := t.TempDir()
	stateDir := filepath.Join(base, "state")
	configPath := filepath.Join(base, "config.toml")

	content := fmt.Sprintf(
		"[remote]\nbase_url = %q\ntimeout_seconds = 5\n\n[paths]\nstate_dir = %q\n\n[sync]\npoll_interval_seconds = 1\n\n[logging]\nlevel = \"error\"\n",
		svc.URL(), stateDir,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	return &cliTestEnv{svc: svc, configPath: configPath, stateDir: stateDir}
}

// signIn seeds a valid session token, bypassing the login command.
func (e *cliTestEnv) signIn(t *testing.T) {
	t.Helper()
	store := session.NewStore(filepath.Join(e.stateDir, "token"))
	if err := store.Save(testsupport.IssuedToken); err != nil {
		t.Fatalf("seed session token: %v", err)
	}
}

func (e *cliTestEnv) tokenPath() string {
	return filepath.Join(e.stateDir, "token")
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

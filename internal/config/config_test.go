package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadProject(t *testing.T) {
	dir := writeConfig(t, `
server:
  addr: ":8080"
data:
  dir: /srv/klaro
solver:
  timeout: 90s
  output_encoding: windows-1252
  search_roots: [/opt/R]
log:
  level: debug
  format: json
`)
	cfg, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Server.PortAttempts != 11 {
		t.Errorf("server.port_attempts = %d, want default 11", cfg.Server.PortAttempts)
	}
	if cfg.Data.Dir != "/srv/klaro" {
		t.Errorf("data.dir = %q, want /srv/klaro", cfg.Data.Dir)
	}
	if cfg.Solver.Timeout != 90*time.Second {
		t.Errorf("solver.timeout = %v, want 90s", cfg.Solver.Timeout)
	}
	if cfg.Solver.Script != "R/Minimization.R" {
		t.Errorf("solver.script = %q, want default", cfg.Solver.Script)
	}
	if cfg.Solver.EnvVar != "RSCRIPT_PATH" {
		t.Errorf("solver.env_var = %q, want RSCRIPT_PATH", cfg.Solver.EnvVar)
	}
	if len(cfg.Solver.SearchRoots) != 1 || cfg.Solver.SearchRoots[0] != "/opt/R" {
		t.Errorf("solver.search_roots = %v, want [/opt/R]", cfg.Solver.SearchRoots)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v, want debug/json", cfg.Log)
	}
}

func TestLoadProjectMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if cfg.Data.Dir != dir {
		t.Errorf("data.dir = %q, want %q", cfg.Data.Dir, dir)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("server.addr = %q, want :3000", cfg.Server.Addr)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := writeConfig(t, "server: [unclosed")
	if _, err := LoadProject(dir); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KLARO_ADDR", ":9999")
	t.Setenv("KLARO_SOLVER_TIMEOUT", "5s")
	t.Setenv("KLARO_LOG_LEVEL", "warn")
	t.Setenv("KLARO_DATA_DIR", "/tmp/k")

	cfg, err := LoadProject(writeConfig(t, "server:\n  addr: \":8080\"\n"))
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q, want env value :9999", cfg.Server.Addr)
	}
	if cfg.Solver.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Solver.Timeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Data.Dir != "/tmp/k" {
		t.Errorf("data.dir = %q, want /tmp/k", cfg.Data.Dir)
	}
}

func TestBadEnvTimeout(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == "KLARO_SOLVER_TIMEOUT" {
			return "soon", true
		}
		return "", false
	})
	if err == nil {
		t.Error("expected an error for an unparseable timeout")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }, false},
		{"negative timeout", func(c *Config) { c.Solver.Timeout = -time.Second }, false},
		{"zero port attempts", func(c *Config) { c.Server.PortAttempts = 0 }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		err := cfg.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

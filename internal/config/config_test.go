package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/fileget/internal/protocol/session"
	"github.com/danmuck/fileget/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Session.Timeout != 31*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.Session.Timeout)
	}
}

func TestLoadOverlaysDefinedKeys(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
timeout = "5s"
output_dir = "downloads"
summary = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Timeout != 5*time.Second {
		t.Fatalf("timeout not applied: %v", cfg.Session.Timeout)
	}
	if cfg.OutputDir != "downloads" || !cfg.Summary {
		t.Fatalf("unexpected overlay: %+v", cfg)
	}
	if cfg.Session.Agent != session.DefaultAgent || cfg.LogLevel != "info" {
		t.Fatalf("undefined keys lost their defaults: %+v", cfg)
	}
}

func TestTemplateMatchesDefaults(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("template diverges from defaults: %+v", cfg)
	}
	written, err := os.ReadFile(path)
	if err != nil || string(written) != Template() {
		t.Fatalf("written template differs from Template(): %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing config to be kept")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		body string
		want string
	}{
		{`timeout = "soon"`, "parse timeout"},
		{`timeout = "0s"`, "timeout must be positive"},
		{`agent = ""`, "agent"},
		{`max_body_bytes = 0`, "limits"},
		{`output_dir = " "`, "output_dir"},
		{`log_level = "loud"`, "log_level"},
		{`retries = 3`, "unknown key"},
		{`timeout = [`, "load config"},
	}
	for _, tc := range cases {
		_, err := Load(writeConfig(t, tc.body))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%q: expected error containing %q, got %v", tc.body, tc.want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

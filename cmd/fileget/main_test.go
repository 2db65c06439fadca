package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/fileget/internal/protocol/fsp"
	"github.com/danmuck/fileget/internal/testutil/fsptest"
	"github.com/danmuck/fileget/internal/testutil/testlog"
)

type harness struct {
	nameServer string
	files      *fsptest.FileServer
}

func newHarness(t *testing.T, entries map[string]fsptest.Entry) harness {
	t.Helper()
	files := fsptest.NewFileServer(t, fsptest.Catalog(entries))
	names := fsptest.NewNameServer(t, fsptest.Pointing("srv", files.Addr()))
	return harness{nameServer: names.Addr().String(), files: files}
}

func invoke(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunArgumentErrors(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		args []string
		code int
	}{
		{nil, 1},
		{[]string{"-n", "127.0.0.1:1"}, 1},
		{[]string{"-f", "fsp://srv/a"}, 1},
		{[]string{"-x"}, 1},
		{[]string{"-n", "127.0.0.1:1", "-f", "fsp://srv/a", "extra"}, 1},
		{[]string{"-n", "localhost:53", "-f", "fsp://srv/a"}, 2},
		{[]string{"-n", "127.0.0.1:70000", "-f", "fsp://srv/a"}, 2},
		{[]string{"-n", "127.0.0.1:1", "-f", "http://srv/a"}, 3},
		{[]string{"-n", "127.0.0.1:1", "-f", "fsp://srv"}, 3},
		{[]string{"-n", "127.0.0.1:1", "-f", "fsp://srv/../up"}, 3},
		{[]string{"-n", "127.0.0.1:1", "-f", "fsp://srv/my file.txt"}, 3},
	}
	for _, tc := range cases {
		code, _, stderr := invoke(t, tc.args...)
		if code != tc.code {
			t.Fatalf("%v: expected exit %d, got %d (%s)", tc.args, tc.code, code, stderr)
		}
		if !strings.Contains(stderr, "fileget:") {
			t.Fatalf("%v: missing diagnostic: %q", tc.args, stderr)
		}
	}
}

func TestRunHelp(t *testing.T) {
	testlog.Start(t)
	code, stdout, _ := invoke(t, "-h")
	if code != 0 || !strings.Contains(stdout, "usage: fileget") {
		t.Fatalf("unexpected help: %d %q", code, stdout)
	}
}

func TestRunSingleFile(t *testing.T) {
	testlog.Start(t)
	h := newHarness(t, map[string]fsptest.Entry{"report.txt": fsptest.OK("hello")})
	dir := t.TempDir()

	code, _, stderr := invoke(t, "-n", h.nameServer, "-f", "fsp://srv/report.txt", "-o", dir)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	got, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	if err != nil || string(got) != "hello" {
		t.Fatalf("unexpected file: %q, %v", got, err)
	}
}

func TestRunMissingFilePrintsServerMessage(t *testing.T) {
	testlog.Start(t)
	h := newHarness(t, map[string]fsptest.Entry{
		"missing.txt": fsptest.Fail(fsp.StatusNotFound, "no such f"),
	})

	code, _, stderr := invoke(t, "-n", h.nameServer, "-f", "fsp://srv/missing.txt", "-o", t.TempDir())
	if code != 4 {
		t.Fatalf("expected server exit status, got %d (%s)", code, stderr)
	}
	if !strings.Contains(stderr, "no such f") {
		t.Fatalf("server message not printed: %q", stderr)
	}
	if strings.Count(stderr, "no such f") != 1 {
		t.Fatalf("server message printed more than once: %q", stderr)
	}
}

func TestRunUnknownHost(t *testing.T) {
	testlog.Start(t)
	h := newHarness(t, nil)
	code, _, stderr := invoke(t, "-n", h.nameServer, "-f", "fsp://elsewhere/a", "-o", t.TempDir())
	if code != 4 {
		t.Fatalf("expected server exit status, got %d (%s)", code, stderr)
	}
	if len(h.files.Requests()) != 0 {
		t.Fatalf("file server contacted for an unknown host")
	}
}

func TestRunWildcardWithSummary(t *testing.T) {
	testlog.Start(t)
	h := newHarness(t, map[string]fsptest.Entry{
		"index": fsptest.Index("a.txt", "gone.txt", "b.txt"),
		"a.txt": fsptest.OK("alpha"),
		"b.txt": fsptest.OK("beta"),
	})
	dir := t.TempDir()

	code, stdout, stderr := invoke(t, "-n", h.nameServer, "-f", "fsp://srv/*", "-o", dir, "-summary")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "gone.txt: Not Found") {
		t.Fatalf("per-file failure not reported: %q", stderr)
	}
	if !strings.Contains(strings.ToLower(stdout), "2/3 written") {
		t.Fatalf("summary footer missing written count: %q", stdout)
	}
	for _, name := range []string{"a.txt", "gone.txt", "b.txt"} {
		if !strings.Contains(stdout, name) {
			t.Fatalf("summary missing %s: %q", name, stdout)
		}
	}
	for name, want := range map[string]string{"a.txt": "alpha", "b.txt": "beta"} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil || string(got) != want {
			t.Fatalf("%s: got %q, %v", name, got, err)
		}
	}
}

func TestRunWildcardIndexFailure(t *testing.T) {
	testlog.Start(t)
	h := newHarness(t, map[string]fsptest.Entry{
		"index": fsptest.Fail(fsp.StatusServerError, "index offline"),
	})
	code, _, stderr := invoke(t, "-n", h.nameServer, "-f", "fsp://srv/*", "-o", t.TempDir())
	if code != 6 {
		t.Fatalf("expected response exit status, got %d (%s)", code, stderr)
	}
	if !strings.Contains(stderr, "index offline") {
		t.Fatalf("server message not printed: %q", stderr)
	}
}

func TestRunDirectoryError(t *testing.T) {
	testlog.Start(t)
	h := newHarness(t, map[string]fsptest.Entry{"a/b.txt": fsptest.OK("x")})
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}

	code, _, stderr := invoke(t, "-n", h.nameServer, "-f", "fsp://srv/a/b.txt", "-o", blocker)
	if code != 7 {
		t.Fatalf("expected directory exit status, got %d (%s)", code, stderr)
	}
}

func TestRunConfigFile(t *testing.T) {
	testlog.Start(t)
	h := newHarness(t, map[string]fsptest.Entry{"report.txt": fsptest.OK("hello")})
	dir := t.TempDir()
	out := filepath.Join(dir, "downloads")
	metrics := filepath.Join(dir, "fileget.prom")
	cfgPath := filepath.Join(dir, "fileget.toml")
	body := "timeout = \"2s\"\noutput_dir = " + quote(out) + "\nmetrics_file = " + quote(metrics) + "\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	code, _, stderr := invoke(t, "-n", h.nameServer, "-f", "fsp://srv/report.txt", "-c", cfgPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if got, err := os.ReadFile(filepath.Join(out, "report.txt")); err != nil || string(got) != "hello" {
		t.Fatalf("output_dir not honoured: %q, %v", got, err)
	}
	prom, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(prom), "fileget_fetch_total") {
		t.Fatalf("metrics file missing fetch counter: %s", prom)
	}
}

func TestRunBadConfigIsArgumentError(t *testing.T) {
	testlog.Start(t)
	cfgPath := filepath.Join(t.TempDir(), "fileget.toml")
	if err := os.WriteFile(cfgPath, []byte(`timeout = "never"`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	code, _, _ := invoke(t, "-n", "127.0.0.1:1", "-f", "fsp://srv/a", "-c", cfgPath)
	if code != 1 {
		t.Fatalf("expected argument exit status, got %d", code)
	}
}

// quote renders s as a TOML literal string.
func quote(s string) string {
	return "'" + s + "'"
}

package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	beforeOK := testutil.ToFloat64(fetchTotal.WithLabelValues("success"))
	beforeBytes := testutil.ToFloat64(fetchBytes)

	RecordResolve(ResultOK)
	RecordFetch("Success", 5, 12*time.Millisecond)
	RecordFetch("Not Found", 9, 3*time.Millisecond)

	if got := testutil.ToFloat64(fetchTotal.WithLabelValues("success")); got != beforeOK+1 {
		t.Fatalf("success count got=%v want=%v", got, beforeOK+1)
	}
	if got := testutil.ToFloat64(fetchBytes); got != beforeBytes+14 {
		t.Fatalf("bytes got=%v want=%v", got, beforeBytes+14)
	}
	if got := testutil.ToFloat64(fetchTotal.WithLabelValues("not_found")); got < 1 {
		t.Fatalf("expected not_found label, got=%v", got)
	}
}

func TestWriteMetricsTextfile(t *testing.T) {
	RecordResolve(ResultTimeout)
	path := filepath.Join(t.TempDir(), "fileget.prom")
	if err := WriteMetrics(path); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `fileget_resolve_total{result="timeout"}`) {
		t.Fatalf("missing resolve series:\n%s", data)
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel("Server Error"); got != "server_error" {
		t.Fatalf("unexpected label: %q", got)
	}
}

package diag

import (
	"bytes"
	"testing"

	"github.com/fridacompile/gobundle/internal/tscompile"
)

func TestPlainReporterWithoutSourceFile(t *testing.T) {
	var buf bytes.Buffer
	report := NewReporter(&buf, "/project", false)
	report(tscompile.Diagnostic{Message: "failed to create program"})

	got := buf.String()
	if got != "error TS0: failed to create program\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestCountErrorsWithoutRawDefaultsToError(t *testing.T) {
	diags := []tscompile.Diagnostic{
		{Message: "a"},
		{Message: "b"},
	}
	if got := CountErrors(diags); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
}

func TestLogPipelineError(t *testing.T) {
	var buf bytes.Buffer
	LogPipelineError(&buf, errPipeline{})
	if !bytes.Contains(buf.Bytes(), []byte("bundle error:")) {
		t.Fatalf("expected 'bundle error:' prefix, got %q", buf.String())
	}
}

type errPipeline struct{}

func (errPipeline) Error() string { return "unresolved dependency" }

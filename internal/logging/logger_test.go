package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerPrefixesComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "assets", false)

	logger.Infof("copying to %s", "/out")
	logger.Successf("done")

	out := buf.String()
	if !strings.Contains(out, "assets info: copying to /out") {
		t.Errorf("info line wrong:\n%s", out)
	}
	if !strings.Contains(out, "assets success: done") {
		t.Errorf("success line wrong:\n%s", out)
	}
}

func TestVerboseSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "assets", false)

	logger.Verbosef("noise")
	if buf.Len() != 0 {
		t.Errorf("verbose output written without verbose flag: %q", buf.String())
	}

	logger.Verbose = true
	logger.Verbosef("signal")
	if !strings.Contains(buf.String(), "signal") {
		t.Error("verbose output missing with verbose flag")
	}
}

func TestNilWriterIsSafe(t *testing.T) {
	logger := Logger{}
	logger.Infof("into the void")
	logger.Successf("still fine")
	logger.Measure("noop")()
}

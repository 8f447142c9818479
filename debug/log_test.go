package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	Disable()
	Log("sched", "tick %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("dispatch", "step=%d at=%.3f", 4, 0.5)
	line := buf.String()
	if !strings.Contains(line, "dispatch") || !strings.Contains(line, "step=4 at=0.500") {
		t.Errorf("unexpected line %q", line)
	}
}

func TestLogEveryThrottles(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(4, "late", "overrun")
	}
	// calls 1, 5 and 9 are written
	if want, got := 3, strings.Count(buf.String(), "overrun"); want != got {
		t.Errorf("want %d lines, got %d:\n%s", want, got, buf.String())
	}
}

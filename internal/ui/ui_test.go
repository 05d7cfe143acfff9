package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutcomeConstructorsMatchVocabulary(t *testing.T) {
	if Cached("build").Outcome != "cached" {
		t.Fatal("expected Cached outcome literal to be 'cached'")
	}
	if Cloud("build").Outcome != "cloud" {
		t.Fatal("expected Cloud outcome literal to be 'cloud'")
	}
	if Ok("build", 42).Outcome != "ok in 42ms" {
		t.Fatalf("expected duration-formatted outcome, got %q", Ok("build", 42).Outcome)
	}
	l := Failed("build", "exit code 1")
	if l.Outcome != "failed: exit code 1" || !l.Failed {
		t.Fatalf("expected a failed outcome carrying the message, got %+v", l)
	}
}

func TestPrintIncludesTaskNameAndOutcome(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, Ok("build", 10))
	if !strings.Contains(buf.String(), "build") || !strings.Contains(buf.String(), "ok in 10ms") {
		t.Fatalf("expected task name and outcome in output, got %q", buf.String())
	}
}

func TestSummaryReportsOkAndFailedCounts(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, 3, 1)
	if buf.String() != "3 ok, 1 failed\n" {
		t.Fatalf("expected '3 ok, 1 failed', got %q", buf.String())
	}
}

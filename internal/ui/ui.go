// Package ui renders neex's one-summary-line-per-task output.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsTTY is true when stdout appears to be a terminal, gating color output.
var IsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var (
	green = color.New(color.FgGreen)
	cyan  = color.New(color.FgCyan)
	red   = color.New(color.FgRed, color.Bold)
	gray  = color.New(color.Faint)
)

// TaskLine is the rendered content for one task's summary line: the task
// name plus the outcome text, one of `cached`/`cloud`/`ok in Xms`/
// `failed: <message>`.
type TaskLine struct {
	Task    string
	Outcome string
	Failed  bool
}

// Cached renders a local-cache-hit outcome.
func Cached(task string) TaskLine {
	return TaskLine{Task: task, Outcome: "cached"}
}

// Cloud renders a remote- or peer-cache-hit outcome.
func Cloud(task string) TaskLine {
	return TaskLine{Task: task, Outcome: "cloud"}
}

// Ok renders a freshly executed, successful outcome with its duration.
func Ok(task string, durationMS int64) TaskLine {
	return TaskLine{Task: task, Outcome: fmt.Sprintf("ok in %dms", durationMS)}
}

// Failed renders a failed outcome carrying the task's error message.
func Failed(task, message string) TaskLine {
	return TaskLine{Task: task, Outcome: "failed: " + message, Failed: true}
}

// Print writes one rendered line for l to w, colorized when IsTTY.
func Print(w io.Writer, l TaskLine) {
	label := gray.Sprint(l.Task)
	outcome := l.Outcome
	if IsTTY {
		switch {
		case l.Failed:
			outcome = red.Sprint(l.Outcome)
		case l.Outcome == "cached" || l.Outcome == "cloud":
			outcome = cyan.Sprint(l.Outcome)
		default:
			outcome = green.Sprint(l.Outcome)
		}
	}
	fmt.Fprintf(w, "%s %s\n", label, outcome)
}

// Summary writes the final "N ok, M failed" line for multi-task runs.
func Summary(w io.Writer, ok, failed int) {
	fmt.Fprintf(w, "%d ok, %d failed\n", ok, failed)
}

// Package scm is the hook point for a future `--changed` mode that would
// scope a run to only the packages touched since some baseline commit.
// It is deliberately left unwired for now.
package scm

import "context"

// ChangedSince is the signature of a function returning the paths modified
// since baseline. Nothing in this module implements or calls it.
type ChangedSince func(ctx context.Context, baseline string) ([]string, error)

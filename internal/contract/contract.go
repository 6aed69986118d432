// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/capcurve/capcurve/schema"
)

// GitClient defines the git operations commit extraction needs.
// This allows the scan pipeline to be tested without a real git executable.
type GitClient interface {
	// Run executes a git command and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// CommitLog returns one hash|date|subject line per commit across all refs.
	CommitLog(ctx context.Context, repoPath string) ([]byte, error)

	// NumstatLog returns per-commit numstat blocks across all refs, with
	// a bare commit hash line delimiting each block.
	NumstatLog(ctx context.Context, repoPath string) ([]byte, error)

	// AddedFilesLog returns per-commit blocks of newly added paths across
	// all refs, each block headed by a COMMIT:<hash> line.
	AddedFilesLog(ctx context.Context, repoPath string) ([]byte, error)
}

// HistoryStore archives completed scan runs in a database.
// This allows mocking the store for testing.
type HistoryStore interface {
	// Init ensures the backing schema exists and is current.
	Init() error

	// Put archives one completed run with its full report JSON and
	// returns the assigned row id.
	Put(rec schema.RunRecord, report []byte) (int64, error)

	// Latest returns the most recent run and its report JSON, or nil
	// when the store is empty.
	Latest() (*schema.RunRecord, []byte, error)

	// List returns up to limit runs, newest first.
	List(limit int) ([]schema.RunRecord, error)

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// Package sync drives the import pipeline: discover archives, open
// them, parse and reconcile metadata, render destination names, and
// repackage into the library. Archives are processed concurrently with
// per-archive state tracked in the queue store; one bad archive fails
// alone, never the run.
package sync

// Package queue persists per-archive pipeline state in SQLite.
//
// Each discovered archive becomes an item that walks the processing
// lifecycle; the same database also stores the last-processed markers
// that let unchanged archives skip the pipeline entirely. The store is
// safe for concurrent use by the sync worker pool.
package queue

// Package reconcile folds the metadata documents of an archive into one
// canonical record. MetronInfo fields always win, ComicInfo fills the
// gaps, the legacy document fills what is still empty, and lookup
// results only ever land in fields no document provided.
package reconcile

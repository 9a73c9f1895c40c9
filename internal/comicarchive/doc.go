// Package comicarchive reads and writes the four comic container formats
// (cbz, cbt, cbr, cb7) behind one uniform contract.
//
// Containers are identified by content signature rather than extension so
// mislabelled files still open. Open returns entries in container order;
// Write rebuilds a container from scratch, normalizing metadata documents to
// canonical root names at the front while content entries keep their relative
// order. CBR is read-only by design.
package comicarchive

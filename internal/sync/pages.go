package sync

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"longbox/internal/comicarchive"
	"longbox/internal/fileutil"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
	".jxl":  {},
}

func isImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(name))]
	return ok
}

// renamePages renames page images to <stem>_<index>, zero-padded to the
// digit count of the page total, and reorders them into natural reading
// order. Archives whose pages already carry the stem prefix are left alone.
func renamePages(entries []comicarchive.Entry, stem string) []comicarchive.Entry {
	byName := make(map[string]comicarchive.Entry)
	var names []string
	rest := make([]comicarchive.Entry, 0, len(entries))
	for _, entry := range entries {
		if isImage(entry.Name) {
			byName[entry.Name] = entry
			names = append(names, entry.Name)
		} else {
			rest = append(rest, entry)
		}
	}
	if len(names) == 0 {
		return entries
	}

	allPrefixed := true
	for _, name := range names {
		if !strings.HasPrefix(path.Base(name), stem) {
			allPrefixed = false
			break
		}
	}
	if allPrefixed {
		return entries
	}

	fileutil.SortNatural(names)
	pad := len(strconv.Itoa(len(names)))
	out := rest
	for idx, name := range names {
		entry := byName[name]
		entry.Name = fmt.Sprintf("%s_%0*d%s", stem, pad, idx, strings.ToLower(path.Ext(name)))
		out = append(out, entry)
	}
	return out
}

// cleanupExtras drops entries that are neither metadata documents nor
// page images.
func cleanupExtras(entries []comicarchive.Entry) []comicarchive.Entry {
	kept := make([]comicarchive.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsMetadata() || isImage(entry.Name) {
			kept = append(kept, entry)
		}
	}
	return kept
}

package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// natural orders strings the way a human reads them: case-insensitive with
// embedded numbers compared by value, so page_2 sorts before page_10.
var natural = collate.New(language.Und, collate.Numeric, collate.IgnoreCase)

// SortNatural sorts the slice in place using numeric-aware collation.
func SortNatural(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return natural.CompareString(values[i], values[j]) < 0
	})
}

// ListFiles walks root recursively and returns every regular file whose
// extension is in extensions (lowercase, with dot; empty matches all),
// skipping dotfiles. Results are in natural order.
func ListFiles(root string, extensions ...string) ([]string, error) {
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		if len(extSet) > 0 {
			if _, ok := extSet[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	SortNatural(files)
	return files, nil
}

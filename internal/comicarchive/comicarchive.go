package comicarchive

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Canonical in-archive metadata document names. LegacyMetadataEntry is
// recognized on read for backward compatibility but never written.
const (
	MetronInfoEntry     = "MetronInfo.xml"
	ComicInfoEntry      = "ComicInfo.xml"
	LegacyMetadataEntry = "Metadata.xml"
)

var (
	// ErrUnsupportedFormat marks containers whose signature is not one of
	// the supported kinds, or write requests for read-only kinds.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	// ErrCorruptArchive marks containers whose structural parsing fails.
	ErrCorruptArchive = errors.New("corrupt archive")
)

// Entry is an ordered (name, raw bytes) pair inside a container.
type Entry struct {
	Name string
	Data []byte
}

// IsMetadata reports whether the entry carries one of the recognized
// metadata document names, at the archive root or behind a directory prefix.
func (e Entry) IsMetadata() bool {
	_, ok := MetadataName(e.Name)
	return ok
}

// MetadataName resolves an entry name to its canonical metadata document
// name, matching case-insensitively at the archive root or behind a
// directory prefix.
func MetadataName(name string) (string, bool) {
	base := path.Base(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	for _, canonical := range []string{MetronInfoEntry, ComicInfoEntry, LegacyMetadataEntry} {
		if strings.EqualFold(base, canonical) {
			return canonical, true
		}
	}
	return "", false
}

// Open parses the container and returns its kind plus entries in container
// order. Directory entries are skipped; file bytes are read eagerly so the
// caller owns the result independent of the source buffer's lifetime.
func Open(data []byte) (Kind, []Entry, error) {
	kind, err := Detect(data)
	if err != nil {
		return "", nil, err
	}

	var entries []Entry
	switch kind {
	case KindCBZ:
		entries, err = readZip(data)
	case KindCBT:
		entries, err = readTar(data)
	case KindCBR:
		entries, err = readRar(data)
	case KindCB7:
		entries, err = readSevenZip(data)
	}
	if err != nil {
		return kind, nil, err
	}
	return kind, entries, nil
}

// Write serializes entries into a fresh container of the requested kind.
// Metadata-document entries are normalized: renamed to their canonical root
// name and moved to the front (MetronInfo before ComicInfo), while content
// entries keep their original relative order. Legacy unified metadata
// documents are dropped, as that schema is read-only. Each call builds the
// container from scratch, so format-specific replace semantics never leak to
// callers.
func Write(kind Kind, entries []Entry) ([]byte, error) {
	if !kind.Writable() {
		return nil, fmt.Errorf("%w: cannot write %s archives", ErrUnsupportedFormat, kind)
	}

	ordered := normalizeOrder(entries)
	switch kind {
	case KindCBZ:
		return writeZip(ordered)
	case KindCBT:
		return writeTar(ordered)
	case KindCB7:
		return writeSevenZip(ordered)
	default:
		return nil, fmt.Errorf("%w: cannot write %s archives", ErrUnsupportedFormat, kind)
	}
}

func normalizeOrder(entries []Entry) []Entry {
	var metron, comic *Entry
	content := make([]Entry, 0, len(entries))
	for i := range entries {
		entry := entries[i]
		name, _ := MetadataName(entry.Name)
		switch name {
		case MetronInfoEntry:
			if metron == nil {
				metron = &Entry{Name: MetronInfoEntry, Data: entry.Data}
			}
		case ComicInfoEntry:
			if comic == nil {
				comic = &Entry{Name: ComicInfoEntry, Data: entry.Data}
			}
		case LegacyMetadataEntry:
			// Never written.
		default:
			content = append(content, entry)
		}
	}

	ordered := make([]Entry, 0, len(content)+2)
	if metron != nil {
		ordered = append(ordered, *metron)
	}
	if comic != nil {
		ordered = append(ordered, *comic)
	}
	return append(ordered, content...)
}

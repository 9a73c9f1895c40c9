package metadata

import (
	"errors"

	"longbox/internal/comicarchive"
)

// ErrParse marks a metadata document that could not be decoded. The
// archive itself is fine; only the metadata payload is rejected.
var ErrParse = errors.New("malformed metadata document")

// Documents holds every metadata document found inside one archive.
// Any pointer may be nil when the archive does not carry that document.
type Documents struct {
	Metron *MetronInfo
	Comic  *ComicInfo
	Legacy *LegacyMetadata
}

// Empty reports whether no document was found at all.
func (d Documents) Empty() bool {
	return d.Metron == nil && d.Comic == nil && d.Legacy == nil
}

// Extract parses the recognized metadata entries of an archive. When a
// document name appears more than once the first entry wins. A document
// that fails to decode fails the whole extraction.
func Extract(entries []comicarchive.Entry) (Documents, error) {
	var docs Documents
	for _, entry := range entries {
		name, ok := comicarchive.MetadataName(entry.Name)
		if !ok {
			continue
		}
		switch name {
		case comicarchive.MetronInfoEntry:
			if docs.Metron != nil {
				continue
			}
			parsed, err := ParseMetronInfo(entry.Data)
			if err != nil {
				return Documents{}, err
			}
			docs.Metron = parsed
		case comicarchive.ComicInfoEntry:
			if docs.Comic != nil {
				continue
			}
			parsed, err := ParseComicInfo(entry.Data)
			if err != nil {
				return Documents{}, err
			}
			docs.Comic = parsed
		case comicarchive.LegacyMetadataEntry:
			if docs.Legacy != nil {
				continue
			}
			parsed, err := ParseLegacyMetadata(entry.Data)
			if err != nil {
				return Documents{}, err
			}
			docs.Legacy = parsed
		}
	}
	return docs, nil
}

// Render serializes the writable documents back into archive entries,
// MetronInfo first. The legacy document is never rendered.
func (d Documents) Render() ([]comicarchive.Entry, error) {
	var entries []comicarchive.Entry
	if d.Metron != nil {
		data, err := d.Metron.Serialize()
		if err != nil {
			return nil, err
		}
		entries = append(entries, comicarchive.Entry{Name: comicarchive.MetronInfoEntry, Data: data})
	}
	if d.Comic != nil {
		data, err := d.Comic.Serialize()
		if err != nil {
			return nil, err
		}
		entries = append(entries, comicarchive.Entry{Name: comicarchive.ComicInfoEntry, Data: data})
	}
	return entries, nil
}

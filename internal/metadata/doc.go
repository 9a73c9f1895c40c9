// Package metadata parses and serializes the XML metadata documents
// carried inside comic archives. MetronInfo.xml and ComicInfo.xml are
// both read and written; the legacy Metadata.xml document is recognized
// on read only and never written back.
package metadata

package metadata

import (
	"encoding/xml"
	"fmt"
)

// LegacyMetadata is the retired unified Metadata.xml schema. It is
// recognized so archives written by older tooling can still be imported,
// but it is never written back and the archive writer drops the entry.
type LegacyMetadata struct {
	XMLName xml.Name     `xml:"Metadata"`
	Issue   LegacyIssue  `xml:"Issue"`
	Notes   string       `xml:"Notes,omitempty"`
	Meta    *LegacyStamp `xml:"Meta,omitempty"`
}

// LegacyIssue is the issue block of the legacy schema. Language sits on
// the element as an attribute rather than inside the series block.
type LegacyIssue struct {
	Series    LegacySeries `xml:"Series"`
	Number    string       `xml:"Number,omitempty"`
	Title     string       `xml:"Title,omitempty"`
	CoverDate *Date        `xml:"CoverDate,omitempty"`
	StoreDate *Date        `xml:"StoreDate,omitempty"`
	Format    string       `xml:"Format,omitempty"`
	Language  string       `xml:"language,attr,omitempty"`
	PageCount int          `xml:"PageCount,omitempty"`
	Summary   string       `xml:"Summary,omitempty"`
}

// LegacySeries nests the publisher name inside the series block.
type LegacySeries struct {
	Publisher LegacyPublisher `xml:"Publisher"`
	Title     string          `xml:"Title,omitempty"`
	Volume    int             `xml:"Volume,omitempty"`
	StartYear int             `xml:"StartYear,omitempty"`
}

// LegacyPublisher holds the publisher title of the legacy schema.
type LegacyPublisher struct {
	Title string `xml:"Title,omitempty"`
}

// LegacyStamp records which tool wrote the document and when.
type LegacyStamp struct {
	Date *Date  `xml:"Date,omitempty"`
	Tool string `xml:"Tool,omitempty"`
}

// ParseLegacyMetadata decodes a legacy Metadata.xml document.
func ParseLegacyMetadata(data []byte) (*LegacyMetadata, error) {
	doc := new(LegacyMetadata)
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: Metadata.xml: %s", ErrParse, err)
	}
	return doc, nil
}

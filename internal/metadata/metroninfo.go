package metadata

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// MetronInfo is the authoritative metadata schema. When both documents
// are present its fields win over ComicInfo for every field they share.
type MetronInfo struct {
	XMLName         xml.Name     `xml:"MetronInfo"`
	IDS             []SourceID   `xml:"IDS>ID,omitempty"`
	Publisher       *Publisher   `xml:"Publisher,omitempty"`
	Series          *SeriesInfo  `xml:"Series,omitempty"`
	CollectionTitle string       `xml:"CollectionTitle,omitempty"`
	Number          string       `xml:"Number,omitempty"`
	Stories         []string     `xml:"Stories>Story,omitempty"`
	Summary         string       `xml:"Summary,omitempty"`
	Notes           string       `xml:"Notes,omitempty"`
	CoverDate       *Date        `xml:"CoverDate,omitempty"`
	StoreDate       *Date        `xml:"StoreDate,omitempty"`
	PageCount       int          `xml:"PageCount,omitempty"`
	Genres          []string     `xml:"Genres>Genre,omitempty"`
	Characters      []string     `xml:"Characters>Character,omitempty"`
	Teams           []string     `xml:"Teams>Team,omitempty"`
	Locations       []string     `xml:"Locations>Location,omitempty"`
	GTIN            *GTIN        `xml:"GTIN,omitempty"`
	AgeRating       string       `xml:"AgeRating,omitempty"`
	URLs            []InfoURL    `xml:"URLs>URL,omitempty"`
	Arcs            []Arc        `xml:"Arcs>Arc,omitempty"`
	Credits         []Credit     `xml:"Credits>Credit,omitempty"`
	LastModified    string       `xml:"LastModified,omitempty"`
}

// SourceID names an issue identifier at an upstream data source. At most
// one ID is flagged primary.
type SourceID struct {
	Source  string `xml:"source,attr"`
	Primary bool   `xml:"primary,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// Publisher carries the publisher block shared by both schemas.
type Publisher struct {
	ID      string `xml:"id,attr,omitempty"`
	Name    string `xml:"Name,omitempty"`
	Imprint string `xml:"Imprint,omitempty"`
}

// SeriesInfo is the MetronInfo series block. Lang is a BCP-47 tag.
type SeriesInfo struct {
	ID         string `xml:"id,attr,omitempty"`
	Lang       string `xml:"lang,attr,omitempty"`
	Name       string `xml:"Name,omitempty"`
	SortName   string `xml:"SortName,omitempty"`
	Volume     int    `xml:"Volume,omitempty"`
	Format     string `xml:"Format,omitempty"`
	StartYear  int    `xml:"StartYear,omitempty"`
	IssueCount int    `xml:"IssueCount,omitempty"`
}

// GTIN groups the barcode identifiers of a printed issue.
type GTIN struct {
	ISBN string `xml:"ISBN,omitempty"`
	UPC  string `xml:"UPC,omitempty"`
}

// InfoURL is a reference link, optionally flagged primary.
type InfoURL struct {
	Primary bool   `xml:"primary,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// Arc places the issue inside a story arc.
type Arc struct {
	Name   string `xml:"Name,omitempty"`
	Number int    `xml:"Number,omitempty"`
}

// Credit attributes one creator with one or more roles.
type Credit struct {
	Creator string   `xml:"Creator,omitempty"`
	Roles   []string `xml:"Roles>Role,omitempty"`
}

// PrimaryID returns the source identifier flagged primary, or the first
// one listed when none is flagged.
func (m *MetronInfo) PrimaryID() *SourceID {
	if m == nil || len(m.IDS) == 0 {
		return nil
	}
	for i := range m.IDS {
		if m.IDS[i].Primary {
			return &m.IDS[i]
		}
	}
	return &m.IDS[0]
}

// ParseMetronInfo decodes a MetronInfo.xml document. A well formed XML
// document with the wrong root element is still a parse failure.
func ParseMetronInfo(data []byte) (*MetronInfo, error) {
	doc := new(MetronInfo)
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: MetronInfo.xml: %s", ErrParse, err)
	}
	return doc, nil
}

// Serialize renders the document with an XML declaration, indented the
// way the tooling that produced the source archives does.
func (m *MetronInfo) Serialize() ([]byte, error) {
	return serialize(m)
}

func serialize(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize metadata: %w", err)
	}
	var buf strings.Builder
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return []byte(buf.String()), nil
}

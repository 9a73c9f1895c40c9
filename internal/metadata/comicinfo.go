package metadata

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// ComicInfo is the secondary metadata schema. It only fills fields the
// MetronInfo document leaves empty.
type ComicInfo struct {
	XMLName         xml.Name `xml:"ComicInfo"`
	Title           string   `xml:"Title,omitempty"`
	Series          string   `xml:"Series,omitempty"`
	Number          string   `xml:"Number,omitempty"`
	Count           int      `xml:"Count,omitempty"`
	Volume          int      `xml:"Volume,omitempty"`
	AlternateSeries string   `xml:"AlternateSeries,omitempty"`
	Summary         string   `xml:"Summary,omitempty"`
	Notes           string   `xml:"Notes,omitempty"`
	Year            int      `xml:"Year,omitempty"`
	Month           int      `xml:"Month,omitempty"`
	Day             int      `xml:"Day,omitempty"`
	Writer          string   `xml:"Writer,omitempty"`
	Penciller       string   `xml:"Penciller,omitempty"`
	Inker           string   `xml:"Inker,omitempty"`
	Colorist        string   `xml:"Colorist,omitempty"`
	Letterer        string   `xml:"Letterer,omitempty"`
	CoverArtist     string   `xml:"CoverArtist,omitempty"`
	Editor          string   `xml:"Editor,omitempty"`
	Publisher       string   `xml:"Publisher,omitempty"`
	Imprint         string   `xml:"Imprint,omitempty"`
	Genre           string   `xml:"Genre,omitempty"`
	Web             string   `xml:"Web,omitempty"`
	PageCount       int      `xml:"PageCount,omitempty"`
	LanguageISO     string   `xml:"LanguageISO,omitempty"`
	Format          string   `xml:"Format,omitempty"`
	AgeRating       string   `xml:"AgeRating,omitempty"`
	Characters      string   `xml:"Characters,omitempty"`
	Teams           string   `xml:"Teams,omitempty"`
	Locations       string   `xml:"Locations,omitempty"`
	ScanInformation string   `xml:"ScanInformation,omitempty"`
	StoryArc        string   `xml:"StoryArc,omitempty"`
	SeriesGroup     string   `xml:"SeriesGroup,omitempty"`
}

// CoverDate assembles the split Year/Month/Day elements into a Date.
// Missing month or day default to January the 1st, matching how other
// tooling in this space treats partial dates. A missing year yields nil.
func (c *ComicInfo) CoverDate() *Date {
	if c == nil || c.Year == 0 {
		return nil
	}
	month := time.Month(c.Month)
	if c.Month < 1 || c.Month > 12 {
		month = time.January
	}
	day := c.Day
	if day < 1 || day > 31 {
		day = 1
	}
	return &Date{Year: c.Year, Month: month, Day: day}
}

// SetCoverDate splits a Date back into the Year/Month/Day elements.
func (c *ComicInfo) SetCoverDate(d *Date) {
	if d == nil {
		c.Year, c.Month, c.Day = 0, 0, 0
		return
	}
	c.Year, c.Month, c.Day = d.Year, int(d.Month), d.Day
}

// Credits flattens the per-role elements into creator/role pairs, in
// document order. Elements holding comma separated lists are split.
func (c *ComicInfo) Credits() []Credit {
	if c == nil {
		return nil
	}
	var credits []Credit
	for _, pair := range []struct {
		role  string
		value string
	}{
		{"Writer", c.Writer},
		{"Penciller", c.Penciller},
		{"Inker", c.Inker},
		{"Colorist", c.Colorist},
		{"Letterer", c.Letterer},
		{"Cover", c.CoverArtist},
		{"Editor", c.Editor},
	} {
		for _, name := range splitList(pair.value) {
			credits = append(credits, Credit{Creator: name, Roles: []string{pair.role}})
		}
	}
	return credits
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseComicInfo decodes a ComicInfo.xml document.
func ParseComicInfo(data []byte) (*ComicInfo, error) {
	doc := new(ComicInfo)
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: ComicInfo.xml: %s", ErrParse, err)
	}
	return doc, nil
}

// Serialize renders the document with an XML declaration.
func (c *ComicInfo) Serialize() ([]byte, error) {
	return serialize(c)
}

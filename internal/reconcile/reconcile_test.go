package reconcile

import (
	"errors"
	"testing"
	"time"

	"longbox/internal/metadata"
)

func TestFromDocumentsPrecedence(t *testing.T) {
	docs := metadata.Documents{
		Metron: &metadata.MetronInfo{
			Publisher: &metadata.Publisher{ID: "2", Name: "Image"},
			Series: &metadata.SeriesInfo{
				Name:      "Saga",
				Volume:    1,
				StartYear: 2012,
				Format:    "Single Issue",
				Lang:      "en",
			},
			Number:    "7",
			CoverDate: metadata.NewDate(2012, time.November, 14),
		},
		Comic: &metadata.ComicInfo{
			Publisher: "Wrong Publisher",
			Series:    "Wrong Series",
			Number:    "99",
			Title:     "Chapter Seven",
			Count:     54,
		},
	}
	rec := FromDocuments(docs)
	if rec.Publisher.Name != "Image" {
		t.Errorf("publisher = %q, MetronInfo should win", rec.Publisher.Name)
	}
	if rec.Series.Name != "Saga" || rec.Issue.Number != "7" {
		t.Errorf("record = %+v, MetronInfo should win", rec)
	}
	if rec.Issue.Title != "Chapter Seven" {
		t.Errorf("title = %q, ComicInfo should fill the gap", rec.Issue.Title)
	}
	if rec.Series.IssueCount != 54 {
		t.Errorf("issue count = %d, ComicInfo should fill the gap", rec.Series.IssueCount)
	}
	if rec.Series.Format != FormatSingleIssue {
		t.Errorf("format = %q", rec.Series.Format)
	}
}

func TestFromDocumentsComicInfoOnly(t *testing.T) {
	docs := metadata.Documents{
		Comic: &metadata.ComicInfo{
			Series: "Saga",
			Number: "7",
			Year:   2012,
			Month:  11,
		},
	}
	rec := FromDocuments(docs)
	if rec.Series.Name != "Saga" || rec.Issue.Number != "7" {
		t.Fatalf("record = %+v", rec)
	}
	if got := rec.Issue.CoverDate.String(); got != "2012-11-01" {
		t.Errorf("cover date = %q", got)
	}
	if rec.Series.Format != FormatDefault {
		t.Errorf("format = %q, want default", rec.Series.Format)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFromDocumentsLegacyFill(t *testing.T) {
	docs := metadata.Documents{
		Comic: &metadata.ComicInfo{Series: "Saga", Number: "7"},
		Legacy: &metadata.LegacyMetadata{
			Issue: metadata.LegacyIssue{
				Series: metadata.LegacySeries{
					Publisher: metadata.LegacyPublisher{Title: "Image"},
					Title:     "Legacy Series Name",
					StartYear: 2012,
				},
				Number: "1",
				Format: "Trade Paperback",
			},
		},
	}
	rec := FromDocuments(docs)
	if rec.Publisher.Name != "Image" {
		t.Errorf("publisher = %q, legacy should fill", rec.Publisher.Name)
	}
	if rec.Series.Name != "Saga" || rec.Issue.Number != "7" {
		t.Errorf("record = %+v, ComicInfo should win over legacy", rec)
	}
	if rec.Series.StartYear != 2012 {
		t.Errorf("start year = %d, legacy should fill", rec.Series.StartYear)
	}
	if rec.Series.Format != FormatTradePaperback {
		t.Errorf("format = %q, legacy should fill", rec.Series.Format)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		ok   bool
	}{
		{"series and number", Record{Series: Series{Name: "Saga"}, Issue: Issue{Number: "7"}}, true},
		{"publisher and number", Record{Publisher: Publisher{Name: "Image"}, Issue: Issue{Number: "7"}}, true},
		{"no number", Record{Series: Series{Name: "Saga"}}, false},
		{"no names", Record{Issue: Issue{Number: "7"}}, false},
		{"empty", Record{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrIncompleteIdentity) {
				t.Fatalf("err = %v, want ErrIncompleteIdentity", err)
			}
		})
	}
}

func TestMergeNeverOverwrites(t *testing.T) {
	rec := Record{
		Series: Series{Name: "Saga", Format: FormatDefault},
		Issue:  Issue{Number: "7"},
	}
	rec.Merge(Record{
		Publisher: Publisher{Name: "Image"},
		Series:    Series{Name: "Fetched Series", Volume: 1, Format: FormatSingleIssue},
		Issue:     Issue{Number: "999", Title: "Chapter Seven", CoverDate: metadata.NewDate(2012, time.November, 14)},
	})
	if rec.Series.Name != "Saga" || rec.Issue.Number != "7" {
		t.Fatalf("merge overwrote populated fields: %+v", rec)
	}
	if rec.Publisher.Name != "Image" || rec.Series.Volume != 1 || rec.Issue.Title != "Chapter Seven" {
		t.Fatalf("merge did not fill empty fields: %+v", rec)
	}
	if rec.Series.Format != FormatSingleIssue {
		t.Errorf("default format should be replaceable, got %q", rec.Series.Format)
	}
	if rec.Issue.CoverDate == nil {
		t.Error("cover date should fill")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"Single Issue", FormatSingleIssue},
		{"single-issue", FormatSingleIssue},
		{"Comic", FormatSingleIssue},
		{"Trade Paperback", FormatTradePaperback},
		{"TPB", FormatTradePaperback},
		{"ONE-SHOT", FormatOneShot},
		{"Limited Series", FormatLimitedSeries},
		{"mini series", FormatLimitedSeries},
		{"Digital Chapter", FormatDigitalChapter},
		{"Graphic Novel", FormatGraphicNovel},
		{"Hardcover", FormatHardcover},
		{"Omnibus", FormatOmnibus},
		{"Annual", FormatAnnual},
		{"", FormatDefault},
		{"Magazine", FormatDefault},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTemplateKey(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatDefault, "default"},
		{FormatSingleIssue, "single-issue"},
		{FormatOneShot, "one-shot"},
		{FormatLimitedSeries, "limited-series"},
		{FormatTradePaperback, "trade-paperback"},
		{FormatDigitalChapter, "digital-chapter"},
	}
	for _, tt := range tests {
		if got := tt.format.TemplateKey(); got != tt.want {
			t.Errorf("TemplateKey(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	docs := metadata.Documents{}
	rec := Record{
		Publisher: Publisher{Name: "Image"},
		Series:    Series{Name: "Saga", Volume: 1, Format: FormatSingleIssue, Language: "en"},
		Issue:     Issue{Number: "7", CoverDate: metadata.NewDate(2012, time.November, 14), UPC: "709853"},
	}
	Apply(&docs, rec)
	if docs.Metron == nil || docs.Comic == nil {
		t.Fatal("Apply should create both documents")
	}
	if docs.Metron.Series == nil || docs.Metron.Series.Name != "Saga" {
		t.Errorf("metron series = %+v", docs.Metron.Series)
	}
	if docs.Metron.GTIN == nil || docs.Metron.GTIN.UPC != "709853" {
		t.Errorf("metron gtin = %+v", docs.Metron.GTIN)
	}
	if docs.Comic.Series != "Saga" || docs.Comic.Number != "7" {
		t.Errorf("comic = %+v", docs.Comic)
	}
	if docs.Comic.Year != 2012 || docs.Comic.Month != 11 || docs.Comic.Day != 14 {
		t.Errorf("comic date = %d-%d-%d", docs.Comic.Year, docs.Comic.Month, docs.Comic.Day)
	}
	if docs.Comic.Format != "Single Issue" {
		t.Errorf("comic format = %q", docs.Comic.Format)
	}
}

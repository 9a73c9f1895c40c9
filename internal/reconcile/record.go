package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"longbox/internal/metadata"
)

// ErrIncompleteIdentity marks a record that cannot be named: naming
// needs at least a publisher or series name plus an issue number.
var ErrIncompleteIdentity = errors.New("incomplete identity")

// Publisher is the canonical publisher block of a record.
type Publisher struct {
	ID      string
	Name    string
	Imprint string
}

// Series is the canonical series block of a record.
type Series struct {
	ID         string
	Name       string
	SortName   string
	Volume     int
	StartYear  int
	IssueCount int
	Format     Format
	Language   string
}

// Issue is the canonical issue block of a record.
type Issue struct {
	ID        string
	Number    string
	Title     string
	CoverDate *metadata.Date
	StoreDate *metadata.Date
	ISBN      string
	UPC       string
	PageCount int
	Summary   string
}

// Record is the reconciled view of one archive's metadata. Every field
// traces back to exactly one source document or lookup response; merges
// never overwrite a populated field.
type Record struct {
	Publisher Publisher
	Series    Series
	Issue     Issue
}

// Validate checks the minimal identity needed to render a destination
// name. The error spells out which half is missing.
func (r Record) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Publisher.Name) == "" && strings.TrimSpace(r.Series.Name) == "" {
		missing = append(missing, "publisher or series name")
	}
	if strings.TrimSpace(r.Issue.Number) == "" {
		missing = append(missing, "issue number")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteIdentity, strings.Join(missing, " and "))
	}
	return nil
}

// Merge copies fields from other into r, touching only fields r has
// empty. Format counts as empty while it is still FormatDefault and
// other carries something more specific.
func (r *Record) Merge(other Record) {
	fillString(&r.Publisher.ID, other.Publisher.ID)
	fillString(&r.Publisher.Name, other.Publisher.Name)
	fillString(&r.Publisher.Imprint, other.Publisher.Imprint)

	fillString(&r.Series.ID, other.Series.ID)
	fillString(&r.Series.Name, other.Series.Name)
	fillString(&r.Series.SortName, other.Series.SortName)
	fillInt(&r.Series.Volume, other.Series.Volume)
	fillInt(&r.Series.StartYear, other.Series.StartYear)
	fillInt(&r.Series.IssueCount, other.Series.IssueCount)
	fillString(&r.Series.Language, other.Series.Language)
	if (r.Series.Format == "" || r.Series.Format == FormatDefault) && other.Series.Format != "" {
		r.Series.Format = other.Series.Format
	}

	fillString(&r.Issue.ID, other.Issue.ID)
	fillString(&r.Issue.Number, other.Issue.Number)
	fillString(&r.Issue.Title, other.Issue.Title)
	fillString(&r.Issue.ISBN, other.Issue.ISBN)
	fillString(&r.Issue.UPC, other.Issue.UPC)
	fillInt(&r.Issue.PageCount, other.Issue.PageCount)
	fillString(&r.Issue.Summary, other.Issue.Summary)
	if r.Issue.CoverDate == nil {
		r.Issue.CoverDate = other.Issue.CoverDate
	}
	if r.Issue.StoreDate == nil {
		r.Issue.StoreDate = other.Issue.StoreDate
	}
}

func fillString(dst *string, src string) {
	if strings.TrimSpace(*dst) == "" && strings.TrimSpace(src) != "" {
		*dst = src
	}
}

func fillInt(dst *int, src int) {
	if *dst == 0 && src != 0 {
		*dst = src
	}
}

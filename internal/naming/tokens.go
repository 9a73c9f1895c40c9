package naming

import (
	"sort"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"longbox/internal/metadata"
	"longbox/internal/reconcile"
)

type extractor func(reconcile.Record) string

// tokenTable binds every recognized placeholder key to its extraction
// function. Unset fields render as the empty string.
var tokenTable = map[string]extractor{
	"cover-date":  func(r reconcile.Record) string { return r.Issue.CoverDate.String() },
	"cover-day":   func(r reconcile.Record) string { return dateDay(r.Issue.CoverDate) },
	"cover-month": func(r reconcile.Record) string { return dateMonth(r.Issue.CoverDate) },
	"cover-year":  func(r reconcile.Record) string { return dateYear(r.Issue.CoverDate) },
	"store-date":  func(r reconcile.Record) string { return r.Issue.StoreDate.String() },
	"store-day":   func(r reconcile.Record) string { return dateDay(r.Issue.StoreDate) },
	"store-month": func(r reconcile.Record) string { return dateMonth(r.Issue.StoreDate) },
	"store-year":  func(r reconcile.Record) string { return dateYear(r.Issue.StoreDate) },

	"format":  func(r reconcile.Record) string { return r.Series.Format.String() },
	"id":      func(r reconcile.Record) string { return r.Issue.ID },
	"isbn":    func(r reconcile.Record) string { return r.Issue.ISBN },
	"upc":     func(r reconcile.Record) string { return r.Issue.UPC },
	"number":  func(r reconcile.Record) string { return r.Issue.Number },
	"title":   func(r reconcile.Record) string { return r.Issue.Title },
	"imprint": func(r reconcile.Record) string { return r.Publisher.Imprint },

	"publisher-id":   func(r reconcile.Record) string { return r.Publisher.ID },
	"publisher-name": func(r reconcile.Record) string { return r.Publisher.Name },

	"series-id":         func(r reconcile.Record) string { return r.Series.ID },
	"series-name":       func(r reconcile.Record) string { return r.Series.Name },
	"series-sort-name":  func(r reconcile.Record) string { return seriesSortName(r) },
	"series-volume":     func(r reconcile.Record) string { return positive(r.Series.Volume) },
	"volume":            func(r reconcile.Record) string { return positive(r.Series.Volume) },
	"series-start-year": func(r reconcile.Record) string { return positive(r.Series.StartYear) },
	"series-year":       func(r reconcile.Record) string { return positive(r.Series.StartYear) },
	"issue-count":       func(r reconcile.Record) string { return positive(r.Series.IssueCount) },

	"lang":     func(r reconcile.Record) string { return r.Series.Language },
	"language": func(r reconcile.Record) string { return languageName(r.Series.Language) },
}

// Tokens lists every recognized placeholder key, sorted.
func Tokens() []string {
	keys := make([]string, 0, len(tokenTable))
	for key := range tokenTable {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func seriesSortName(r reconcile.Record) string {
	if r.Series.SortName != "" {
		return r.Series.SortName
	}
	return r.Series.Name
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func dateYear(d *metadata.Date) string {
	if d == nil {
		return ""
	}
	return strconv.Itoa(d.Year)
}

func dateMonth(d *metadata.Date) string {
	if d == nil {
		return ""
	}
	return strconv.Itoa(int(d.Month))
}

func dateDay(d *metadata.Date) string {
	if d == nil {
		return ""
	}
	return strconv.Itoa(d.Day)
}

// languageName renders a BCP-47 tag as its English display name, so
// {language} yields "English" where {lang} yields "en". Unparseable
// tags pass through unchanged.
func languageName(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

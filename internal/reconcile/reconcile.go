package reconcile

import "longbox/internal/metadata"

// FromDocuments builds the reconciled record for one archive. Documents
// are folded in precedence order: MetronInfo, then ComicInfo, then the
// legacy document. Later documents only fill fields still empty.
func FromDocuments(docs metadata.Documents) Record {
	var rec Record
	if docs.Metron != nil {
		rec.Merge(fromMetronInfo(docs.Metron))
	}
	if docs.Comic != nil {
		rec.Merge(fromComicInfo(docs.Comic))
	}
	if docs.Legacy != nil {
		rec.Merge(fromLegacy(docs.Legacy))
	}
	if rec.Series.Format == "" {
		rec.Series.Format = FormatDefault
	}
	return rec
}

func fromMetronInfo(doc *metadata.MetronInfo) Record {
	var rec Record
	if doc.Publisher != nil {
		rec.Publisher = Publisher{
			ID:      doc.Publisher.ID,
			Name:    doc.Publisher.Name,
			Imprint: doc.Publisher.Imprint,
		}
	}
	if doc.Series != nil {
		rec.Series = Series{
			ID:         doc.Series.ID,
			Name:       doc.Series.Name,
			SortName:   doc.Series.SortName,
			Volume:     doc.Series.Volume,
			StartYear:  doc.Series.StartYear,
			IssueCount: doc.Series.IssueCount,
			Language:   doc.Series.Lang,
		}
		if doc.Series.Format != "" {
			rec.Series.Format = ParseFormat(doc.Series.Format)
		}
	}
	rec.Issue = Issue{
		Number:    doc.Number,
		Title:     doc.CollectionTitle,
		CoverDate: doc.CoverDate,
		StoreDate: doc.StoreDate,
		PageCount: doc.PageCount,
		Summary:   doc.Summary,
	}
	if id := doc.PrimaryID(); id != nil {
		rec.Issue.ID = id.Value
	}
	if doc.GTIN != nil {
		rec.Issue.ISBN = doc.GTIN.ISBN
		rec.Issue.UPC = doc.GTIN.UPC
	}
	return rec
}

func fromComicInfo(doc *metadata.ComicInfo) Record {
	rec := Record{
		Publisher: Publisher{
			Name:    doc.Publisher,
			Imprint: doc.Imprint,
		},
		Series: Series{
			Name:       doc.Series,
			Volume:     doc.Volume,
			IssueCount: doc.Count,
			Language:   doc.LanguageISO,
		},
		Issue: Issue{
			Number:    doc.Number,
			Title:     doc.Title,
			CoverDate: doc.CoverDate(),
			PageCount: doc.PageCount,
			Summary:   doc.Summary,
		},
	}
	if doc.Format != "" {
		rec.Series.Format = ParseFormat(doc.Format)
	}
	return rec
}

func fromLegacy(doc *metadata.LegacyMetadata) Record {
	rec := Record{
		Publisher: Publisher{Name: doc.Issue.Series.Publisher.Title},
		Series: Series{
			Name:      doc.Issue.Series.Title,
			Volume:    doc.Issue.Series.Volume,
			StartYear: doc.Issue.Series.StartYear,
			Language:  doc.Issue.Language,
		},
		Issue: Issue{
			Number:    doc.Issue.Number,
			Title:     doc.Issue.Title,
			CoverDate: doc.Issue.CoverDate,
			StoreDate: doc.Issue.StoreDate,
			PageCount: doc.Issue.PageCount,
			Summary:   doc.Issue.Summary,
		},
	}
	if doc.Issue.Format != "" {
		rec.Series.Format = ParseFormat(doc.Issue.Format)
	}
	return rec
}

// Apply writes the reconciled record back into the documents that get
// repackaged, creating either document when the archive lacked it. The
// legacy document is left alone since it is never written out.
func Apply(docs *metadata.Documents, rec Record) {
	if docs.Metron == nil {
		docs.Metron = new(metadata.MetronInfo)
	}
	applyMetronInfo(docs.Metron, rec)
	if docs.Comic == nil {
		docs.Comic = new(metadata.ComicInfo)
	}
	applyComicInfo(docs.Comic, rec)
}

func applyMetronInfo(doc *metadata.MetronInfo, rec Record) {
	if rec.Publisher != (Publisher{}) {
		if doc.Publisher == nil {
			doc.Publisher = new(metadata.Publisher)
		}
		doc.Publisher.ID = rec.Publisher.ID
		doc.Publisher.Name = rec.Publisher.Name
		doc.Publisher.Imprint = rec.Publisher.Imprint
	}
	if rec.Series != (Series{}) {
		if doc.Series == nil {
			doc.Series = new(metadata.SeriesInfo)
		}
		doc.Series.ID = rec.Series.ID
		doc.Series.Name = rec.Series.Name
		doc.Series.SortName = rec.Series.SortName
		doc.Series.Volume = rec.Series.Volume
		doc.Series.StartYear = rec.Series.StartYear
		doc.Series.IssueCount = rec.Series.IssueCount
		doc.Series.Format = rec.Series.Format.String()
		doc.Series.Lang = rec.Series.Language
	}
	doc.Number = rec.Issue.Number
	doc.CollectionTitle = rec.Issue.Title
	doc.CoverDate = rec.Issue.CoverDate
	doc.StoreDate = rec.Issue.StoreDate
	if rec.Issue.PageCount != 0 {
		doc.PageCount = rec.Issue.PageCount
	}
	if rec.Issue.Summary != "" {
		doc.Summary = rec.Issue.Summary
	}
	if rec.Issue.ISBN != "" || rec.Issue.UPC != "" {
		if doc.GTIN == nil {
			doc.GTIN = new(metadata.GTIN)
		}
		doc.GTIN.ISBN = rec.Issue.ISBN
		doc.GTIN.UPC = rec.Issue.UPC
	}
}

func applyComicInfo(doc *metadata.ComicInfo, rec Record) {
	doc.Publisher = rec.Publisher.Name
	doc.Imprint = rec.Publisher.Imprint
	doc.Series = rec.Series.Name
	doc.Volume = rec.Series.Volume
	doc.Count = rec.Series.IssueCount
	doc.LanguageISO = rec.Series.Language
	doc.Format = rec.Series.Format.String()
	doc.Number = rec.Issue.Number
	doc.Title = rec.Issue.Title
	doc.SetCoverDate(rec.Issue.CoverDate)
	if rec.Issue.PageCount != 0 {
		doc.PageCount = rec.Issue.PageCount
	}
	if rec.Issue.Summary != "" {
		doc.Summary = rec.Issue.Summary
	}
}

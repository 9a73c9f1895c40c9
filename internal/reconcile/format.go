package reconcile

import "strings"

// Format classifies the publication format of a series. The zero value
// is not valid; unknown input normalizes to FormatDefault.
type Format string

const (
	FormatDefault        Format = "Default"
	FormatAnnual         Format = "Annual"
	FormatDigitalChapter Format = "Digital Chapter"
	FormatGraphicNovel   Format = "Graphic Novel"
	FormatHardcover      Format = "Hardcover"
	FormatLimitedSeries  Format = "Limited Series"
	FormatOmnibus        Format = "Omnibus"
	FormatOneShot        Format = "One-Shot"
	FormatSingleIssue    Format = "Single Issue"
	FormatTradePaperback Format = "Trade Paperback"
)

// Formats lists every known format in display order.
func Formats() []Format {
	return []Format{
		FormatDefault,
		FormatAnnual,
		FormatDigitalChapter,
		FormatGraphicNovel,
		FormatHardcover,
		FormatLimitedSeries,
		FormatOmnibus,
		FormatOneShot,
		FormatSingleIssue,
		FormatTradePaperback,
	}
}

// ParseFormat maps free-form format strings onto the known set. Matching
// ignores case, spacing and hyphenation, and a couple of common aliases
// used by older tooling are folded in. Unrecognized input, including the
// empty string, yields FormatDefault.
func ParseFormat(value string) Format {
	switch foldFormat(value) {
	case "annual":
		return FormatAnnual
	case "digitalchapter", "digital":
		return FormatDigitalChapter
	case "graphicnovel":
		return FormatGraphicNovel
	case "hardcover":
		return FormatHardcover
	case "limitedseries", "limited", "miniseries":
		return FormatLimitedSeries
	case "omnibus":
		return FormatOmnibus
	case "oneshot":
		return FormatOneShot
	case "singleissue", "single", "comic", "series", "ongoingseries":
		return FormatSingleIssue
	case "tradepaperback", "tpb", "trade":
		return FormatTradePaperback
	default:
		return FormatDefault
	}
}

func foldFormat(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TemplateKey is the configuration key that selects the naming template
// for this format.
func (f Format) TemplateKey() string {
	return strings.ToLower(strings.NewReplacer(" ", "-").Replace(string(f)))
}

func (f Format) String() string { return string(f) }

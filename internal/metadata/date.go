package metadata

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component, serialized as
// yyyy-mm-dd. Documents use *Date so absent elements stay absent.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a yyyy-mm-dd string. Empty input yields nil.
func ParseDate(value string) (*Date, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return &Date{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}, nil
}

func (d *Date) String() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the date at midnight UTC.
func (d *Date) Time() time.Time {
	if d == nil {
		return time.Time{}
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d *Date) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	if d == nil {
		return nil
	}
	return enc.EncodeElement(d.String(), start)
}

func (d *Date) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var raw string
	if err := dec.DecodeElement(&raw, &start); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	if parsed == nil {
		return nil
	}
	*d = *parsed
	return nil
}

package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"longbox/internal/reconcile"
)

// ErrUnknownToken marks a template placeholder outside the recognized
// token table. It is a configuration error, caught before any archive
// is touched.
var ErrUnknownToken = errors.New("unknown naming token")

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z-]+)(?::([0-9]+))?\}`)

type fragment struct {
	literal string
	token   string
	extract extractor
	width   int
}

// Pattern is a compiled naming template. Render is a pure function of
// the record; compiling once and rendering many times is the intended
// use.
type Pattern struct {
	source    string
	fragments []fragment
}

// Compile parses a template into a Pattern. Every placeholder must name
// a recognized token, and an explicit width must be a positive integer.
func Compile(template string) (*Pattern, error) {
	p := &Pattern{source: template}
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		if loc[0] > last {
			p.fragments = append(p.fragments, fragment{literal: template[last:loc[0]]})
		}
		token := template[loc[2]:loc[3]]
		extract, ok := tokenTable[token]
		if !ok {
			return nil, fmt.Errorf("%w: {%s} in template %q", ErrUnknownToken, token, template)
		}
		width := 0
		if loc[4] >= 0 {
			w, err := strconv.Atoi(template[loc[4]:loc[5]])
			if err != nil || w < 1 {
				return nil, fmt.Errorf("%w: {%s:%s} width must be a positive integer", ErrUnknownToken, token, template[loc[4]:loc[5]])
			}
			width = w
		}
		p.fragments = append(p.fragments, fragment{token: token, extract: extract, width: width})
		last = loc[1]
	}
	if last < len(template) {
		p.fragments = append(p.fragments, fragment{literal: template[last:]})
	}
	return p, nil
}

// Source returns the template text the pattern was compiled from.
func (p *Pattern) Source() string { return p.source }

// Render evaluates the pattern against a record. Token values are
// sanitized individually; literal template text passes through as is.
// Purely numeric values honor the placeholder width by left-zero
// padding, anything else ignores the width.
func (p *Pattern) Render(rec reconcile.Record) string {
	var b strings.Builder
	for _, frag := range p.fragments {
		if frag.extract == nil {
			b.WriteString(frag.literal)
			continue
		}
		value := frag.extract(rec)
		if frag.width > 0 && isDigits(value) {
			b.WriteString(pad(value, frag.width))
			continue
		}
		b.WriteString(Sanitize(value))
	}
	return b.String()
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pad(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat("0", width-len(value)) + value
}

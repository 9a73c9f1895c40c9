package naming

import (
	"fmt"
	"strings"

	"longbox/internal/reconcile"
)

// DefaultKey is the reserved template key used when a format has no
// template of its own. There is exactly one level of fallback.
const DefaultKey = "default"

// Set holds one compiled pattern per comic format plus the fallback.
type Set struct {
	fallback  *Pattern
	perFormat map[string]*Pattern
}

// CompileSet compiles a format-to-template mapping. The default key is
// required and must not be blank; blank per-format entries are treated
// as absent and fall back. Keys must name known formats.
func CompileSet(templates map[string]string) (*Set, error) {
	known := make(map[string]bool, 10)
	for _, format := range reconcile.Formats() {
		known[format.TemplateKey()] = true
	}

	set := &Set{perFormat: make(map[string]*Pattern)}
	for key, template := range templates {
		key = strings.ToLower(strings.TrimSpace(key))
		if !known[key] {
			return nil, fmt.Errorf("naming template for unknown format %q", key)
		}
		if strings.TrimSpace(template) == "" {
			continue
		}
		pattern, err := Compile(template)
		if err != nil {
			return nil, fmt.Errorf("naming template %q: %w", key, err)
		}
		if key == DefaultKey {
			set.fallback = pattern
		} else {
			set.perFormat[key] = pattern
		}
	}
	if set.fallback == nil {
		return nil, fmt.Errorf("naming template %q is required", DefaultKey)
	}
	return set, nil
}

// For returns the pattern for a format, falling back to the default.
func (s *Set) For(format reconcile.Format) *Pattern {
	if pattern, ok := s.perFormat[format.TemplateKey()]; ok {
		return pattern
	}
	return s.fallback
}

// Render picks the pattern for the record's format and renders it.
func (s *Set) Render(rec reconcile.Record) string {
	return s.For(rec.Series.Format).Render(rec)
}

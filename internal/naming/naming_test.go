package naming

import (
	"errors"
	"testing"
	"time"

	"longbox/internal/metadata"
	"longbox/internal/reconcile"
)

func sagaRecord() reconcile.Record {
	return reconcile.Record{
		Publisher: reconcile.Publisher{Name: "Image"},
		Series: reconcile.Series{
			Name:      "Saga",
			Volume:    1,
			StartYear: 2012,
			Format:    reconcile.FormatSingleIssue,
			Language:  "en",
		},
		Issue: reconcile.Issue{
			Number:    "7",
			CoverDate: metadata.NewDate(2012, time.November, 14),
		},
	}
}

func TestRenderDefaultTemplate(t *testing.T) {
	pattern, err := Compile("{publisher-name}/{series-name}-v{volume}/{series-name}-v{volume}_#{number:3}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got, want := pattern.Render(sagaRecord()), "Image/Saga-v1/Saga-v1_#007"; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestCompileUnknownToken(t *testing.T) {
	_, err := Compile("{series-name}_{bogus-token}")
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("err = %v, want ErrUnknownToken", err)
	}
	if _, err := Compile("{number:0}"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("zero width: err = %v, want ErrUnknownToken", err)
	}
}

func TestRenderPadding(t *testing.T) {
	tests := []struct {
		name     string
		template string
		number   string
		want     string
	}{
		{"numeric padded", "{number:3}", "7", "007"},
		{"numeric wider than pad", "{number:2}", "1234", "1234"},
		{"decimal unpadded", "{number:3}", "1.5", "15"},
		{"alphanumeric unpadded", "{number:3}", "1AU", "1AU"},
		{"fraction transliterated", "{number:3}", "½", "1-2"},
		{"empty", "{number:3}", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, err := Compile(tt.template)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			rec := reconcile.Record{Issue: reconcile.Issue{Number: tt.number}}
			if got := pattern.Render(rec); got != tt.want {
				t.Fatalf("render %q = %q, want %q", tt.number, got, tt.want)
			}
		})
	}
}

func TestRenderLiteralsSurviveSanitization(t *testing.T) {
	pattern, err := Compile("{series-name}_#{number}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	rec := reconcile.Record{
		Series: reconcile.Series{Name: "Gødland"},
		Issue:  reconcile.Issue{Number: "7"},
	}
	// The template's own "_#" stays; the ø inside the token is dropped.
	if got, want := pattern.Render(rec), "Gdland_#7"; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestRenderLanguageTokens(t *testing.T) {
	pattern, err := Compile("{lang}/{language}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got, want := pattern.Render(sagaRecord()), "en/English"; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestRenderDateTokens(t *testing.T) {
	pattern, err := Compile("{cover-year}/{cover-month:2}/{cover-date}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got, want := pattern.Render(sagaRecord()), "2012/11/2012-11-14"; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Saga", "Saga"},
		{"Amazing Spider-Man", "Amazing-Spider-Man"},
		{"Batman & Robin", "Batman-&-Robin"},
		{"Don't Panic!", "Dont-Panic!"},
		{"Saga:  Book   One", "Saga-Book-One"},
		{"½", "1-2"},
		{"7¾", "73-4"},
		{"日本語", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"Amazing Spider-Man", "Batman & Robin", "Don't Panic!", "½", "Saga v1"}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCompileSetFallback(t *testing.T) {
	set, err := CompileSet(map[string]string{
		"default":         "{series-name}_#{number:3}",
		"trade-paperback": "{series-name}_#{number:2}_TPB",
		"annual":          "",
	})
	if err != nil {
		t.Fatalf("CompileSet: %v", err)
	}

	rec := sagaRecord()
	if got, want := set.Render(rec), "Saga_#007"; got != want {
		t.Errorf("single issue = %q, want %q", got, want)
	}
	rec.Series.Format = reconcile.FormatTradePaperback
	if got, want := set.Render(rec), "Saga_#07_TPB"; got != want {
		t.Errorf("tpb = %q, want %q", got, want)
	}
	// Blank per-format entry falls back to default.
	rec.Series.Format = reconcile.FormatAnnual
	if got, want := set.Render(rec), "Saga_#007"; got != want {
		t.Errorf("annual fallback = %q, want %q", got, want)
	}
}

func TestCompileSetErrors(t *testing.T) {
	if _, err := CompileSet(map[string]string{"single-issue": "{number}"}); err == nil {
		t.Error("missing default template should fail")
	}
	if _, err := CompileSet(map[string]string{"default": "{number}", "magazine": "{number}"}); err == nil {
		t.Error("unknown format key should fail")
	}
	_, err := CompileSet(map[string]string{"default": "{nope}"})
	if !errors.Is(err, ErrUnknownToken) {
		t.Errorf("err = %v, want ErrUnknownToken", err)
	}
}

func TestTokensSorted(t *testing.T) {
	tokens := Tokens()
	if len(tokens) == 0 {
		t.Fatal("no tokens")
	}
	for i := 1; i < len(tokens); i++ {
		if tokens[i-1] >= tokens[i] {
			t.Fatalf("tokens not sorted: %q before %q", tokens[i-1], tokens[i])
		}
	}
	for _, required := range []string{"publisher-name", "series-name", "number", "volume", "cover-year"} {
		if _, ok := tokenTable[required]; !ok {
			t.Errorf("missing token %q", required)
		}
	}
}

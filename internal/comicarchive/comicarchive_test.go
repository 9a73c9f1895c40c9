package comicarchive_test

import (
	"bytes"
	"errors"
	"testing"

	"longbox/internal/comicarchive"
)

func sampleEntries() []comicarchive.Entry {
	return []comicarchive.Entry{
		{Name: "pages/page_01.jpg", Data: []byte("front cover bytes")},
		{Name: "/MetronInfo.xml", Data: []byte("<MetronInfo/>")},
		{Name: "pages/page_02.jpg", Data: []byte("story page bytes")},
		{Name: "Metadata.xml", Data: []byte("<Metadata/>")},
		{Name: "ComicInfo.xml", Data: []byte("<ComicInfo/>")},
		{Name: "notes.txt", Data: nil},
	}
}

func wantNormalized() []comicarchive.Entry {
	return []comicarchive.Entry{
		{Name: "MetronInfo.xml", Data: []byte("<MetronInfo/>")},
		{Name: "ComicInfo.xml", Data: []byte("<ComicInfo/>")},
		{Name: "pages/page_01.jpg", Data: []byte("front cover bytes")},
		{Name: "pages/page_02.jpg", Data: []byte("story page bytes")},
		{Name: "notes.txt", Data: nil},
	}
}

func assertEntriesEqual(t *testing.T, got, want []comicarchive.Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("entry count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Fatalf("entry %d name = %q, want %q", i, got[i].Name, want[i].Name)
		}
		if !bytes.Equal(got[i].Data, want[i].Data) {
			t.Fatalf("entry %d (%s) bytes differ", i, want[i].Name)
		}
	}
}

func TestRoundTripNormalizesMetadata(t *testing.T) {
	for _, kind := range []comicarchive.Kind{comicarchive.KindCBZ, comicarchive.KindCBT, comicarchive.KindCB7} {
		t.Run(kind.String(), func(t *testing.T) {
			data, err := comicarchive.Write(kind, sampleEntries())
			if err != nil {
				t.Fatalf("Write: %v", err)
			}

			detected, entries, err := comicarchive.Open(data)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if detected != kind {
				t.Fatalf("detected kind = %s, want %s", detected, kind)
			}
			assertEntriesEqual(t, entries, wantNormalized())
		})
	}
}

func TestSevenZipManyEntriesRoundTrip(t *testing.T) {
	entries := []comicarchive.Entry{
		{Name: "a.jpg", Data: []byte("hello")},
		{Name: "b.jpg", Data: bytes.Repeat([]byte{0xAB}, 300)},
		{Name: "c.jpg", Data: nil},
		{Name: "d.jpg", Data: []byte("x")},
		{Name: "e.jpg", Data: bytes.Repeat([]byte("0123456789"), 41)},
		{Name: "f.jpg", Data: nil},
	}

	data, err := comicarchive.Write(comicarchive.KindCB7, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	kind, got, err := comicarchive.Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if kind != comicarchive.KindCB7 {
		t.Fatalf("detected kind = %s, want cb7", kind)
	}
	assertEntriesEqual(t, got, entries)
}

func TestWriteRejectsReadOnlyKind(t *testing.T) {
	_, err := comicarchive.Write(comicarchive.KindCBR, sampleEntries())
	if !errors.Is(err, comicarchive.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDetectBySignature(t *testing.T) {
	cbz, err := comicarchive.Write(comicarchive.KindCBZ, sampleEntries())
	if err != nil {
		t.Fatal(err)
	}
	cbt, err := comicarchive.Write(comicarchive.KindCBT, sampleEntries())
	if err != nil {
		t.Fatal(err)
	}
	cb7, err := comicarchive.Write(comicarchive.KindCB7, sampleEntries())
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		data []byte
		want comicarchive.Kind
	}{
		{"zip", cbz, comicarchive.KindCBZ},
		{"gzip tar", cbt, comicarchive.KindCBT},
		{"sevenzip", cb7, comicarchive.KindCB7},
		{"rar4", []byte("Rar!\x1a\x07\x00rest"), comicarchive.KindCBR},
		{"rar5", []byte("Rar!\x1a\x07\x01\x00rest"), comicarchive.KindCBR},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := comicarchive.Detect(tc.data)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if kind != tc.want {
				t.Fatalf("kind = %s, want %s", kind, tc.want)
			}
		})
	}
}

func TestDetectRejectsUnknownSignature(t *testing.T) {
	_, err := comicarchive.Detect([]byte("JPEG or whatever this is"))
	if !errors.Is(err, comicarchive.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOpenCorruptContainer(t *testing.T) {
	corrupt := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0xff}, 64)...)
	_, _, err := comicarchive.Open(corrupt)
	if !errors.Is(err, comicarchive.ErrCorruptArchive) {
		t.Fatalf("expected ErrCorruptArchive, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want comicarchive.Kind
		ok   bool
	}{
		{"cbz", comicarchive.KindCBZ, true},
		{".CB7", comicarchive.KindCB7, true},
		{"cbr", comicarchive.KindCBR, true},
		{"zip", "", false},
	}
	for _, tc := range cases {
		kind, ok := comicarchive.ParseKind(tc.in)
		if ok != tc.ok || kind != tc.want {
			t.Fatalf("ParseKind(%q) = %s, %v", tc.in, kind, ok)
		}
	}
}

func TestWritableKinds(t *testing.T) {
	writable := map[comicarchive.Kind]bool{
		comicarchive.KindCBZ: true,
		comicarchive.KindCBT: true,
		comicarchive.KindCBR: false,
		comicarchive.KindCB7: true,
	}
	for kind, want := range writable {
		if kind.Writable() != want {
			t.Fatalf("%s writable = %v, want %v", kind, kind.Writable(), want)
		}
	}
}

func TestMetadataEntryRecognition(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"MetronInfo.xml", true},
		{"/ComicInfo.xml", true},
		{"nested/Metadata.xml", true},
		{"comicinfo.XML", true},
		{"pages/page_01.jpg", false},
		{"MetronInfo.xml.bak", false},
	}
	for _, tc := range cases {
		entry := comicarchive.Entry{Name: tc.name}
		if entry.IsMetadata() != tc.want {
			t.Fatalf("IsMetadata(%q) = %v, want %v", tc.name, entry.IsMetadata(), tc.want)
		}
	}
}

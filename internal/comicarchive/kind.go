package comicarchive

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind identifies one of the supported comic container formats.
type Kind string

const (
	KindCBZ Kind = "cbz"
	KindCBT Kind = "cbt"
	KindCBR Kind = "cbr"
	KindCB7 Kind = "cb7"
)

var allKinds = []Kind{KindCBZ, KindCBT, KindCBR, KindCB7}

// AllKinds returns the ordered list of known container kinds.
func AllKinds() []Kind {
	cp := make([]Kind, len(allKinds))
	copy(cp, allKinds)
	return cp
}

// ParseKind converts a string (with or without a leading dot) into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), ".")))
	for _, kind := range allKinds {
		if kind == normalized {
			return kind, true
		}
	}
	return "", false
}

// Extension returns the file extension for the kind, including the dot.
func (k Kind) Extension() string {
	return "." + string(k)
}

func (k Kind) String() string {
	return string(k)
}

// Writable reports whether archives of this kind can be produced. CBR is
// read-only by design.
func (k Kind) Writable() bool {
	return k == KindCBZ || k == KindCBT || k == KindCB7
}

var (
	zipMagic      = []byte{'P', 'K', 0x03, 0x04}
	zipEmptyMagic = []byte{'P', 'K', 0x05, 0x06}
	rar4Magic     = []byte{'R', 'a', 'r', '!', 0x1a, 0x07, 0x00}
	rar5Magic     = []byte{'R', 'a', 'r', '!', 0x1a, 0x07, 0x01, 0x00}
	sevenZipMagic = []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}
	gzipMagic     = []byte{0x1f, 0x8b}
)

// Detect inspects the container signature and returns the matching kind.
// Extensions are deliberately ignored so mislabelled files still open.
func Detect(data []byte) (Kind, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic) || bytes.HasPrefix(data, zipEmptyMagic):
		return KindCBZ, nil
	case bytes.HasPrefix(data, rar4Magic) || bytes.HasPrefix(data, rar5Magic):
		return KindCBR, nil
	case bytes.HasPrefix(data, sevenZipMagic):
		return KindCB7, nil
	case bytes.HasPrefix(data, gzipMagic):
		return KindCBT, nil
	case looksLikeTar(data):
		return KindCBT, nil
	default:
		return "", fmt.Errorf("%w: unrecognized container signature", ErrUnsupportedFormat)
	}
}

// looksLikeTar validates the checksum of the first tar header block, which
// covers pre-POSIX archives that carry no ustar magic.
func looksLikeTar(data []byte) bool {
	const blockSize = 512
	if len(data) < blockSize {
		return false
	}
	block := data[:blockSize]
	if string(block[257:262]) == "ustar" {
		return true
	}

	recorded := parseOctal(block[148:156])
	if recorded < 0 {
		return false
	}
	var unsigned int64
	for i, b := range block {
		if i >= 148 && i < 156 {
			unsigned += int64(' ')
			continue
		}
		unsigned += int64(b)
	}
	return unsigned == recorded
}

func parseOctal(field []byte) int64 {
	trimmed := strings.Trim(string(field), " \x00")
	if trimmed == "" {
		return -1
	}
	var value int64
	for _, r := range trimmed {
		if r < '0' || r > '7' {
			return -1
		}
		value = value<<3 + int64(r-'0')
	}
	return value
}

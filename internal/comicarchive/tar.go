package comicarchive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

func readTar(data []byte) ([]Entry, error) {
	var source io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(data, gzipMagic) {
		gz, err := gzip.NewReader(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
		defer gz.Close()
		source = gz
	}

	reader := tar.NewReader(source)
	var entries []Entry
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		// Links and parent traversal are rejected outright rather than
		// sanitized; a comic archive has no business carrying either.
		if strings.Contains(header.Name, "..") || strings.HasPrefix(header.Name, "/") {
			return nil, fmt.Errorf("%w: unsafe member path %q", ErrCorruptArchive, header.Name)
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrCorruptArchive, header.Name, err)
		}
		entries = append(entries, Entry{Name: header.Name, Data: content})
	}
	return entries, nil
}

func writeTar(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	writer := tar.NewWriter(gz)
	for _, entry := range entries {
		header := &tar.Header{
			Name:     entry.Name,
			Mode:     0o644,
			Size:     int64(len(entry.Data)),
			ModTime:  time.Unix(0, 0).UTC(),
			Typeflag: tar.TypeReg,
		}
		if err := writer.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("write tar header %s: %w", entry.Name, err)
		}
		if _, err := writer.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("write tar entry %s: %w", entry.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("finalize gzip: %w", err)
	}
	return buf.Bytes(), nil
}

package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"longbox/internal/comicarchive"
	"longbox/internal/fileutil"
	"longbox/internal/logging"
	"longbox/internal/queue"
)

// Convert rewrites every archive under the import directory into the
// configured output kind, in place, keeping each archive's entries and
// replacing only the container. Archives already in the output kind are
// skipped. Conversion does not touch the queue store; it is a
// preparation step run before sync.
func (o *Orchestrator) Convert(ctx context.Context) (*Report, error) {
	unlock, err := o.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	paths, err := fileutil.ListFiles(o.opts.ImportDir, archiveExtensions...)
	if err != nil {
		return nil, fmt.Errorf("scan import directory: %w", err)
	}

	report := &Report{}
	for _, path := range paths {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Results = append(report.Results, o.convertOne(path))
	}
	return report, nil
}

func (o *Orchestrator) convertOne(path string) Result {
	result := Result{SourcePath: path, Stage: "convert"}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Status = queue.StatusFailed
		result.Err = fmt.Errorf("read source: %w", err)
		return result
	}

	kind, entries, err := comicarchive.Open(data)
	if err != nil {
		result.Status = queue.StatusFailed
		result.Err = err
		return result
	}
	if kind == o.opts.OutputKind {
		result.Status = queue.StatusSkipped
		return result
	}

	payload, err := comicarchive.Write(o.opts.OutputKind, entries)
	if err != nil {
		result.Status = queue.StatusFailed
		result.Err = err
		return result
	}

	dest := strings.TrimSuffix(path, filepath.Ext(path)) + o.opts.OutputKind.Extension()
	if err := fileutil.WriteFileAtomic(dest, payload, 0o644); err != nil {
		result.Status = queue.StatusFailed
		result.Err = err
		return result
	}
	if !samePath(path, dest) {
		if err := os.Remove(path); err != nil {
			result.Status = queue.StatusFailed
			result.Err = fmt.Errorf("remove source: %w", err)
			return result
		}
	}

	result.DestinationPath = dest
	result.Status = queue.StatusWritten
	o.logger.Debug("converted archive",
		logging.String("source", path),
		logging.String("kind", string(o.opts.OutputKind)))
	return result
}

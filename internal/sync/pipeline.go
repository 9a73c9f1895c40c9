package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"longbox/internal/comicarchive"
	"longbox/internal/fileutil"
	"longbox/internal/logging"
	"longbox/internal/lookup"
	"longbox/internal/metadata"
	"longbox/internal/queue"
	"longbox/internal/reconcile"
	"longbox/internal/services"
)

// work carries one archive through the pipeline. Phase one stops after the
// destination path is known so that collisions can be detected across the
// whole batch before anything is written.
type work struct {
	item    *queue.Item
	modTime time.Time
	kind    comicarchive.Kind
	entries []comicarchive.Entry
	docs    metadata.Documents
	record  reconcile.Record
	dest    string
	err     error
	stage   string
}

func (w *work) fail(stage string, err error) {
	w.stage = stage
	w.err = err
}

// prepare runs an archive up to the Named state: open the container, parse
// its metadata, reconcile an identity, and render the destination path.
// Nothing on disk changes during this phase.
func (o *Orchestrator) prepare(ctx context.Context, w *work) {
	ctx = services.WithItemID(ctx, w.item.ID)
	ctx = services.WithArchive(ctx, filepath.Base(w.item.SourcePath))
	logger := logging.WithContext(services.WithStage(ctx, "prepare"), o.logger)
	logger.Debug("processing archive")

	data, err := os.ReadFile(w.item.SourcePath)
	if err != nil {
		w.fail("open", fmt.Errorf("read source: %w", err))
		return
	}

	kind, entries, err := comicarchive.Open(data)
	if err != nil {
		w.fail("open", err)
		return
	}
	w.kind = kind
	w.entries = entries
	w.item.SourceKind = string(kind)
	if err := o.advance(ctx, w, queue.StatusOpened); err != nil {
		w.fail("open", err)
		return
	}

	docs, err := metadata.Extract(entries)
	if err != nil {
		w.fail("parse", err)
		return
	}
	w.docs = docs
	if err := o.advance(ctx, w, queue.StatusMetadataParsed); err != nil {
		w.fail("parse", err)
		return
	}

	rec := reconcile.FromDocuments(docs)
	if o.opts.Gateway != nil {
		err = lookup.Resolve(ctx, o.opts.Gateway, &rec)
	} else {
		err = rec.Validate()
	}
	if err != nil {
		w.fail("reconcile", err)
		return
	}
	w.record = rec
	w.item.Series = rec.Series.Name
	w.item.Number = rec.Issue.Number
	if err := o.advance(ctx, w, queue.StatusReconciled); err != nil {
		w.fail("reconcile", err)
		return
	}

	rel := o.opts.Templates.Render(rec) + o.opts.OutputKind.Extension()
	w.dest = filepath.Join(o.opts.LibraryDir, filepath.FromSlash(rel))
	w.item.DestinationPath = w.dest
	if err := o.advance(ctx, w, queue.StatusNamed); err != nil {
		w.fail("name", err)
	}
}

// finish repackages a named archive and writes it into the library. Runs
// only for archives that survived the collision scan.
func (o *Orchestrator) finish(ctx context.Context, w *work) {
	ctx = services.WithItemID(ctx, w.item.ID)
	ctx = services.WithArchive(ctx, filepath.Base(w.item.SourcePath))

	reconcile.Apply(&w.docs, w.record)
	if !o.opts.WriteMetron {
		w.docs.Metron = nil
	}
	if !o.opts.WriteComic {
		w.docs.Comic = nil
	}
	w.docs.Legacy = nil

	rendered, err := w.docs.Render()
	if err != nil {
		w.fail("repackage", err)
		return
	}

	content := make([]comicarchive.Entry, 0, len(w.entries))
	for _, entry := range w.entries {
		if !entry.IsMetadata() {
			content = append(content, entry)
		}
	}
	if o.opts.CleanupExtras {
		content = cleanupExtras(content)
	}
	if o.opts.RenamePages {
		stem := strings.TrimSuffix(filepath.Base(w.dest), o.opts.OutputKind.Extension())
		content = renamePages(content, stem)
	}

	payload, err := comicarchive.Write(o.opts.OutputKind, append(rendered, content...))
	if err != nil {
		w.fail("repackage", err)
		return
	}
	if err := o.advance(ctx, w, queue.StatusRepackaged); err != nil {
		w.fail("repackage", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(w.dest), 0o755); err != nil {
		w.fail("write", fmt.Errorf("create destination directory: %w", err))
		return
	}
	if err := fileutil.WriteFileAtomic(w.dest, payload, 0o644); err != nil {
		w.fail("write", err)
		return
	}
	if err := o.opts.Markers.SetMarker(ctx, w.item.SourcePath, w.modTime); err != nil {
		w.fail("write", err)
		return
	}
	if !o.opts.KeepSource && !samePath(w.item.SourcePath, w.dest) {
		if err := os.Remove(w.item.SourcePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.fail("write", fmt.Errorf("remove source: %w", err))
			return
		}
	}
	if err := o.advance(ctx, w, queue.StatusWritten); err != nil {
		w.fail("write", err)
		return
	}
	logging.WithContext(ctx, o.logger).Info("archive written",
		logging.String("destination", w.dest))
}

func (o *Orchestrator) advance(ctx context.Context, w *work, status queue.Status) error {
	w.item.Status = status
	if err := o.opts.Store.Update(ctx, w.item); err != nil {
		return services.Wrap(services.ErrTransient, string(status), "queue update", "", err)
	}
	return nil
}

func samePath(a, b string) bool {
	ca, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	cb, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return ca == cb
}

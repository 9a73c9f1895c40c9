package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"longbox/internal/comicarchive"
	"longbox/internal/fileutil"
	"longbox/internal/logging"
	"longbox/internal/lookup"
	"longbox/internal/naming"
	"longbox/internal/queue"
	"longbox/internal/services"
)

var archiveExtensions = []string{".cbz", ".cbr", ".cbt", ".cb7"}

// Options wires the orchestrator to its collaborators. Store, Markers,
// and Templates are required; Gateway is optional and nil disables
// remote lookup.
type Options struct {
	ImportDir  string
	LibraryDir string
	OutputKind comicarchive.Kind
	Templates  *naming.Set

	RenamePages   bool
	CleanupExtras bool
	KeepSource    bool
	WriteMetron   bool
	WriteComic    bool

	Workers  int
	Force    bool
	LockPath string

	Store   *queue.Store
	Markers queue.Markers
	Gateway lookup.Gateway
	Logger  *slog.Logger
}

// Orchestrator runs the import pipeline over the import directory.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil || opts.Markers == nil {
		return nil, errors.New("sync requires a queue store and markers")
	}
	if opts.Templates == nil {
		return nil, errors.New("sync requires compiled naming templates")
	}
	if !opts.OutputKind.Writable() {
		return nil, fmt.Errorf("%w: cannot write %s archives", comicarchive.ErrUnsupportedFormat, opts.OutputKind)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Orchestrator{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "sync")}, nil
}

// Run processes every archive under the import directory and returns a
// per-archive report. Archive failures are recorded in the report, not
// returned; the error return covers run-level problems only.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	unlock, err := o.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, o.logger)

	paths, err := fileutil.ListFiles(o.opts.ImportDir, archiveExtensions...)
	if err != nil {
		return nil, fmt.Errorf("scan import directory: %w", err)
	}

	report := &Report{}
	var pending []*work
	for _, path := range paths {
		w, skipped, err := o.admit(ctx, path)
		if err != nil {
			return report, err
		}
		if skipped {
			report.Results = append(report.Results, Result{
				SourcePath: path,
				Status:     queue.StatusSkipped,
			})
			continue
		}
		pending = append(pending, w)
	}

	o.runPool(ctx, pending, o.prepare)
	o.failCollisions(pending)

	var survivors []*work
	for _, w := range pending {
		if w.err == nil {
			survivors = append(survivors, w)
		}
	}
	o.runPool(ctx, survivors, o.finish)

	for _, w := range pending {
		report.Results = append(report.Results, o.settle(ctx, w))
	}

	if err := fileutil.RemoveEmptyDirs(o.opts.ImportDir); err != nil {
		logger.Warn("failed to prune empty import directories", logging.Error(err))
	}

	written, skipped, failed := report.Counts()
	logger.Info("sync finished",
		logging.Int("written", written),
		logging.Int("skipped", skipped),
		logging.Int("failed", failed))
	return report, ctx.Err()
}

// admit registers one discovered archive and decides whether it is stale.
// A fresh marker skips the archive without reading a single byte of it.
func (o *Orchestrator) admit(ctx context.Context, path string) (*work, bool, error) {
	item, err := o.opts.Store.NewItem(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("enqueue %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}

	if !o.opts.Force {
		processedAt, ok, err := o.opts.Markers.Marker(ctx, path)
		if err != nil {
			return nil, false, fmt.Errorf("read marker for %s: %w", path, err)
		}
		if ok && !processedAt.Before(info.ModTime()) {
			item.Status = queue.StatusSkipped
			if err := o.opts.Store.Update(ctx, item); err != nil {
				return nil, false, err
			}
			o.logger.Debug("skipping unchanged archive", logging.String("source", path))
			return nil, true, nil
		}
	}

	return &work{item: item, modTime: info.ModTime()}, false, nil
}

// failCollisions fails every archive whose destination is claimed by
// another archive in the same run. All colliders fail; none is written.
func (o *Orchestrator) failCollisions(pending []*work) {
	byDest := make(map[string][]*work)
	for _, w := range pending {
		if w.err == nil && w.dest != "" {
			byDest[w.dest] = append(byDest[w.dest], w)
		}
	}
	for dest, group := range byDest {
		if len(group) < 2 {
			continue
		}
		sources := make([]string, len(group))
		for i, w := range group {
			sources[i] = w.item.SourcePath
		}
		for _, w := range group {
			w.fail("name", fmt.Errorf("%w: %s claimed by %s",
				ErrDestinationCollision, dest, strings.Join(sources, ", ")))
		}
	}
}

// settle records the terminal state of one archive in the queue store
// and converts it into a report entry.
func (o *Orchestrator) settle(ctx context.Context, w *work) Result {
	result := Result{
		SourcePath:      w.item.SourcePath,
		DestinationPath: w.item.DestinationPath,
		Status:          w.item.Status,
		Stage:           w.stage,
		Err:             w.err,
	}
	if w.err == nil {
		return result
	}

	result.Status = queue.StatusFailed
	w.item.Status = queue.StatusFailed
	w.item.ErrorMessage = w.err.Error()
	if err := o.opts.Store.Update(ctx, w.item); err != nil {
		o.logger.Warn("failed to record archive failure",
			logging.String("source", w.item.SourcePath), logging.Error(err))
	}
	o.logger.Error("archive failed",
		logging.String("source", w.item.SourcePath),
		logging.String("stage", w.stage),
		logging.Error(w.err))
	return result
}

func (o *Orchestrator) runPool(ctx context.Context, items []*work, run func(context.Context, *work)) {
	if len(items) == 0 {
		return
	}
	workers := o.opts.Workers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan *work)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range jobs {
				if ctx.Err() != nil {
					w.fail("run", ctx.Err())
					continue
				}
				run(ctx, w)
			}
		}()
	}
	for _, w := range items {
		jobs <- w
	}
	close(jobs)
	wg.Wait()
}

func (o *Orchestrator) acquireLock() (func(), error) {
	if o.opts.LockPath == "" {
		return func() {}, nil
	}
	lock := flock.New(o.opts.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another sync run is already in progress")
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}, nil
}

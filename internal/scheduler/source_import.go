package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/sources/homepage"
)

// ShortcutImporter receives imported records.
type ShortcutImporter interface {
	Import(ctx context.Context, records []domain.Shortcut) (int, error)
}

// SourceStatus describes the last import of one source.
type SourceStatus struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	LastImport time.Time `json:"last_import"`
	Found      int       `json:"found"`
	Added      int       `json:"added"`
	Error      string    `json:"error,omitempty"`
}

// Importer merges external shortcut sources into the store on start, on
// an interval, on manual trigger and, when watching, whenever a source
// file changes on disk.
type Importer struct {
	sources       []homepage.Source
	target        ShortcutImporter
	logger        logger.Logger
	interval      time.Duration
	manualTrigger chan struct{}
	watch         bool
	debounce      time.Duration

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	mu     sync.RWMutex
	status map[string]SourceStatus
}

// NewImporter creates an importer. manualTrigger may be nil.
func NewImporter(
	sources []homepage.Source,
	target ShortcutImporter,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
	watch bool,
) *Importer {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Importer{
		sources:       sources,
		target:        target,
		logger:        log,
		interval:      interval,
		manualTrigger: manualTrigger,
		watch:         watch,
		debounce:      500 * time.Millisecond,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		status:        make(map[string]SourceStatus, len(sources)),
	}
}

// Start imports every source once and starts the background loop.
// A source that fails to load is logged and retried on the next round.
func (im *Importer) Start(ctx context.Context) error {
	im.ImportAll(ctx)

	if im.watch {
		im.startWatcher()
	}

	ticker := time.NewTicker(im.interval)
	go func() {
		defer close(im.doneCh)
		defer ticker.Stop()
		defer im.closeWatcher()
		im.loop(ctx, ticker.C)
	}()

	return nil
}

// Stop stops the loop and waits for it to exit. Only valid after Start.
func (im *Importer) Stop() {
	im.stopOnce.Do(func() { close(im.stopCh) })
	<-im.doneCh
}

func (im *Importer) loop(ctx context.Context, tick <-chan time.Time) {
	var (
		events   <-chan fsnotify.Event
		errs     <-chan error
		settle   <-chan time.Time
		pendings = make(map[string]bool)
	)
	if im.watcher != nil {
		events = im.watcher.Events
		errs = im.watcher.Errors
	}

	for {
		select {
		case <-tick:
			im.ImportAll(ctx)

		case <-im.manualTrigger:
			im.logger.Info("manual import triggered")
			im.ImportAll(ctx)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if src := im.sourceFor(ev); src != nil {
				im.logger.Debug("source file changed",
					logger.String("path", ev.Name),
					logger.String("op", ev.Op.String()))
				pendings[src.Path()] = true
				settle = time.After(im.debounce)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			im.logger.Warn("source watcher error", logger.Error(err))

		case <-settle:
			settle = nil
			for _, src := range im.sources {
				if pendings[src.Path()] {
					im.importOne(ctx, src)
				}
			}
			pendings = make(map[string]bool)

		case <-im.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// ImportAll imports every source once.
func (im *Importer) ImportAll(ctx context.Context) {
	for _, src := range im.sources {
		im.importOne(ctx, src)
	}
}

func (im *Importer) importOne(ctx context.Context, src homepage.Source) {
	st := SourceStatus{Name: src.Name(), Path: src.Path(), LastImport: time.Now()}

	records, err := src.Shortcuts()
	if err != nil {
		st.Error = err.Error()
		im.logger.Warn("failed to read shortcut source",
			logger.String("source", src.Name()),
			logger.String("path", src.Path()),
			logger.Error(err))
		im.setStatus(st)
		return
	}
	st.Found = len(records)

	added, err := im.target.Import(ctx, records)
	if err != nil {
		st.Error = err.Error()
		im.logger.Error("failed to import shortcuts",
			logger.String("source", src.Name()),
			logger.Error(err))
		im.setStatus(st)
		return
	}
	st.Added = added

	im.logger.Info("shortcut source imported",
		logger.String("source", src.Name()),
		logger.Int("found", st.Found),
		logger.Int("added", added))
	im.setStatus(st)
}

func (im *Importer) setStatus(st SourceStatus) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.status[st.Path] = st
}

// Status returns the last import result of every source, in source order.
// Sources not imported yet are reported with a zero LastImport.
func (im *Importer) Status() []SourceStatus {
	im.mu.RLock()
	defer im.mu.RUnlock()

	out := make([]SourceStatus, 0, len(im.sources))
	for _, src := range im.sources {
		st, ok := im.status[src.Path()]
		if !ok {
			st = SourceStatus{Name: src.Name(), Path: src.Path()}
		}
		out = append(out, st)
	}
	return out
}

// startWatcher watches the directories holding the source files.
// Editors often replace files via rename, which only a directory watch sees.
func (im *Importer) startWatcher() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		im.logger.Warn("file watching disabled", logger.Error(err))
		return
	}

	watched := make(map[string]bool)
	for _, src := range im.sources {
		dir := filepath.Dir(src.Path())
		if watched[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			im.logger.Warn("cannot watch source directory",
				logger.String("dir", dir), logger.Error(err))
			continue
		}
		watched[dir] = true
		im.logger.Debug("watching source directory", logger.String("dir", dir))
	}

	if len(watched) == 0 {
		_ = w.Close()
		return
	}
	im.watcher = w
}

func (im *Importer) closeWatcher() {
	if im.watcher == nil {
		return
	}
	if err := im.watcher.Close(); err != nil {
		im.logger.Debug("error closing source watcher", logger.Error(err))
	}
}

// sourceFor maps a write/create/rename event to the source it concerns.
func (im *Importer) sourceFor(ev fsnotify.Event) homepage.Source {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return nil
	}
	name := filepath.Clean(ev.Name)
	for _, src := range im.sources {
		if filepath.Clean(src.Path()) == name {
			return src
		}
	}
	return nil
}

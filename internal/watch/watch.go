// Package watch rebuilds the site when files under the source directory
// change. Bursts of events are coalesced by a quiet-window debounce.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docpost/internal/build"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/logfields"
)

// DefaultDebounce is the quiet window used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Rebuilder is the part of build.Driver the session drives.
type Rebuilder interface {
	Build(ctx context.Context) (*build.Result, error)
	Rebuild(ctx context.Context, changed []string) (*build.Result, error)
}

// Session watches one source directory.
type Session struct {
	root     string
	debounce time.Duration
	target   Rebuilder
	logger   *slog.Logger
	ready    chan struct{}

	// OnResult, when set, is called after every triggered build.
	OnResult func(*build.Result, error)
}

// New returns a session for root. A zero debounce uses DefaultDebounce.
func New(root string, debounce time.Duration, target Rebuilder, logger *slog.Logger) (*Session, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve source directory").
			WithContext("path", root).
			Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{root: abs, debounce: debounce, target: target, logger: logger, ready: make(chan struct{})}, nil
}

// Ready is closed once every directory is being watched.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Run watches until ctx is cancelled. Build failures are logged and do not
// end the session.
func (s *Session) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create file watcher").Build()
	}
	defer func() { _ = w.Close() }()
	if err := s.addDirsRecursive(w, s.root); err != nil {
		return err
	}
	close(s.ready)
	s.logger.Info("Watching for changes", logfields.Path(s.root), slog.Duration("debounce", s.debounce))

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := newBatch()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if s.handleEvent(w, pending, ev) {
				timer.Reset(s.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", logfields.Error(err))
		case <-timer.C:
			s.flush(ctx, pending)
			pending = newBatch()
		}
	}
}

func (s *Session) handleEvent(w *fsnotify.Watcher, b *batch, ev fsnotify.Event) bool {
	if shouldIgnoreEvent(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = s.addDirsRecursive(w, ev.Name)
		}
	}
	rel, err := filepath.Rel(s.root, ev.Name)
	if err != nil {
		return false
	}
	if !b.add(filepath.ToSlash(rel), ev.Op) {
		return false
	}
	s.logger.Debug("File change detected", logfields.Path(rel), slog.String("op", ev.Op.String()))
	return true
}

func (s *Session) flush(ctx context.Context, b *batch) {
	var (
		res *build.Result
		err error
	)
	if b.full {
		s.logger.Info("Source tree changed; rebuilding site")
		res, err = s.target.Build(ctx)
	} else {
		changed := b.paths()
		s.logger.Info("Pages changed; rebuilding", logfields.Pages(len(changed)))
		res, err = s.target.Rebuild(ctx, changed)
	}
	if err != nil {
		s.logger.Warn("rebuild failed", logfields.Error(err))
	}
	if s.OnResult != nil {
		s.OnResult(res, err)
	}
}

func (s *Session) addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errors.WrapError(err, errors.CategoryFileSystem, "watch source directory").
					WithContext("path", root).
					Build()
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			s.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// batch accumulates the events of one debounce window.
type batch struct {
	// full is set when the set of pages may have changed, which affects
	// navigation on every page.
	full    bool
	changed map[string]bool
}

func newBatch() *batch { return &batch{changed: map[string]bool{}} }

// add records an event for rel and reports whether it needs a rebuild.
func (b *batch) add(rel string, op fsnotify.Op) bool {
	switch {
	case op.Has(fsnotify.Create), op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		if filepath.Ext(rel) == "" || isMarkdown(rel) {
			b.full = true
			return true
		}
		return false
	case op.Has(fsnotify.Write):
		if !isMarkdown(rel) {
			return false
		}
		b.changed[rel] = true
		return true
	default:
		return false
	}
}

func (b *batch) paths() []string {
	out := make([]string, 0, len(b.changed))
	for p := range b.changed {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func isMarkdown(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".md")
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db" || base == "4913"
}

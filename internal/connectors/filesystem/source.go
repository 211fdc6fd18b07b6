package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// DefaultDebounce is how long events for one path are coalesced.
const DefaultDebounce = 250 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem source is closed")

// Source lists and watches documents under a file or directory.
// Hidden entries and files without a supported extension are ignored.
type Source struct {
	root     string
	debounce time.Duration

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// Option configures a Source.
type Option func(*Source)

// WithDebounce sets the event coalescing window. Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// New creates a source rooted at path. Relative paths are made absolute.
func New(path string, opts ...Option) *Source {
	root := filepath.Clean(path)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	s := &Source{root: root, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the path the source was created for.
func (s *Source) Root() string {
	return s.root
}

// List returns every supported, non-hidden file under the root in lexical order.
// A root that is itself a file is returned if its format is supported.
func (s *Source) List(ctx context.Context) ([]domain.SourceFile, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		if !isSupported(s.root) {
			return []domain.SourceFile{}, nil
		}
		return []domain.SourceFile{toSourceFile(s.root, info)}, nil
	}

	files := []domain.SourceFile{}
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Cannot read %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != s.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !isSupported(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Cannot stat %s: %v", path, err)
			return nil
		}
		files = append(files, toSourceFile(path, info))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Watch streams changes to supported files until ctx is cancelled.
// Directories created after Watch starts are watched too.
func (s *Source) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if info.IsDir() {
		err = s.addTree(watcher, s.root)
	} else {
		err = watcher.Add(filepath.Dir(s.root))
	}
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.root, err)
	}

	s.watchers = append(s.watchers, watcher)
	changes := make(chan domain.FileChange)
	go s.run(ctx, watcher, changes)
	return changes, nil
}

// Close stops every watcher. Safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, w := range s.watchers {
		errs = append(errs, w.Close())
	}
	s.watchers = nil
	return errors.Join(errs...)
}

// run forwards coalesced watcher events until ctx is done or the watcher closes.
func (s *Source) run(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- domain.FileChange) {
	defer close(changes)
	defer watcher.Close()

	pending := newPendingChanges()
	flush := time.NewTimer(s.debounce)
	flush.Stop()
	defer flush.Stop()

	send := func(change domain.FileChange) bool {
		select {
		case changes <- change:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				s.watchNewDirectory(watcher, event.Name)
			}
			change := s.handleFsEvent(event)
			if change == nil {
				continue
			}
			if s.debounce == 0 {
				if !send(*change) {
					return
				}
				continue
			}
			pending.add(*change)
			flush.Reset(s.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error on %s: %v", s.root, err)

		case <-flush.C:
			for _, change := range pending.drain() {
				if !send(change) {
					return
				}
			}
		}
	}
}

// handleFsEvent converts a watcher event into a change, or nil if it is not relevant.
func (s *Source) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	path := filepath.Clean(event.Name)
	if !s.inScope(path) || !isSupported(path) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, File: domain.SourceFile{Path: path}}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.FileChange{Type: changeType, File: toSourceFile(path, info)}
	default:
		return nil
	}
}

// inScope reports whether path belongs to this source.
func (s *Source) inScope(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// A file root watches its parent directory.
		return false
	}
	return !isHidden(rel)
}

func (s *Source) watchNewDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || !s.inScope(path) {
		return
	}
	if err := s.addTree(watcher, path); err != nil {
		logger.Warn("Cannot watch %s: %v", path, err)
	}
}

// addTree watches dir and every non-hidden directory below it.
func (s *Source) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// pendingChanges coalesces events per path, keeping first-seen order.
type pendingChanges struct {
	order   []string
	changes map[string]domain.FileChange
}

func newPendingChanges() *pendingChanges {
	return &pendingChanges{changes: make(map[string]domain.FileChange)}
}

// add records a change. A create followed by writes stays a create.
func (p *pendingChanges) add(change domain.FileChange) {
	path := change.File.Path
	prev, seen := p.changes[path]
	if !seen {
		p.order = append(p.order, path)
	}
	if seen && prev.Type == domain.ChangeCreated && change.Type == domain.ChangeUpdated {
		change.Type = domain.ChangeCreated
	}
	p.changes[path] = change
}

func (p *pendingChanges) drain() []domain.FileChange {
	out := make([]domain.FileChange, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.changes[path])
	}
	p.order = nil
	p.changes = make(map[string]domain.FileChange)
	return out
}

// isHidden returns true if any path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isSupported(path string) bool {
	return domain.FormatFromPath(path) != ""
}

func toSourceFile(path string, info fs.FileInfo) domain.SourceFile {
	return domain.SourceFile{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

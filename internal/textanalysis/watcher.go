package textanalysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
)

// LexiconWatcher serves the most recently loaded lexicon from a file and
// reloads it when the file changes. A reload builds a new Lexicon and swaps
// the pointer, so extractions already running keep the snapshot they took.
type LexiconWatcher struct {
	path    string
	current atomic.Pointer[Lexicon]
	watcher *fsnotify.Watcher
	logger  infralogger.Logger
}

// NewLexiconWatcher loads path and starts watching its directory. Editors
// often replace files by rename, so the directory is watched rather than
// the file itself.
func NewLexiconWatcher(path string, log infralogger.Logger) (*LexiconWatcher, error) {
	lex, err := LoadLexiconFile(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err = w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch lexicon dir: %w", err)
	}

	lw := &LexiconWatcher{
		path:    filepath.Clean(path),
		watcher: w,
		logger:  log,
	}
	lw.current.Store(lex)
	return lw, nil
}

// Current returns the active lexicon.
func (w *LexiconWatcher) Current() *Lexicon {
	return w.current.Load()
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *LexiconWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Lexicon watcher error", infralogger.Error(err))
		}
	}
}

func (w *LexiconWatcher) reload() {
	lex, err := LoadLexiconFile(w.path)
	if err != nil {
		w.logger.Warn("Ignoring invalid lexicon file",
			infralogger.String("path", w.path),
			infralogger.Error(err),
		)
		return
	}

	w.current.Store(lex)
	fake, credible := lex.Size()
	w.logger.Info("Lexicon reloaded",
		infralogger.String("path", w.path),
		infralogger.Int("fake_indicators", fake),
		infralogger.Int("credible_indicators", credible),
	)
}

// Close stops watching.
func (w *LexiconWatcher) Close() error {
	return w.watcher.Close()
}

package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// FileWatcher polls the workspace root and reparses files whose
// modification time moved forward. Files that disappear are removed.
type FileWatcher struct {
	workspace    *Workspace
	stopCh       chan struct{}
	wg           sync.WaitGroup
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(path string)
	skip         func(path string) bool
}

type WatcherOption func(*FileWatcher)

func WithPollInterval(d time.Duration) WatcherOption {
	return func(fw *FileWatcher) {
		fw.pollInterval = d
	}
}

// OnChange registers fn to run after a file was reparsed or removed.
func OnChange(fn func(path string)) WatcherOption {
	return func(fw *FileWatcher) {
		fw.onChange = fn
	}
}

// Skip makes the watcher leave paths for which fn returns true alone, such
// as documents whose current content comes from an editor.
func Skip(fn func(path string) bool) WatcherOption {
	return func(fw *FileWatcher) {
		fw.skip = fn
	}
}

func NewFileWatcher(w *Workspace, opts ...WatcherOption) *FileWatcher {
	fw := &FileWatcher{
		workspace:    w,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw
}

// Prime records the current modification times without reparsing, so that
// only later changes are reported. It must be called before Start.
func (fw *FileWatcher) Prime() {
	fw.walk(func(path string, info os.FileInfo) {
		fw.modTimes[path] = info.ModTime()
	})
}

func (fw *FileWatcher) Start() {
	fw.wg.Add(1)
	go fw.run()
}

// Stop ends polling and waits for the polling goroutine to exit.
func (fw *FileWatcher) Stop() {
	close(fw.stopCh)
	fw.wg.Wait()
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()
	ticker := time.NewTicker(fw.pollInterval)
	defer ticker.Stop()

	fw.scan()

	for {
		select {
		case <-fw.stopCh:
			return
		case <-ticker.C:
			fw.scan()
		}
	}
}

func (fw *FileWatcher) scan() {
	ws := fw.workspace
	currentFiles := make(map[string]bool)

	fw.walk(func(path string, info os.FileInfo) {
		currentFiles[path] = true
		if fw.skipped(path) {
			return
		}
		lastMod, known := fw.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			return
		}
		fw.modTimes[path] = info.ModTime()
		if err := ws.ScanFile(path); err != nil {
			log.Warningf("reading %s: %s", path, err)
			return
		}
		fw.changed(path)
	})

	for path := range fw.modTimes {
		if !currentFiles[path] && !fw.skipped(path) {
			delete(fw.modTimes, path)
			ws.RemoveFile(path)
			fw.changed(path)
		}
	}
}

// walk calls fn for every SkSL file below the workspace root, skipping
// hidden directories.
func (fw *FileWatcher) walk(fn func(path string, info os.FileInfo)) {
	ws := fw.workspace
	afero.Walk(ws.Fs(), ws.RootDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != ws.RootDir() && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if ws.Config().HasExtension(path) {
			fn(path, info)
		}
		return nil
	})
}

func (fw *FileWatcher) skipped(path string) bool {
	return fw.skip != nil && fw.skip(path)
}

func (fw *FileWatcher) changed(path string) {
	if fw.onChange != nil {
		fw.onChange(path)
	}
}

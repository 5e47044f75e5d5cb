// Package workspace keeps the parsed state of a tree of SkSL files: their
// syntax trees, diagnostics and declaration outlines. It backs the language
// server and the check command.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/sksl/config"
	"github.com/dhamidi/sksl/format"
	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/parser"
)

var log = commonlog.GetLogger("sksl.workspace")

type Workspace struct {
	mu      sync.RWMutex
	fs      afero.Fs
	rootDir string
	conf    config.Config
	files   map[string]*FileInfo
}

type FileInfo struct {
	Path        string
	Content     []byte
	AST         *ast.File
	Diagnostics *diag.List
	Symbols     []format.Symbol
}

// ErrorCount is the number of diagnostics reported for the file.
func (f *FileInfo) ErrorCount() int {
	return f.Diagnostics.ErrorCount()
}

func New(fs afero.Fs, rootDir string, conf config.Config) *Workspace {
	return &Workspace{
		fs:      fs,
		rootDir: rootDir,
		conf:    conf,
		files:   make(map[string]*FileInfo),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

func (w *Workspace) Config() config.Config {
	return w.conf
}

// ScanAll parses every file below the root directory whose extension is
// configured. Hidden directories are skipped.
func (w *Workspace) ScanAll(ctx context.Context) error {
	var paths []string
	err := afero.Walk(w.fs, w.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != w.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if w.conf.HasExtension(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return w.ScanPaths(ctx, paths)
}

// ScanPaths reads and parses paths concurrently. The first read error
// cancels the remaining work and is returned.
func (w *Workspace) ScanPaths(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return w.ScanFile(path)
		})
	}
	err := g.Wait()
	log.Debugf("scanned %d files under %s", len(paths), w.rootDir)
	return err
}

func (w *Workspace) ScanFile(path string) error {
	content, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return err
	}
	w.UpdateFile(path, content)
	return nil
}

// UpdateFile parses content as the new text of path and replaces whatever
// was known about it.
func (w *Workspace) UpdateFile(path string, content []byte) *FileInfo {
	info := w.parse(path, content)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = info
	return info
}

func (w *Workspace) parse(path string, content []byte) *FileInfo {
	file, errs := parser.ParseFile(path, content, w.conf.ParserOptions()...)
	if n := errs.ErrorCount(); n > 0 {
		log.Debugf("%s: %d diagnostics", path, n)
	}
	return &FileInfo{
		Path:        path,
		Content:     content,
		AST:         file,
		Diagnostics: errs,
		Symbols:     format.Outline(file),
	}
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

func (w *Workspace) GetFile(path string) *FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Paths returns the known files in lexical order.
func (w *Workspace) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ErrorCount sums the diagnostics of all known files.
func (w *Workspace) ErrorCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := 0
	for _, f := range w.files {
		total += f.ErrorCount()
	}
	return total
}

// Location points at a declaration inside a workspace file.
type Location struct {
	Path      string
	Symbol    format.Symbol
	Container string
}

// FindSymbol returns the declarations named name, including struct fields,
// enum cases and interface block members.
func (w *Workspace) FindSymbol(name string) []Location {
	return w.collect(func(s format.Symbol) bool {
		return s.Name == name
	})
}

// Search returns the declarations whose name contains query, ignoring case.
// An empty query matches everything.
func (w *Workspace) Search(query string) []Location {
	query = strings.ToLower(query)
	return w.collect(func(s format.Symbol) bool {
		return s.Name != "" && strings.Contains(strings.ToLower(s.Name), query)
	})
}

func (w *Workspace) collect(match func(format.Symbol) bool) []Location {
	var locations []Location
	for _, path := range w.Paths() {
		f := w.GetFile(path)
		if f == nil {
			continue
		}
		for _, s := range f.Symbols {
			if match(s) {
				locations = append(locations, Location{Path: path, Symbol: s})
			}
			for _, child := range s.Children {
				if match(child) {
					locations = append(locations, Location{Path: path, Symbol: child, Container: s.Name})
				}
			}
		}
	}
	return locations
}

// WordAt returns the identifier that covers offset in content, or "".
func WordAt(content []byte, offset int) string {
	if offset < 0 || offset > len(content) {
		return ""
	}
	start, end := offset, offset
	for start > 0 && isWordByte(content[start-1]) {
		start--
	}
	for end < len(content) && isWordByte(content[end]) {
		end++
	}
	if start == end || (content[start] >= '0' && content[start] <= '9') {
		return ""
	}
	return string(content[start:end])
}

func isWordByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

package workspace

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/sksl/config"
	"github.com/dhamidi/sksl/format"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "sksl"

var lspLog = commonlog.GetLogger("sksl.lsp")

type LSPServer struct {
	fs        afero.Fs
	conf      config.Config
	workspace *Workspace
	handler   protocol.Handler
	server    *server.Server
	version   string

	// pollInterval is how often files on disk are checked for changes made
	// outside the editor. Zero disables watching.
	pollInterval time.Duration

	mu      sync.Mutex
	open    map[string]bool
	watcher *FileWatcher
}

func NewLSPServer(fs afero.Fs, conf config.Config, version string) *LSPServer {
	ls := &LSPServer{
		fs:           fs,
		conf:         conf,
		version:      version,
		pollInterval: time.Second,
		open:         make(map[string]bool),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentDefinition:     ls.textDocumentDefinition,
		WorkspaceSymbol:            ls.workspaceSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.workspace = New(ls.fs, rootDir, ls.conf)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	var watcher *FileWatcher
	if ls.pollInterval > 0 {
		watcher = NewFileWatcher(ls.workspace,
			WithPollInterval(ls.pollInterval),
			Skip(ls.isOpen),
			OnChange(func(path string) { ls.diskChanged(ctx, path) }))
		watcher.Prime()
	}
	if err := ls.workspace.ScanAll(context.Background()); err != nil {
		lspLog.Warningf("scanning %s: %s", ls.workspace.RootDir(), err)
	}
	for _, path := range ls.workspace.Paths() {
		if f := ls.workspace.GetFile(path); f != nil && f.ErrorCount() > 0 {
			ls.publishDiagnostics(ctx, f)
		}
	}
	if watcher != nil {
		ls.mu.Lock()
		ls.watcher = watcher
		ls.mu.Unlock()
		watcher.Start()
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	ls.mu.Lock()
	watcher := ls.watcher
	ls.watcher = nil
	ls.mu.Unlock()
	if watcher != nil {
		watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) isOpen(path string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.open[path]
}

func (ls *LSPServer) setOpen(path string, open bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if open {
		ls.open[path] = true
	} else {
		delete(ls.open, path)
	}
}

// diskChanged runs on the watcher goroutine after a file that is not open
// in the editor was reparsed or removed.
func (ls *LSPServer) diskChanged(ctx *glsp.Context, path string) {
	lspLog.Debugf("%s changed on disk", path)
	if f := ls.workspace.GetFile(path); f != nil {
		ls.publishDiagnostics(ctx, f)
		return
	}
	ls.clearDiagnostics(ctx, path)
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.setOpen(path, true)
	ls.update(ctx, path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, path, []byte(textChange.Text))
		}
	}
	return nil
}

// textDocumentDidClose drops unsaved editor content: the file on disk is
// authoritative again.
func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.setOpen(path, false)
	if err := ls.workspace.ScanFile(path); err != nil {
		ls.workspace.RemoveFile(path)
		ls.clearDiagnostics(ctx, path)
		return nil
	}
	ls.publishDiagnostics(ctx, ls.workspace.GetFile(path))
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.update(ctx, path, []byte(*params.Text))
		return nil
	}
	if err := ls.workspace.ScanFile(path); err != nil {
		lspLog.Warningf("reading %s: %s", path, err)
		return nil
	}
	ls.publishDiagnostics(ctx, ls.workspace.GetFile(path))
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, path string, content []byte) {
	ls.publishDiagnostics(ctx, ls.workspace.UpdateFile(path, content))
}

// publishDiagnostics replaces the client's diagnostics for f. An empty list
// clears them.
func (ls *LSPServer) publishDiagnostics(ctx *glsp.Context, f *FileInfo) {
	if f == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(f.Path),
		Diagnostics: toProtocolDiagnostics(f),
	})
}

func (ls *LSPServer) clearDiagnostics(ctx *glsp.Context, path string) {
	if ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: []protocol.Diagnostic{},
	})
}

func toProtocolDiagnostics(f *FileInfo) []protocol.Diagnostic {
	lines := diag.NewLineIndex(f.Path, f.Content)
	severity := protocol.DiagnosticSeverityError
	source := lsName
	result := []protocol.Diagnostic{}
	for _, d := range f.Diagnostics.Diagnostics() {
		code := protocol.IntegerOrString{Value: d.Code.String()}
		result = append(result, protocol.Diagnostic{
			Range:    toRange(lines, d.Offset, tokenEnd(f.Content, d.Offset)),
			Severity: &severity,
			Code:     &code,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return result
}

// tokenEnd returns the end of the token starting at offset, so that a
// diagnostic underlines the token it reports.
func tokenEnd(content []byte, offset int) int {
	if offset >= len(content) {
		return offset
	}
	tok := lexer.New(content[offset:]).Next()
	if tok.Length <= 0 {
		return offset + 1
	}
	return offset + int(tok.Length)
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.workspace.GetFile(path)
	if f == nil {
		return nil, nil
	}
	return toDocumentSymbols(f), nil
}

func toDocumentSymbols(f *FileInfo) []protocol.DocumentSymbol {
	lines := diag.NewLineIndex(f.Path, f.Content)
	result := []protocol.DocumentSymbol{}
	for _, s := range f.Symbols {
		result = append(result, toDocumentSymbol(lines, f.Content, s))
	}
	return result
}

func toDocumentSymbol(lines *diag.LineIndex, content []byte, s format.Symbol) protocol.DocumentSymbol {
	name := s.Name
	if name == "" {
		name = s.Modifiers
	}
	r := toRange(lines, s.Offset, tokenEnd(content, s.Offset))
	ds := protocol.DocumentSymbol{
		Name:           name,
		Kind:           toSymbolKind(s.Kind),
		Range:          r,
		SelectionRange: r,
	}
	if detail := symbolDetail(s); detail != "" {
		ds.Detail = &detail
	}
	for _, child := range s.Children {
		ds.Children = append(ds.Children, toDocumentSymbol(lines, content, child))
	}
	return ds
}

func symbolDetail(s format.Symbol) string {
	if s.Kind != "function" {
		return strings.TrimSpace(s.Modifiers + " " + s.Type)
	}
	params := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		params[i] = strings.TrimSpace(p.Modifiers + " " + p.Type + " " + p.Name)
	}
	return s.Type + " (" + strings.Join(params, ", ") + ")"
}

func toSymbolKind(kind string) protocol.SymbolKind {
	switch kind {
	case "function":
		return protocol.SymbolKindFunction
	case "struct":
		return protocol.SymbolKindStruct
	case "enum":
		return protocol.SymbolKindEnum
	case "case":
		return protocol.SymbolKindEnumMember
	case "interface":
		return protocol.SymbolKindInterface
	case "field":
		return protocol.SymbolKindField
	case "section", "extension":
		return protocol.SymbolKindNamespace
	default:
		return protocol.SymbolKindVariable
	}
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.workspace.GetFile(path)
	if f == nil {
		return nil, nil
	}
	lines := diag.NewLineIndex(path, f.Content)
	offset := lines.Offset(int(params.Position.Line)+1, int(params.Position.Character)+1)
	word := WordAt(f.Content, offset)
	if word == "" {
		return nil, nil
	}
	var result []protocol.Location
	for _, loc := range ls.workspace.FindSymbol(word) {
		result = append(result, ls.toLocation(loc))
	}
	return result, nil
}

func (ls *LSPServer) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	var result []protocol.SymbolInformation
	for _, loc := range ls.workspace.Search(params.Query) {
		info := protocol.SymbolInformation{
			Name:     loc.Symbol.Name,
			Kind:     toSymbolKind(loc.Symbol.Kind),
			Location: ls.toLocation(loc),
		}
		if loc.Container != "" {
			container := loc.Container
			info.ContainerName = &container
		}
		result = append(result, info)
	}
	return result, nil
}

func (ls *LSPServer) toLocation(loc Location) protocol.Location {
	var r protocol.Range
	if f := ls.workspace.GetFile(loc.Path); f != nil {
		lines := diag.NewLineIndex(loc.Path, f.Content)
		r = toRange(lines, loc.Symbol.Offset, tokenEnd(f.Content, loc.Symbol.Offset))
	}
	return protocol.Location{URI: pathToURI(loc.Path), Range: r}
}

func toRange(lines *diag.LineIndex, start, end int) protocol.Range {
	return protocol.Range{Start: toPosition(lines, start), End: toPosition(lines, end)}
}

func toPosition(lines *diag.LineIndex, offset int) protocol.Position {
	pos := lines.Position(offset)
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(pos.Column - 1),
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}

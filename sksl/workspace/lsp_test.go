package workspace

import (
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/goleak"

	"github.com/dhamidi/sksl/config"
)

type notification struct {
	method string
	params any
}

func newTestServer(t *testing.T, files map[string]string) (*LSPServer, *glsp.Context, *[]notification) {
	t.Helper()
	ls := NewLSPServer(newTestFs(t, files), config.Default(), "test")
	ls.pollInterval = 0
	var sent []notification
	ctx := &glsp.Context{Notify: func(method string, params any) {
		sent = append(sent, notification{method, params})
	}}
	root := "/proj"
	_, err := ls.initialize(ctx, &protocol.InitializeParams{RootPath: &root})
	require.NoError(t, err)
	require.NoError(t, ls.initialized(ctx, &protocol.InitializedParams{}))
	return ls, ctx, &sent
}

func lastDiagnostics(t *testing.T, sent []notification) protocol.PublishDiagnosticsParams {
	t.Helper()
	require.NotEmpty(t, sent)
	last := sent[len(sent)-1]
	require.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, last.method)
	params, ok := last.params.(protocol.PublishDiagnosticsParams)
	require.True(t, ok)
	return params
}

func TestInitializedPublishesBrokenFiles(t *testing.T) {
	_, _, sent := newTestServer(t, map[string]string{
		"/proj/good.sksl": "int a;",
		"/proj/bad.sksl":  "int b",
	})
	require.Len(t, *sent, 1)
	params := lastDiagnostics(t, *sent)
	assert.Equal(t, "file:///proj/bad.sksl", params.URI)
	require.Len(t, params.Diagnostics, 1)
	assert.Equal(t, "expected ';', but found end of file", params.Diagnostics[0].Message)
}

func TestDidOpenAndChange(t *testing.T) {
	ls, ctx, sent := newTestServer(t, nil)
	uri := "file:///proj/main.sksl"

	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "sksl", Version: 1, Text: "void main() {\n    int x = ;\n}\n"},
	}))
	params := lastDiagnostics(t, *sent)
	require.Len(t, params.Diagnostics, 1)
	d := params.Diagnostics[0]
	assert.Equal(t, protocol.Position{Line: 1, Character: 12}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 13}, d.Range.End)
	assert.Equal(t, "syntax-error", d.Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)

	require.NoError(t, ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "void main() {}\n"}},
	}))
	assert.Empty(t, lastDiagnostics(t, *sent).Diagnostics)
}

func TestDocumentSymbols(t *testing.T) {
	ls, ctx, _ := newTestServer(t, map[string]string{"/proj/light.sksl": lightSource})

	result, err := ls.textDocumentDocumentSymbol(ctx, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///proj/light.sksl"},
	})
	require.NoError(t, err)
	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	require.Len(t, symbols, 2)

	assert.Equal(t, "Light", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindStruct, symbols[0].Kind)
	require.Len(t, symbols[0].Children, 2)
	assert.Equal(t, protocol.SymbolKindField, symbols[0].Children[1].Kind)

	assert.Equal(t, "shade", symbols[1].Name)
	assert.Equal(t, protocol.SymbolKindFunction, symbols[1].Kind)
	require.NotNil(t, symbols[1].Detail)
	assert.Equal(t, "half4 (Light l)", *symbols[1].Detail)
	assert.Equal(t, protocol.UInteger(1), symbols[1].Range.Start.Line)
}

func TestDefinition(t *testing.T) {
	ls, ctx, _ := newTestServer(t, map[string]string{
		"/proj/light.sksl": lightSource,
		"/proj/main.sksl":  "half4 main(Light l) { return shade(l); }\n",
	})

	result, err := ls.textDocumentDefinition(ctx, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///proj/main.sksl"},
			Position:     protocol.Position{Line: 0, Character: 31},
		},
	})
	require.NoError(t, err)
	locations, ok := result.([]protocol.Location)
	require.True(t, ok)
	require.Len(t, locations, 1)
	assert.Equal(t, "file:///proj/light.sksl", locations[0].URI)
	assert.Equal(t, protocol.Position{Line: 1, Character: 6}, locations[0].Range.Start)
}

func TestWorkspaceSymbol(t *testing.T) {
	ls, ctx, _ := newTestServer(t, map[string]string{"/proj/light.sksl": lightSource})

	infos, err := ls.workspaceSymbol(ctx, &protocol.WorkspaceSymbolParams{Query: "pos"})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "position", infos[0].Name)
	require.NotNil(t, infos[0].ContainerName)
	assert.Equal(t, "Light", *infos[0].ContainerName)
}

func TestURIConversion(t *testing.T) {
	path, err := uriToPath("file:///proj/a%20b.sksl")
	require.NoError(t, err)
	assert.Equal(t, "/proj/a b.sksl", path)
	assert.Equal(t, "file:///proj/a%20b.sksl", pathToURI(path))
	assert.Equal(t, "rel.sksl", pathToURI("rel.sksl"))
}

// diagnosticsRecorder collects publishDiagnostics notifications, which the
// file watcher sends from its own goroutine.
type diagnosticsRecorder struct {
	mu     sync.Mutex
	latest map[string]protocol.PublishDiagnosticsParams
}

func (r *diagnosticsRecorder) notify(method string, params any) {
	if p, ok := params.(protocol.PublishDiagnosticsParams); ok {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.latest[p.URI] = p
	}
}

func (r *diagnosticsRecorder) get(uri string) (protocol.PublishDiagnosticsParams, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.latest[uri]
	return p, ok
}

func (r *diagnosticsRecorder) errorCount(uri string) int {
	p, ok := r.get(uri)
	if !ok {
		return -1
	}
	return len(p.Diagnostics)
}

func TestWatcherRepublishesDiskChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	fs := newTestFs(t, map[string]string{
		"/proj/a.sksl":    "int a;",
		"/proj/open.sksl": "int o;",
	})
	ls := NewLSPServer(fs, config.Default(), "test")
	ls.pollInterval = 5 * time.Millisecond
	rec := &diagnosticsRecorder{latest: map[string]protocol.PublishDiagnosticsParams{}}
	ctx := &glsp.Context{Notify: rec.notify}

	root := "/proj"
	_, err := ls.initialize(ctx, &protocol.InitializeParams{RootPath: &root})
	require.NoError(t, err)
	require.NoError(t, ls.initialized(ctx, &protocol.InitializedParams{}))
	defer ls.shutdown(ctx)

	const aURI, openURI = "file:///proj/a.sksl", "file:///proj/open.sksl"
	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: openURI, LanguageID: "sksl", Version: 1, Text: "int o"},
	}))
	assert.Equal(t, 1, rec.errorCount(openURI))

	// Disk writes to an open document do not replace the editor's text.
	require.NoError(t, afero.WriteFile(fs, "/proj/open.sksl", []byte("int o; int p;"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/a.sksl", []byte("int a"), 0o644))
	assert.Eventually(t, func() bool {
		return rec.errorCount(aURI) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "int o", string(ls.workspace.GetFile("/proj/open.sksl").Content))
	assert.Equal(t, 1, rec.errorCount(openURI))

	require.NoError(t, fs.Remove("/proj/a.sksl"))
	assert.Eventually(t, func() bool {
		return rec.errorCount(aURI) == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Nil(t, ls.workspace.GetFile("/proj/a.sksl"))

	require.NoError(t, ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: openURI},
	}))
	assert.Equal(t, "int o; int p;", string(ls.workspace.GetFile("/proj/open.sksl").Content))
	assert.Equal(t, 0, rec.errorCount(openURI))

	require.NoError(t, ls.shutdown(ctx))
	assert.Nil(t, ls.watcher)
}

package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
)

// JSONEncoder writes the outline of a file as JSON.
type JSONEncoder struct {
	w    io.Writer
	file *ast.File
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(file *ast.File) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := e.buildFileData()
	return json.MarshalIndent(data, "", "  ")
}

type jsonFile struct {
	Name         string       `json:"name"`
	Declarations []jsonSymbol `json:"declarations"`
}

type jsonSymbol struct {
	Kind       string          `json:"kind"`
	Name       string          `json:"name,omitempty"`
	Type       string          `json:"type,omitempty"`
	Modifiers  string          `json:"modifiers,omitempty"`
	Line       int             `json:"line"`
	Column     int             `json:"column"`
	Parameters []jsonParameter `json:"parameters,omitempty"`
	Members    []jsonSymbol    `json:"members,omitempty"`
}

type jsonParameter struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Modifiers string `json:"modifiers,omitempty"`
}

func (e *JSONEncoder) buildFileData() jsonFile {
	lines := diag.NewLineIndex(e.file.Name, e.file.Source)
	data := jsonFile{Name: e.file.Name, Declarations: []jsonSymbol{}}
	for _, s := range Outline(e.file) {
		data.Declarations = append(data.Declarations, e.buildSymbol(lines, s))
	}
	return data
}

func (e *JSONEncoder) buildSymbol(lines *diag.LineIndex, s Symbol) jsonSymbol {
	pos := lines.Position(s.Offset)
	js := jsonSymbol{
		Kind:      s.Kind,
		Name:      s.Name,
		Type:      s.Type,
		Modifiers: s.Modifiers,
		Line:      pos.Line,
		Column:    pos.Column,
	}
	for _, p := range s.Parameters {
		js.Parameters = append(js.Parameters, jsonParameter(p))
	}
	for _, child := range s.Children {
		js.Members = append(js.Members, e.buildSymbol(lines, child))
	}
	return js
}

package format

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dhamidi/sksl/sksl/ast"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Encoder interface {
	Encode(file *ast.File) error
}

var encoders = map[string]func(io.Writer) Encoder{
	"ast":  func(w io.Writer) Encoder { return NewASTJSONEncoder(w) },
	"tree": func(w io.Writer) Encoder { return NewTreeEncoder(w) },
	"json": func(w io.Writer) Encoder { return NewJSONEncoder(w) },
	"line": func(w io.Writer) Encoder { return NewLineEncoder(w) },
	"sksl": func(w io.Writer) Encoder { return NewSkSLPrinter(w) },
}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	newEncoder, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormat, name, Names())
	}
	return newEncoder(w), nil
}

func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

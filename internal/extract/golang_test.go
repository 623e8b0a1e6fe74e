package extract

import (
	"testing"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

const goSample = `package widgets

import "fmt"

import (
	"strings"
	"path/filepath"
)

type Widget struct {
	Name string
}

type Renderer interface {
	Render() string
}

type ID int

const MaxWidgets = 100

var registry = map[string]Widget{}

func NewWidget(name string) *Widget {
	return &Widget{Name: name}
}

func (w *Widget) Render() string {
	return fmt.Sprintf("<%s>", strings.ToUpper(w.Name))
}
`

func TestGoExtractor(t *testing.T) {
	symbols := mustExtract(t, NewGoExtractor(), "widgets.go", goSample)

	expectSymbol(t, symbols, "widgets", types.SymbolKindPackage, 1)
	expectSymbol(t, symbols, "fmt", types.SymbolKindImport, 3)
	expectSymbol(t, symbols, "strings", types.SymbolKindImport, 6)
	expectSymbol(t, symbols, "filepath", types.SymbolKindImport, 7)
	expectSymbol(t, symbols, "Widget", types.SymbolKindStruct, 10)
	expectSymbol(t, symbols, "Renderer", types.SymbolKindInterface, 14)
	expectSymbol(t, symbols, "ID", types.SymbolKindType, 18)
	expectSymbol(t, symbols, "MaxWidgets", types.SymbolKindConst, 20)
	expectSymbol(t, symbols, "registry", types.SymbolKindVariable, 22)
	expectSymbol(t, symbols, "NewWidget", types.SymbolKindFunction, 24)
	expectSymbol(t, symbols, "Render", types.SymbolKindMethod, 28)
}

func TestGoExtractor_MethodVsFunction(t *testing.T) {
	symbols := mustExtract(t, NewGoExtractor(), "m.go", "func (s *Store) Get(k string) {}\nfunc Get2() {}\n")

	expectSymbol(t, symbols, "Get", types.SymbolKindMethod, 1)
	expectSymbol(t, symbols, "Get2", types.SymbolKindFunction, 2)
}

package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	cerrors "github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/errors"
	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

// PythonExtractor parses Python files into a real syntax tree and walks it
// collecting function/class/method definitions, imports, and docstrings.
// Python is the only tree-parsed language; everything else uses line rules.
type PythonExtractor struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewPythonExtractor creates the tree-sitter backed Python extractor.
func NewPythonExtractor() *PythonExtractor {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(language); err != nil {
		// The bundled grammar always matches the binding version; a failure
		// here means a broken build, so surface it at first use instead.
		parser = nil
	}

	return &PythonExtractor{parser: parser}
}

func (e *PythonExtractor) Language() string     { return "python" }
func (e *PythonExtractor) Extensions() []string { return []string{".py", ".pyw"} }

// Extract parses content and collects symbols. A file that fails to parse is
// a local failure: the returned error is logged by the caller and the file
// skipped, never propagated as fatal.
func (e *PythonExtractor) Extract(path string, content []byte) ([]types.Symbol, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.parser == nil {
		return nil, cerrors.NewExtractError(path, "python", fmt.Errorf("parser unavailable"))
	}

	// Tree-sitter mutates input buffers via CGO; parse a copy.
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := e.parser.Parse(buf, nil)
	if tree == nil {
		return nil, cerrors.NewExtractError(path, "python", fmt.Errorf("parse returned no tree"))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, cerrors.NewExtractError(path, "python", fmt.Errorf("syntax error"))
	}

	lines := strings.Split(string(buf), "\n")
	w := &pythonWalker{path: path, content: buf, lines: lines}

	// Module docstring attaches to a package-kind symbol named after the
	// file stem.
	if doc := docstringOf(root, buf); doc != "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		w.symbols = append(w.symbols, types.Symbol{
			Name:           stem,
			Kind:           types.SymbolKindPackage,
			FilePath:       path,
			LineNumber:     1,
			DefinitionText: w.lineText(0),
			Docstring:      doc,
		})
	}

	w.walk(root, false)
	return w.symbols, nil
}

type pythonWalker struct {
	path    string
	content []byte
	lines   []string
	symbols []types.Symbol
}

func (w *pythonWalker) walk(node *tree_sitter.Node, inClass bool) {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "function_definition":
			kind := types.SymbolKindFunction
			if inClass {
				kind = types.SymbolKindMethod
			}
			w.addDefinition(child, kind)
			if body := child.ChildByFieldName("body"); body != nil {
				// Functions nested in a method body are plain functions.
				w.walk(body, false)
			}

		case "class_definition":
			w.addDefinition(child, types.SymbolKindClass)
			if body := child.ChildByFieldName("body"); body != nil {
				w.walk(body, true)
			}

		case "import_statement":
			w.addImports(child)

		case "import_from_statement":
			w.addFromImports(child)

		default:
			w.walk(child, inClass)
		}
	}
}

// addDefinition records a function/method/class definition with its docstring.
func (w *pythonWalker) addDefinition(node *tree_sitter.Node, kind types.SymbolKind) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	row := int(node.StartPosition().Row)
	sym := types.Symbol{
		Name:           w.text(nameNode),
		Kind:           kind,
		FilePath:       w.path,
		LineNumber:     row + 1,
		DefinitionText: w.lineText(row),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		sym.Docstring = docstringOf(body, w.content)
	}

	w.symbols = append(w.symbols, sym)
}

// addImports handles `import a.b, c as d`: one symbol per imported name.
func (w *pythonWalker) addImports(node *tree_sitter.Node) {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			w.addImportSymbol(lastDottedComponent(w.text(child)), child)
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				w.addImportSymbol(w.text(alias), child)
			}
		}
	}
}

// addFromImports handles `from m import x, y as z`: the first dotted_name is
// the module, subsequent names are the imported bindings.
func (w *pythonWalker) addFromImports(node *tree_sitter.Node) {
	moduleNode := node.ChildByFieldName("module_name")
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			w.addImportSymbol(lastDottedComponent(w.text(child)), child)
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				w.addImportSymbol(w.text(alias), child)
			}
		}
	}
}

func (w *pythonWalker) addImportSymbol(name string, node *tree_sitter.Node) {
	if name == "" {
		return
	}
	row := int(node.StartPosition().Row)
	w.symbols = append(w.symbols, types.Symbol{
		Name:           name,
		Kind:           types.SymbolKindImport,
		FilePath:       w.path,
		LineNumber:     row + 1,
		DefinitionText: w.lineText(row),
	})
}

func (w *pythonWalker) text(node *tree_sitter.Node) string {
	return string(w.content[node.StartByte():node.EndByte()])
}

func (w *pythonWalker) lineText(row int) string {
	if row < 0 || row >= len(w.lines) {
		return ""
	}
	return strings.TrimSpace(w.lines[row])
}

// docstringOf returns the docstring of a block or module node: the string
// literal of its first expression statement, with quotes stripped.
func docstringOf(body *tree_sitter.Node, content []byte) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return ""
	}
	raw := string(content[str.StartByte():str.EndByte()])
	return stripStringQuotes(raw)
}

// stripStringQuotes removes Python string prefixes and quote delimiters.
func stripStringQuotes(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}

func lastDottedComponent(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

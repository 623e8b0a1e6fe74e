package types

import "time"

// Default resource limits shared by config and the indexing pipeline.
const (
	DefaultMaxFileSize      = 10 * 1024 * 1024 // 10MB
	DefaultMaxFileCount     = 10000
	DefaultWatchDebounceMs  = 500
	DefaultRecentChangesCap = 1000
	DefaultContextLines     = 2
	DefaultMaxResults       = 100

	// SymbolMemoryEstimate is the fixed per-entry byte estimate used for the
	// approximate memory_usage statistic.
	SymbolMemoryEstimate = 200
)

// SymbolKind identifies what sort of definition site a symbol is.
type SymbolKind string

const (
	SymbolKindFunction  SymbolKind = "function"
	SymbolKindClass     SymbolKind = "class"
	SymbolKindVariable  SymbolKind = "variable"
	SymbolKindImport    SymbolKind = "import"
	SymbolKindInterface SymbolKind = "interface"
	SymbolKindType      SymbolKind = "type"
	SymbolKindEnum      SymbolKind = "enum"
	SymbolKindStruct    SymbolKind = "struct"
	SymbolKindMethod    SymbolKind = "method"
	SymbolKindConst     SymbolKind = "const"
	SymbolKindPackage   SymbolKind = "package"
)

// Symbol is a named definition site discovered during indexing.
// Names are not unique: overloads and same-named symbols in different files
// each get their own Symbol. All symbols for a file are replaced together
// whenever that file is re-indexed.
type Symbol struct {
	Name           string     `json:"name"`
	Kind           SymbolKind `json:"kind"`
	FilePath       string     `json:"file_path"`
	LineNumber     int        `json:"line_number"`
	DefinitionText string     `json:"definition_text"`
	Docstring      string     `json:"docstring,omitempty"`
}

// RefType classifies how a symbol name is used at a reference site.
type RefType string

const (
	RefTypeCall           RefType = "call"
	RefTypeImport         RefType = "import"
	RefTypeAssignment     RefType = "assignment"
	RefTypeTypeAnnotation RefType = "type_annotation"
	RefTypeMethodCall     RefType = "method_call"
	RefTypeReference      RefType = "reference"
)

// Reference is an occurrence of a symbol name in code that is not
// necessarily its definition. References are computed on demand by scanning
// files, not maintained incrementally.
type Reference struct {
	SymbolName string  `json:"symbol_name"`
	FilePath   string  `json:"file_path"`
	LineNumber int     `json:"line_number"`
	Context    string  `json:"context"`
	RefType    RefType `json:"ref_type"`
}

// ChangeType classifies an observed file-system event.
type ChangeType string

const (
	ChangeTypeModified ChangeType = "modified"
	ChangeTypeAdded    ChangeType = "added"
	ChangeTypeDeleted  ChangeType = "deleted"
)

// FileChange is an observed file-system event, recorded in the bounded
// recent-changes log and consumed once by the debounced pipeline.
type FileChange struct {
	FilePath   string     `json:"file_path"`
	ChangeType ChangeType `json:"change_type"`
	Timestamp  time.Time  `json:"timestamp"`
	FileSize   int64      `json:"file_size,omitempty"`
	FileHash   uint64     `json:"file_hash,omitempty"`
}

// IndexStats is the read-only statistics snapshot exposed by
// get_index_statistics.
type IndexStats struct {
	FilesIndexed       int            `json:"files_indexed"`
	SymbolsFound       int            `json:"symbols_found"`
	IndexedFilesCount  int            `json:"indexed_files_count"`
	FileTypeBreakdown  map[string]int `json:"file_type_breakdown"`
	IsWatching         bool           `json:"is_watching"`
	WatchedDirectories int            `json:"watched_directories"`
	IndexingErrors     int64          `json:"indexing_errors"`
	LastUpdate         time.Time      `json:"last_update"`
	MemoryUsage        int64          `json:"memory_usage"`
}

// WatchDirectory is one configured watch root. Only enabled entries are
// subscribed when monitoring starts.
type WatchDirectory struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

package extract

import (
	"testing"

	"github.com/thefoundary7-star/cursor-context-mcp-sub000/internal/types"
)

const jsSample = `import { helper } from './helper';
import 'polyfill';

export function processData(input) {
  return helper(input);
}

const transform = async (data) => data.trim();

export class Pipeline {
  constructor(steps) {
    this.steps = steps;
  }

  async run(input) {
    for (const step of this.steps) {
      input = step(input);
    }
    return input;
  }
}

let counter = 0;
var legacy = true;
`

func TestJavaScriptExtractor(t *testing.T) {
	symbols := mustExtract(t, NewJavaScriptExtractor(), "app.js", jsSample)

	expectSymbol(t, symbols, "./helper", types.SymbolKindImport, 1)
	expectSymbol(t, symbols, "polyfill", types.SymbolKindImport, 2)
	expectSymbol(t, symbols, "processData", types.SymbolKindFunction, 4)
	expectSymbol(t, symbols, "transform", types.SymbolKindFunction, 8)
	expectSymbol(t, symbols, "Pipeline", types.SymbolKindClass, 10)
	expectSymbol(t, symbols, "constructor", types.SymbolKindMethod, 11)
	expectSymbol(t, symbols, "run", types.SymbolKindMethod, 15)
	expectSymbol(t, symbols, "counter", types.SymbolKindVariable, 23)
	expectSymbol(t, symbols, "legacy", types.SymbolKindVariable, 24)
}

func TestJavaScriptExtractor_ControlFlowNotMethods(t *testing.T) {
	content := "class A {\n  go() {\n    if (x) {\n      for (let i = 0; i < 2; i++) {\n      }\n    }\n  }\n}\n"
	symbols := mustExtract(t, NewJavaScriptExtractor(), "b.js", content)

	if _, ok := findSymbol(symbols, "if"); ok {
		t.Error("if must not be extracted as a method")
	}
	if _, ok := findSymbol(symbols, "for"); ok {
		t.Error("for must not be extracted as a method")
	}
	expectSymbol(t, symbols, "go", types.SymbolKindMethod, 2)
}

const tsSample = `import { Config } from './config';

export interface Options {
  retries: number;
}

export type Handler = (msg: string) => void;

export enum Level {
  Info,
  Warn,
}

export class Cache<T> {
  private items: Map<string, T> = new Map();

  get(key: string): T | undefined {
    return this.items.get(key);
  }
}
`

func TestTypeScriptExtractor(t *testing.T) {
	symbols := mustExtract(t, NewTypeScriptExtractor(), "cache.ts", tsSample)

	expectSymbol(t, symbols, "./config", types.SymbolKindImport, 1)
	expectSymbol(t, symbols, "Options", types.SymbolKindInterface, 3)
	expectSymbol(t, symbols, "Handler", types.SymbolKindType, 7)
	expectSymbol(t, symbols, "Level", types.SymbolKindEnum, 9)
	expectSymbol(t, symbols, "Cache", types.SymbolKindClass, 14)
	expectSymbol(t, symbols, "get", types.SymbolKindMethod, 17)
}

func TestTypeScriptExtractor_ConstEnum(t *testing.T) {
	symbols := mustExtract(t, NewTypeScriptExtractor(), "e.ts", "export const enum Color {\n  Red,\n}\n")

	expectSymbol(t, symbols, "Color", types.SymbolKindEnum, 1)
	if _, ok := findSymbol(symbols, "enum"); ok {
		t.Error("const enum must not yield a symbol named enum")
	}
}

func TestTypeScriptExtractor_GenericClassSingleSymbol(t *testing.T) {
	symbols := mustExtract(t, NewTypeScriptExtractor(), "g.ts", "class Box<T> {}\n")

	count := 0
	for _, s := range symbols {
		if s.Name == "Box" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected class Box<T> to yield exactly one symbol, got %d", count)
	}
}

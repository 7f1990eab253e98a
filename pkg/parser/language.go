// Package parser wraps tree-sitter parsing for the JS/TS language family
// with per-language parser pools for concurrent use.
package parser

import (
	"path/filepath"
	"strings"
)

// Language identifies a supported grammar.
type Language int

const (
	// LanguageTypeScript covers .ts, .mts, .cts and (via TSX) .tsx files.
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js, .jsx, .mjs, .cjs files.
	LanguageJavaScript
	// LanguageUnknown marks unsupported file extensions.
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the language from a file path extension.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether the path is a TSX file. TSX uses the
// TypeScript grammar with JSX support enabled.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// SupportedLanguages lists the grammars this package can parse.
func SupportedLanguages() []Language {
	return []Language{LanguageTypeScript, LanguageJavaScript}
}

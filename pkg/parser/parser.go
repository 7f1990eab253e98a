package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/proplint/pkg/util"
)

// poolKey uniquely identifies a grammar pool (language + TSX variant).
type poolKey struct {
	lang  Language
	isTSX bool
}

// Manager owns per-grammar parser pools with lazy initialization.
//
// Callers own returned Tree instances and must call tree.Close().
// The Manager itself must be closed via Close() when done.
//
// Safe for concurrent use; multiple goroutines can parse the same
// language simultaneously, bounded by the pool size.
type Manager struct {
	pools  map[poolKey]*grammarPool
	mu     sync.RWMutex
	logger *slog.Logger

	parsesCalled int
}

// NewManager creates a parser manager. A nil logger falls back to
// slog.Default().
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pools:  make(map[poolKey]*grammarPool),
		logger: logger,
	}
}

// Parse parses source with the given grammar. isTSX only matters for
// TypeScript, where it enables JSX support.
//
// The returned tree must be closed by the caller. A tree containing
// syntax errors is still returned; partial trees are useful to the
// linter, which degrades permissively on malformed subtrees.
func (m *Manager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	m.mu.Lock()
	m.parsesCalled++
	m.mu.Unlock()

	pool, err := m.getOrCreatePool(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}

	if tree.RootNode().HasError() {
		m.logger.Debug("parse tree contains errors", "language", lang.String())
	}

	return tree, nil
}

// ParseFile parses source detecting the grammar from the file path.
func (m *Manager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return m.Parse(source, lang, IsTSXFile(filePath))
}

// Close releases all pooled parsers. The manager is unusable afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pool := range m.pools {
		if pool != nil {
			pool.close()
		}
	}
	m.pools = make(map[poolKey]*grammarPool)
	return nil
}

// Stats reports parser usage.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, pool := range m.pools {
		total += pool.createdCount()
	}
	return Stats{ParsersCreated: total, ParsesCalled: m.parsesCalled}
}

// Stats contains parser usage counters.
type Stats struct {
	ParsersCreated int
	ParsesCalled   int
}

// getOrCreatePool returns the pool for a grammar, creating it on first
// use. Double-checked under the write lock.
func (m *Manager) getOrCreatePool(lang Language, isTSX bool) (*grammarPool, error) {
	key := poolKey{lang: lang, isTSX: isTSX}

	m.mu.RLock()
	pool, exists := m.pools[key]
	m.mu.RUnlock()
	if exists {
		return pool, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if pool, exists = m.pools[key]; exists {
		return pool, nil
	}

	langPtr, err := languagePointer(lang, isTSX)
	if err != nil {
		return nil, err
	}

	pool = newGrammarPool(lang, langPtr, isTSX, util.PoolSize(), m.logger)
	m.pools[key] = pool
	return pool, nil
}

// languagePointer returns the tree-sitter grammar pointer.
func languagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

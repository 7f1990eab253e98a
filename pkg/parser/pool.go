package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// grammarPool holds reusable tree-sitter parsers for one grammar.
// Parsers are created lazily up to maxSize; acquire blocks once the pool
// is exhausted until a parser is released.
type grammarPool struct {
	pool    chan *ts.Parser
	langPtr unsafe.Pointer
	lang    Language
	isTSX   bool
	maxSize int

	mu      sync.Mutex
	created int

	logger *slog.Logger
}

func newGrammarPool(lang Language, langPtr unsafe.Pointer, isTSX bool, maxSize int, logger *slog.Logger) *grammarPool {
	return &grammarPool{
		pool:    make(chan *ts.Parser, maxSize),
		langPtr: langPtr,
		lang:    lang,
		isTSX:   isTSX,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *grammarPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
	}

	p.mu.Lock()
	if p.created < p.maxSize {
		parser := ts.NewParser()
		if parser == nil {
			p.mu.Unlock()
			return nil, fmt.Errorf("failed to create parser")
		}
		if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
			parser.Close()
			p.mu.Unlock()
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
		p.created++
		p.logger.Debug("created pooled parser",
			"language", p.lang.String(),
			"isTSX", p.isTSX,
			"created", p.created)
		p.mu.Unlock()
		return parser, nil
	}
	p.mu.Unlock()

	// All parsers in use; wait for one.
	return <-p.pool, nil
}

func (p *grammarPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	select {
	case p.pool <- parser:
	default:
		// Pool full; only possible on release without matching acquire.
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser",
			"language", p.lang.String())
	}
}

func (p *grammarPool) close() {
	close(p.pool)
	for parser := range p.pool {
		if parser != nil {
			parser.Close()
		}
	}
}

func (p *grammarPool) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

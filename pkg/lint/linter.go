package lint

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
	"github.com/gnana997/proplint/pkg/parser"
	"github.com/gnana997/proplint/pkg/scope"
)

// Diagnostic is one reported prop-validation finding.
type Diagnostic struct {
	File    string `json:"file"`
	Line    uint   `json:"line"`
	Column  uint   `json:"column"`
	Prop    string `json:"prop"`
	Message string `json:"message"`
}

// ComponentInfo describes one detected component, for listings.
type ComponentInfo struct {
	File          string   `json:"file"`
	Line          uint     `json:"line"`
	Column        uint     `json:"column"`
	Kind          string   `json:"kind"` // class, legacy, factory, function
	Pure          bool     `json:"pure,omitempty"`
	Name          string   `json:"name,omitempty"`
	DeclaredProps []string `json:"declaredProps,omitempty"`
	PropsIgnored  bool     `json:"propsIgnored,omitempty"`
}

// Result is the outcome of linting one file.
type Result struct {
	File        string          `json:"file"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
	Components  []ComponentInfo `json:"components"`
	ParseErrors bool            `json:"parseErrors,omitempty"`
}

// Linter runs the component detector and prop validator over source
// files. Safe for concurrent use; parsing goes through a pooled manager.
type Linter struct {
	cfg     Config
	parsers *parser.Manager
	logger  *slog.Logger
}

// New creates a linter. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Linter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linter{
		cfg:     cfg,
		parsers: parser.NewManager(logger),
		logger:  logger,
	}
}

// Close releases the parser pools.
func (l *Linter) Close() error {
	return l.parsers.Close()
}

// LintSource lints one in-memory source buffer. filePath is used for
// grammar detection and reporting only; it need not exist on disk.
func (l *Linter) LintSource(source []byte, filePath string) (*Result, error) {
	lang := parser.DetectLanguage(filePath)
	if lang == parser.LanguageUnknown {
		return nil, fmt.Errorf("unsupported file type: %s", filePath)
	}

	tree, err := l.parsers.Parse(source, lang, parser.IsTSXFile(filePath))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	ru := newRun(l.cfg, filePath, source, scope.NewResolver(root, source), l.logger)
	astwalk.Walk(root, ru)

	diags := ru.diags
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		if diags[i].Column != diags[j].Column {
			return diags[i].Column < diags[j].Column
		}
		return diags[i].Prop < diags[j].Prop
	})

	l.logger.Debug("linted file",
		"file", filePath,
		"components", ru.registry.Len(),
		"diagnostics", len(diags))

	return &Result{
		File:        filePath,
		Diagnostics: diags,
		Components:  ru.componentInfos(),
		ParseErrors: root.HasError(),
	}, nil
}

// LintFile reads and lints one file from disk.
func (l *Linter) LintFile(path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return l.LintSource(source, path)
}

// componentInfos summarizes the confirmed components of a finished run.
func (ru *run) componentInfos() []ComponentInfo {
	var infos []ComponentInfo
	for _, c := range ru.registry.List() {
		pos := c.Node.StartPosition()
		info := ComponentInfo{
			File:         ru.file,
			Line:         uint(pos.Row) + 1,
			Column:       uint(pos.Column) + 1,
			Kind:         ru.componentKind(c.Node),
			Pure:         ru.isPureVariant(c.Node),
			Name:         ru.componentName(c.Node),
			PropsIgnored: c.IgnorePropsValidation,
		}
		for name := range c.DeclaredTypes {
			if name != anyKey {
				info.DeclaredProps = append(info.DeclaredProps, name)
			}
		}
		sort.Strings(info.DeclaredProps)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Line != infos[j].Line {
			return infos[i].Line < infos[j].Line
		}
		return infos[i].Column < infos[j].Column
	})
	return infos
}

func (ru *run) componentKind(node *ts.Node) string {
	switch node.Kind() {
	case "class_declaration", "class":
		return "class"
	case "object":
		if ru.isFactoryComponent(node) {
			return "factory"
		}
		return "legacy"
	default:
		return "function"
	}
}

// componentName finds a printable name: the class or function name, or
// the variable the component expression is assigned to.
func (ru *run) componentName(node *ts.Node) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return astwalk.Text(name, ru.source)
	}
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "variable_declarator":
			if name := p.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				return astwalk.Text(name, ru.source)
			}
			return ""
		case "assignment_expression":
			if left := p.ChildByFieldName("left"); left != nil {
				return astwalk.Text(left, ru.source)
			}
			return ""
		case "pair", "statement_block", "program":
			return ""
		}
	}
	return ""
}

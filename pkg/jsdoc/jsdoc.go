// Package jsdoc parses documentation comments into structured tags.
// The linter consumes two signals: @extends/@augments tags naming a base
// component type, and pragma-override comments redeclaring the namespace
// identifier treated as the base library for the rest of the file.
package jsdoc

import "strings"

// Tag is a single documentation tag: "@extends React.Component" becomes
// {Name: "extends", Value: "React.Component"}.
type Tag struct {
	Name  string
	Value string
}

// Parse extracts the tags from a raw block comment. Non-tag description
// lines are ignored. Returns nil for comments without tags.
func Parse(raw string) []Tag {
	var tags []Tag
	for _, line := range commentLines(raw) {
		if !strings.HasPrefix(line, "@") {
			continue
		}
		name, value, _ := strings.Cut(line[1:], " ")
		if name == "" {
			continue
		}
		tags = append(tags, Tag{Name: name, Value: strings.TrimSpace(value)})
	}
	return tags
}

// Description returns the free-text portion of a comment, tags stripped.
func Description(raw string) string {
	var parts []string
	for _, line := range commentLines(raw) {
		if strings.HasPrefix(line, "@") || line == "" {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// ExtendedTypes returns the values of all @extends and @augments tags.
// Generic suffixes are stripped: "@extends Component<Props>" yields
// "Component".
func ExtendedTypes(raw string) []string {
	var types []string
	for _, tag := range Parse(raw) {
		if tag.Name != "extends" && tag.Name != "augments" {
			continue
		}
		v, _, _ := strings.Cut(tag.Value, " ")
		// JSDoc type braces: @augments {Component}
		v = strings.Trim(v, "{}")
		if i := strings.IndexByte(v, '<'); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			types = append(types, v)
		}
	}
	return types
}

// Pragma returns the base-library namespace identifier declared by the
// comment, or "" when the comment declares none. Both explicit
// "@pragma Foo" and JSX factory pragmas ("@jsx Foo.createElement") are
// recognized; for the latter the leading namespace segment is returned.
func Pragma(raw string) string {
	for _, tag := range Parse(raw) {
		switch tag.Name {
		case "pragma":
			if id := firstIdentifier(tag.Value); id != "" {
				return id
			}
		case "jsx":
			id := firstIdentifier(tag.Value)
			// "Foo.createElement" pins the namespace to Foo.
			id, _, _ = strings.Cut(id, ".")
			if id != "" {
				return id
			}
		}
	}
	return ""
}

// commentLines splits a comment into trimmed lines with comment
// punctuation removed. Handles block, JSDoc, and line comments.
func commentLines(raw string) []string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "/**"):
		raw = strings.TrimPrefix(raw, "/**")
		raw = strings.TrimSuffix(raw, "*/")
	case strings.HasPrefix(raw, "/*"):
		raw = strings.TrimPrefix(raw, "/*")
		raw = strings.TrimSuffix(raw, "*/")
	case strings.HasPrefix(raw, "//"):
		raw = strings.TrimPrefix(raw, "//")
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

// firstIdentifier returns the leading identifier-like token of s.
func firstIdentifier(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '$' || r == '.' {
			continue
		}
		return s[:i]
	}
	return s
}

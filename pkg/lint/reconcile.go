package lint

import (
	"fmt"
	"strings"
)

// reconcile checks every confirmed component's used prop paths against
// its declared shapes and emits a diagnostic per uncovered use.
func (ru *run) reconcile() {
	for _, c := range ru.registry.List() {
		if c.IgnorePropsValidation || len(c.UsedProps) == 0 {
			continue
		}
		if c.DeclaredTypes == nil && ru.cfg.SkipUndeclared {
			continue
		}
		for _, up := range c.UsedProps {
			if up.declarationSite {
				continue
			}
			if isSentinel(up.Name) || ru.cfg.ignored(up.Name) {
				continue
			}
			if ru.roleCovered(c, up) || ru.shapeCovered(c, up) {
				continue
			}
			ru.report(up)
		}
	}
}

// roleCovered applies the sub-block cross-reference rule: handlers may
// read props the computed block derives. Neither block covers its own
// props, and computed functions may not reach into the handlers set.
func (ru *run) roleCovered(c *Component, up UsedProp) bool {
	return up.Role == RoleHandlers && c.ComputedProps[up.Name]
}

// shapeCovered checks the component's own declarations and, for nested
// components, every enclosing confirmed component's declarations.
func (ru *run) shapeCovered(c *Component, up UsedProp) bool {
	if declarationCovers(c, up) {
		return true
	}
	for _, anc := range ru.registry.EnclosingConfirmed(c.Node) {
		if declarationCovers(anc, up) {
			return true
		}
	}
	return false
}

func declarationCovers(c *Component, up UsedProp) bool {
	if c.DeclaredTypes == nil {
		return false
	}
	if s, ok := c.DeclaredTypes[up.Name]; ok {
		return s.covers(up.Path[1:])
	}
	if s, ok := c.DeclaredTypes[anyKey]; ok {
		return s.covers(up.Path[1:])
	}
	return false
}

func (ru *run) report(up UsedProp) {
	pos := up.Site.StartPosition()
	rendered := renderPath(up.Path)
	ru.diags = append(ru.diags, Diagnostic{
		File:    ru.file,
		Line:    uint(pos.Row) + 1,
		Column:  uint(pos.Column) + 1,
		Prop:    rendered,
		Message: fmt.Sprintf("'%s' is missing in props validation", rendered),
	})
}

// renderPath prints a usage path for reporting. Sentinel segments render
// as an index marker appended to the preceding segment: a[].b.
func renderPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if isSentinel(seg) {
			b.WriteString("[]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

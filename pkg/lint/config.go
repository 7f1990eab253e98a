// Package lint implements the component detector and prop-usage
// validator: a single-pass classifier that assigns component candidates
// a confidence level, and a reconciliation engine that checks every used
// prop path against the component's declared prop shapes.
package lint

// Config is the already-parsed rule configuration.
type Config struct {
	// Ignore lists prop names that are never reported.
	Ignore []string
	// CustomValidators lists namespaces whose validator calls are
	// trusted without structural analysis.
	CustomValidators []string
	// SkipUndeclared exempts components that declare no propTypes at all.
	SkipUndeclared bool
	// KindFactoryPattern matches factory callee identifiers whose sole
	// object argument defines a kind component. Anchored exact match.
	KindFactoryPattern string
	// HOCFactoryPattern matches higher-order factory callees. Components
	// wrapped by these are deliberately not classified.
	HOCFactoryPattern string
	// CreateClassPattern matches legacy create-class callees, optionally
	// namespaced under the pragma.
	CreateClassPattern string
	// Pragma is the base-library namespace identifier. A doc comment may
	// override it for the remainder of a file walk.
	Pragma string
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		KindFactoryPattern: "createKind",
		HOCFactoryPattern:  "withKind",
		CreateClassPattern: "createReactClass",
		Pragma:             "React",
	}
}

// ignored reports whether a prop name is on the ignore list.
func (c Config) ignored(name string) bool {
	for _, ig := range c.Ignore {
		if ig == name {
			return true
		}
	}
	return false
}

// isCustomValidatorNamespace reports whether a callee namespace is a
// configured custom-validator namespace.
func (c Config) isCustomValidatorNamespace(name string) bool {
	for _, v := range c.CustomValidators {
		if v == name {
			return true
		}
	}
	return false
}

package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/proplint/pkg/lint"
	"github.com/gnana997/proplint/pkg/workspace"
)

// ProjectConfig holds the contents of .proplint.yaml in the lint root.
type ProjectConfig struct {
	// Ignore lists prop names never reported.
	Ignore []string `yaml:"ignore"`
	// CustomValidators lists trusted validator namespaces.
	CustomValidators []string `yaml:"custom_validators"`
	// SkipUndeclared exempts components with no prop declarations.
	SkipUndeclared bool `yaml:"skip_undeclared"`
	// Detection pattern overrides; empty fields keep the defaults.
	KindFactoryPattern string `yaml:"kind_factory_pattern"`
	HOCFactoryPattern  string `yaml:"hoc_factory_pattern"`
	CreateClassPattern string `yaml:"create_class_pattern"`
	Pragma             string `yaml:"pragma"`
	// Discovery pattern overrides.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// loadProjectConfig reads path, or .proplint.yaml when path is empty.
// A missing file is not an error; linting proceeds on defaults.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	if path == "" {
		path = ".proplint.yaml"
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// lintConfig folds the project file into the stock rule configuration.
func (pc *ProjectConfig) lintConfig() lint.Config {
	cfg := lint.DefaultConfig()
	if pc == nil {
		return cfg
	}
	cfg.Ignore = pc.Ignore
	cfg.CustomValidators = pc.CustomValidators
	cfg.SkipUndeclared = pc.SkipUndeclared
	if pc.KindFactoryPattern != "" {
		cfg.KindFactoryPattern = pc.KindFactoryPattern
	}
	if pc.HOCFactoryPattern != "" {
		cfg.HOCFactoryPattern = pc.HOCFactoryPattern
	}
	if pc.CreateClassPattern != "" {
		cfg.CreateClassPattern = pc.CreateClassPattern
	}
	if pc.Pragma != "" {
		cfg.Pragma = pc.Pragma
	}
	return cfg
}

// scanOptions folds discovery overrides into the defaults.
func (pc *ProjectConfig) scanOptions() workspace.ScanOptions {
	opts := workspace.DefaultScanOptions()
	if pc == nil {
		return opts
	}
	if len(pc.Include) > 0 {
		opts.Include = pc.Include
	}
	if len(pc.Exclude) > 0 {
		opts.Exclude = pc.Exclude
	}
	return opts
}

/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package config parses the YAML configuration surface spec.md §6
// recognizes: include/exclude patterns, severity/category filters, cache
// settings, concurrency, per-analyzer overrides, and the architecture
// layer description.
package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/fs"
	"driftscan.dev/driftscan/issue"
)

// AnalyzerConfig is one entry in the "analyzers" mapping: per-analyzer
// enable/disable, severity override, and rule-specific options.
type AnalyzerConfig struct {
	Enabled  *bool          `yaml:"enabled,omitempty"`
	Severity string         `yaml:"severity,omitempty"`
	Options  map[string]any `yaml:"options,omitempty"`
}

// Config is the full recognized configuration document, parsed from YAML.
// Zero value is a usable, fully-permissive default configuration.
type Config struct {
	Include         []string                  `yaml:"include"`
	Exclude         []string                  `yaml:"exclude"`
	MinSeverity     string                    `yaml:"minSeverity"`
	Categories      []string                  `yaml:"categories"`
	Cache           *bool                     `yaml:"cache"`
	CacheDir        string                    `yaml:"cacheDir"`
	MaxCacheAge     int64                     `yaml:"maxCacheAge"` // milliseconds
	HashAlgorithm   string                    `yaml:"hashAlgorithm"`
	PackagePatterns []string                  `yaml:"packagePatterns"`
	Concurrency     int                       `yaml:"concurrency"`
	Analyzers       map[string]AnalyzerConfig `yaml:"analyzers"`
	Architecture    map[string]any            `yaml:"architecture"`
}

// Defaults returns a Config with every field set to the value the
// orchestrator uses when no configuration document was supplied.
func Defaults() Config {
	return Config{
		PackagePatterns: []string{"packages/*"},
		Concurrency:     4,
		CacheDir:        ".driftscan-cache",
		MaxCacheAge:     int64(7 * 24 * time.Hour / time.Millisecond),
		HashAlgorithm:   "sha256",
	}
}

// Load reads and parses a YAML configuration file, filling unset fields
// from Defaults.
func Load(fsys fs.FileSystem, path string) (*Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills any field left at its zero value by a partial YAML
// document with the corresponding Defaults() value.
func (c *Config) applyDefaults() {
	d := Defaults()
	if len(c.PackagePatterns) == 0 {
		c.PackagePatterns = d.PackagePatterns
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}
	if c.MaxCacheAge <= 0 {
		c.MaxCacheAge = d.MaxCacheAge
	}
	if c.HashAlgorithm == "" {
		c.HashAlgorithm = d.HashAlgorithm
	}
}

// CacheEnabled reports whether caching is on. Caching defaults to enabled
// when the "cache" key is absent from the document.
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// MaxCacheAgeDuration converts MaxCacheAge (milliseconds) to a
// time.Duration.
func (c *Config) MaxCacheAgeDuration() time.Duration {
	return time.Duration(c.MaxCacheAge) * time.Millisecond
}

// FilterOptions builds the issue.FilterOptions this configuration implies.
func (c *Config) FilterOptions() issue.FilterOptions {
	opts := issue.FilterOptions{MinSeverity: issue.ParseSeverity(c.MinSeverity)}
	for _, cat := range c.Categories {
		opts.Categories = append(opts.Categories, issue.Category(cat))
	}
	return opts
}

// AnalyzerOverrides converts the "analyzers" mapping into the
// analyzer.Override map the Registry's Enabled/EffectiveSeverity/
// EffectiveOptions helpers consume.
func (c *Config) AnalyzerOverrides() map[string]analyzer.Override {
	if len(c.Analyzers) == 0 {
		return nil
	}
	out := make(map[string]analyzer.Override, len(c.Analyzers))
	for id, ac := range c.Analyzers {
		ov := analyzer.Override{Enabled: ac.Enabled, Options: ac.Options}
		if ac.Severity != "" {
			sev := issue.ParseSeverity(ac.Severity)
			ov.Severity = &sev
		}
		out[id] = ov
	}
	return out
}

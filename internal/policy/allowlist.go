package policy

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cid/internal/paths"
)

// defaultAllowPatterns always pass through: tests, build manifests, and
// directories the system itself writes. A pattern ending in "/" matches
// any path containing that directory segment; otherwise it globs against
// the base name.
var defaultAllowPatterns = []string{
	"*_test.go",
	"test_*.py",
	"*_test.py",
	"conftest.py",
	"*.spec.ts",
	"*.spec.js",
	"*.test.ts",
	"*.test.js",
	"go.mod",
	"go.sum",
	"setup.py",
	".git/",
	".cid/",
	"vendor/",
	"node_modules/",
	"testdata/",
	"migrations/",
}

// RulesFile is the optional per-project allow-list extension.
const RulesFile = "readpolicy.yaml"

type rulesFile struct {
	Allow []string `yaml:"allow"`
}

// loadAllowPatterns merges built-ins, config extras and the project
// rules file. Any failure reading the rules file falls back to what we
// already have; the policy never hard-fails on its own config.
func loadAllowPatterns(projectDir string, extra []string) []string {
	patterns := append([]string{}, defaultAllowPatterns...)
	patterns = append(patterns, extra...)

	dir, err := paths.StateDir(projectDir)
	if err != nil {
		return patterns
	}
	data, err := os.ReadFile(filepath.Join(dir, RulesFile))
	if err != nil {
		return patterns
	}
	var rules rulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return patterns
	}
	return append(patterns, rules.Allow...)
}

// matchAllowList reports whether the path matches any allow pattern.
func matchAllowList(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(slashed)
	for _, p := range patterns {
		if strings.HasSuffix(p, "/") {
			if strings.Contains(slashed, "/"+p) || strings.HasPrefix(slashed, p) {
				return true
			}
			continue
		}
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}

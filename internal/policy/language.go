package policy

import (
	"path/filepath"
	"strings"
)

// languageByExt is the recognized source-code set. Reads of anything else
// always pass through untouched.
var languageByExt = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".rb":    "ruby",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".lua":   "lua",
	".ex":    "elixir",
	".exs":   "elixir",
}

// DetectLanguage returns the language for a file path, or "" when the
// extension is outside the recognized source set.
func DetectLanguage(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

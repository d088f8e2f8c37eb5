package document

import (
	"path/filepath"
	"strings"
)

// PlainText is the language tag for unrecognized files.
const PlainText = "plaintext"

var languageByExt = map[string]string{
	".go":       "go",
	".rs":       "rust",
	".ts":       "typescript",
	".tsx":      "typescriptreact",
	".js":       "javascript",
	".jsx":      "javascriptreact",
	".py":       "python",
	".rb":       "ruby",
	".java":     "java",
	".c":        "c",
	".h":        "c",
	".cpp":      "cpp",
	".cc":       "cpp",
	".hpp":      "cpp",
	".cs":       "csharp",
	".lua":      "lua",
	".sh":       "shellscript",
	".bash":     "shellscript",
	".json":     "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",
	".html":     "html",
	".css":      "css",
	".md":       "markdown",
	".markdown": "markdown",
	".sql":      "sql",
	".txt":      PlainText,
}

var languageByName = map[string]string{
	"makefile":   "makefile",
	"dockerfile": "dockerfile",
	"go.mod":     "go.mod",
}

// DetectLanguage returns the language tag for a path based on its name
// and extension.
func DetectLanguage(path string) string {
	if path == "" {
		return PlainText
	}
	base := strings.ToLower(filepath.Base(path))
	if lang, ok := languageByName[base]; ok {
		return lang
	}
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(base))]; ok {
		return lang
	}
	return PlainText
}

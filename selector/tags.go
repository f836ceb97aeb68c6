package selector

import (
	"path"
	"strings"
)

// extensionTags maps file extensions to the type tags hooks filter on with
// types, types_or and exclude_types. Only the common tags are known; unknown
// extensions carry just "file".
var extensionTags = map[string][]string{
	".py":   {"text", "python"},
	".pyi":  {"text", "pyi", "python"},
	".go":   {"text", "go"},
	".mod":  {"text", "go-mod"},
	".yaml": {"text", "yaml"},
	".yml":  {"text", "yaml"},
	".json": {"text", "json"},
	".toml": {"text", "toml"},
	".cfg":  {"text", "ini"},
	".ini":  {"text", "ini"},
	".md":   {"text", "markdown"},
	".rst":  {"text", "rst"},
	".txt":  {"text", "plain-text"},
	".sh":   {"text", "shell", "sh"},
	".bash": {"text", "shell", "bash"},
	".js":   {"text", "javascript"},
	".ts":   {"text", "ts"},
	".html": {"text", "html"},
	".css":  {"text", "css"},
	".xml":  {"text", "xml"},
	".sql":  {"text", "sql"},
	".png":  {"binary", "image", "png"},
	".jpg":  {"binary", "image", "jpeg"},
	".jpeg": {"binary", "image", "jpeg"},
	".gif":  {"binary", "image", "gif"},
	".zip":  {"binary", "zip"},
	".gz":   {"binary", "gzip"},
	".whl":  {"binary", "wheel", "zip"},
	".pdf":  {"binary", "pdf"},
	".lock": {"text"},
}

var nameTags = map[string][]string{
	"Dockerfile":    {"text", "dockerfile"},
	"Makefile":      {"text", "makefile"},
	"LICENSE":       {"text", "plain-text"},
	".gitignore":    {"text", "gitignore"},
	".dockerignore": {"text", "dockerignore"},
}

// Tags returns the type tags of a path. Every path is tagged "file".
func Tags(file string) map[string]bool {
	tags := map[string]bool{"file": true}

	base := path.Base(file)
	if named, ok := nameTags[base]; ok {
		for _, t := range named {
			tags[t] = true
		}
		return tags
	}

	ext := strings.ToLower(path.Ext(base))
	for _, t := range extensionTags[ext] {
		tags[t] = true
	}
	return tags
}

// matchesTypes applies types (all required), types_or (any required) and
// exclude_types (none allowed).
func matchesTypes(tags map[string]bool, types, typesOr, excludeTypes []string) bool {
	for _, t := range types {
		if !tags[t] {
			return false
		}
	}
	if len(typesOr) > 0 {
		found := false
		for _, t := range typesOr {
			if tags[t] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, t := range excludeTypes {
		if tags[t] {
			return false
		}
	}
	return true
}

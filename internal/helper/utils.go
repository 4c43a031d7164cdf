package helper

import (
	"os"
	"strings"
)

// CreateFolder makes the directory (and parents) if it does not exist.
func CreateFolder(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Preview flattens text to a single line truncated to max characters,
// for rendering source snippets.
func Preview(text string, max int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= max {
		return flat
	}
	return flat[:max] + "…"
}

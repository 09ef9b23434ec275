package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

// parseFile dispatches to the language front end matching the file
// extension.
func parseFile(path string) ([]*syntax.Function, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, expected a file: %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return syntax.ParsePythonFile(path)
	case ".go":
		return syntax.ParseGoFile(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (only .py and .go files supported)", path)
	}
}

// findFunction picks the named function out of a parsed file, listing the
// available names when it is missing.
func findFunction(funcs []*syntax.Function, name, path string) (*syntax.Function, error) {
	var names []string
	for _, fn := range funcs {
		if fn.Name == name {
			return fn, nil
		}
		names = append(names, fn.Name)
	}
	if len(names) > 0 {
		return nil, fmt.Errorf("function %q not found in %s (available: %s)",
			name, path, strings.Join(names, ", "))
	}
	return nil, fmt.Errorf("function %q not found in %s", name, path)
}

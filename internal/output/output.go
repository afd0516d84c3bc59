// Package output persists generated text to fixed-name files.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer saves results under Dir. An empty Dir means the working directory.
type Writer struct {
	Dir string
}

// Save writes text verbatim to Dir/name, replacing any previous content,
// and returns the path written.
func (w Writer) Save(name, text string) (string, error) {
	path := name
	if w.Dir != "" {
		path = filepath.Join(w.Dir, name)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

package modes

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides is the YAML document that customizes modes:
//
//	modes:
//	  summarize:
//	    template: |
//	      Summarize in three bullet points:
//	      {{.Text}}
//	    output_file: notes.txt
type Overrides struct {
	Modes map[string]ModeOverride `yaml:"modes"`
}

// ModeOverride replaces parts of a built-in mode. Empty fields keep the default.
type ModeOverride struct {
	Template   string `yaml:"template"`
	OutputFile string `yaml:"output_file"`
}

// Load returns the default catalog with overrides from path applied.
// A missing file yields the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("opening templates file: %w", err)
	}
	defer f.Close()

	var ov Overrides
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&ov); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing templates file %s: %w", path, err)
	}

	if err := c.Apply(ov); err != nil {
		return nil, fmt.Errorf("applying templates file %s: %w", path, err)
	}
	return c, nil
}

// Apply overrides templates and output files of named modes.
func (c *Catalog) Apply(ov Overrides) error {
	for name, o := range ov.Modes {
		m, ok := c.Get(Name(strings.ToLower(name)))
		if !ok {
			return fmt.Errorf("unknown mode %q", name)
		}
		if o.Template != "" {
			if err := m.setTemplate(o.Template); err != nil {
				return err
			}
		}
		if o.OutputFile != "" {
			if m.Name == Chat {
				return fmt.Errorf("mode %q does not save results", name)
			}
			if o.OutputFile == "." || o.OutputFile == ".." || filepath.Base(o.OutputFile) != o.OutputFile {
				return fmt.Errorf("output_file for %q must be a bare file name, got %q", name, o.OutputFile)
			}
			m.OutputFile = o.OutputFile
		}
	}
	return nil
}

// Package config loads the optional generator override file (spec.md
// §4.10): operator tweaks to the compile-time header registry that don't
// require editing the registry literal in internal/fieldreg.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hexinfra/fielddict/internal/fieldreg"
)

// GeneratorFile is the on-disk shape of a fieldgen override file.
//
//	primary:
//	  - x-request-id
//	headers:
//	  etag:
//	    encoding: utf8
type GeneratorFile struct {
	Primary []string                `yaml:"primary"`
	Headers map[string]HeaderConfig `yaml:"headers"`
}

// HeaderConfig overrides a single registered header by name.
type HeaderConfig struct {
	Encoding string `yaml:"encoding"` // "ascii" (default) or "utf8"
}

// Load reads path and converts it into fieldreg.Overrides. A missing path
// is not an error: fieldgen runs fine with the bare compile-time registry.
func Load(path string) (fieldreg.Overrides, error) {
	overrides := fieldreg.Overrides{
		Primary:  map[string]bool{},
		Encoding: map[string]fieldreg.ValueEncoding{},
	}
	if path == "" {
		return overrides, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return overrides, nil
	}
	if err != nil {
		return overrides, fmt.Errorf("config: read %s: %w", path, err)
	}

	var file GeneratorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return overrides, fmt.Errorf("config: parse %s: %w", path, err)
	}

	for _, name := range file.Primary {
		overrides.Primary[strings.ToLower(name)] = true
	}
	for name, hc := range file.Headers {
		key := strings.ToLower(name)
		switch hc.Encoding {
		case "", "ascii":
			overrides.Encoding[key] = fieldreg.EncASCII
		case "utf8":
			overrides.Encoding[key] = fieldreg.EncUTF8
		default:
			return overrides, fmt.Errorf("config: header %q: unknown encoding %q", name, hc.Encoding)
		}
	}
	return overrides, nil
}

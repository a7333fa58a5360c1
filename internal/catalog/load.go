package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTable []byte

// ErrUnknownFormat is returned for catalog files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown catalog format")

// File is the on-disk shape of a catalog.
type File struct {
	Airports []Spec `yaml:"airports" toml:"airports" json:"airports"`
}

// DefaultSpecs returns the built-in airport type table.
func DefaultSpecs() ([]Spec, error) {
	return decode(defaultTable, ".yaml")
}

// Default builds a catalog from the built-in table.
func Default(settings Settings) (*Catalog, error) {
	specs, err := DefaultSpecs()
	if err != nil {
		return nil, fmt.Errorf("decoding default catalog: %w", err)
	}
	return New(specs, settings)
}

// LoadFile reads airport specs from a YAML, TOML or JSON file, chosen by
// extension.
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	specs, err := decode(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Load builds a catalog from a file, or from the built-in table when path
// is empty.
func Load(path string, settings Settings) (*Catalog, error) {
	if path == "" {
		return Default(settings)
	}
	specs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(specs, settings)
}

func decode(data []byte, ext string) ([]Spec, error) {
	var f File
	switch ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown toml keys: %v", undecoded)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return f.Airports, nil
}

package registry

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
)

//go:embed data/*.json
var defaultData embed.FS

// Default builds a registry from the definitions embedded in the binary.
func Default() (*Registry, error) {
	r := newRegistry()
	err := fs.WalkDir(defaultData, "data", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := defaultData.ReadFile(path)
		if err != nil {
			return err
		}
		var f definitionFile
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("embedded %s: %w", path, err)
		}
		return r.merge(&f)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MustDefault is Default for tests and init paths where the embedded data
// is known good.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

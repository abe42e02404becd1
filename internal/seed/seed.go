// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/avery/internal/ctxlog"
	"github.com/vk/avery/internal/fsutil"
	"github.com/vk/avery/record"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var extensions = []string{".hcl", ".yaml", ".yml"}

// Seed is one named set of initial values for a record.
type Seed struct {
	Model  string
	Name   string
	Values map[string]cty.Value
	// Source is the file the seed was read from.
	Source string
}

// ID returns "<model>.<name>".
func (s *Seed) ID() string {
	return s.Model + "." + s.Name
}

// Load reads every seed file under the given files or directories. Seeds
// are returned sorted by ID; two seeds with the same ID are an error.
func Load(ctx context.Context, paths ...string) ([]*Seed, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered seed files.", "count", len(files))

	var seeds []*Seed
	seen := make(map[string]string)
	for _, file := range files {
		var loaded []*Seed
		switch filepath.Ext(file) {
		case ".hcl":
			loaded, err = loadHCL(file)
		default:
			loaded, err = loadYAML(file)
		}
		if err != nil {
			return nil, err
		}
		for _, s := range loaded {
			if prev, ok := seen[s.ID()]; ok {
				return nil, fmt.Errorf("seed %q in %s is already declared in %s", s.ID(), file, prev)
			}
			seen[s.ID()] = file
		}
		seeds = append(seeds, loaded...)
		logger.Debug("Loaded seed file.", "file", file, "seeds", len(loaded))
	}

	sort.Slice(seeds, func(i, j int) bool { return seeds[i].ID() < seeds[j].ID() })
	return seeds, nil
}

func findFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, extensions...)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func validate(s *Seed) error {
	switch {
	case s.Model == "":
		return fmt.Errorf("%s: seed %q has no model", s.Source, s.Name)
	case s.Name == "":
		return fmt.Errorf("%s: seed of model %q has no name", s.Source, s.Model)
	}
	return nil
}

// Build creates the seed's record. The seed must name a known model and
// only stored attributes of it. Literal lists and maps are converted to the
// collection type of the attribute's default, so `["a"]` seeds a
// list(string) attribute.
func (s *Seed) Build(models map[string]*record.Model) (*record.Record, error) {
	m, ok := models[s.Model]
	if !ok {
		return nil, fmt.Errorf("seed %q: unknown model %q", s.ID(), s.Model)
	}

	values := make(map[string]cty.Value, len(s.Values))
	for name, v := range s.Values {
		values[name] = shape(m, name, v)
	}

	r, err := m.New(nil).Merge(values)
	if err != nil {
		return nil, fmt.Errorf("seed %q: %w", s.ID(), err)
	}
	return r, nil
}

func shape(m *record.Model, name string, v cty.Value) cty.Value {
	def, ok := m.Default(name)
	if !ok || v.IsNull() {
		return v
	}
	ty := def.Type()
	if !ty.IsCollectionType() {
		return v
	}
	if !v.Type().IsTupleType() && !v.Type().IsObjectType() {
		return v
	}
	if converted, err := convert.Convert(v, ty); err == nil {
		return converted
	}
	return v
}

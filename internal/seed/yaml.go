// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/avery/record"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Records []yamlRecord `yaml:"records"`
}

type yamlRecord struct {
	Model  string         `yaml:"model"`
	Name   string         `yaml:"name"`
	Values map[string]any `yaml:"values"`
}

func loadYAML(file string) ([]*Seed, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc yamlFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
	}

	seeds := make([]*Seed, 0, len(doc.Records))
	for _, rec := range doc.Records {
		values := make(map[string]cty.Value, len(rec.Values))
		for name, v := range rec.Values {
			val, err := record.ToValue(v)
			if err != nil {
				return nil, fmt.Errorf("in %s, record %q %q, attribute %q: %w", file, rec.Model, rec.Name, name, err)
			}
			values[name] = val
		}

		s := &Seed{Model: rec.Model, Name: rec.Name, Values: values, Source: file}
		if err := validate(s); err != nil {
			return nil, err
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}

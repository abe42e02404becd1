// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package seed

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	avhcl "github.com/vk/avery/internal/hcl"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes `record` blocks and ignores everything else, so seeds
// may share a file with model manifests.
type fileRoot struct {
	Records []*recordBlock `hcl:"record,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

type recordBlock struct {
	Model string   `hcl:"model,label"`
	Name  string   `hcl:"name,label"`
	Body  hcl.Body `hcl:",remain"`
}

func loadHCL(file string) ([]*Seed, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	evalCtx := avhcl.NewEvalContext(nil)
	seeds := make([]*Seed, 0, len(root.Records))
	for _, block := range root.Records {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("in %s, record %q %q: %w", file, block.Model, block.Name, diags)
		}

		values := make(map[string]cty.Value, len(attrs))
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("in %s, record %q %q, attribute %q: %w", file, block.Model, block.Name, name, diags)
			}
			values[name] = val
		}

		s := &Seed{Model: block.Model, Name: block.Name, Values: values, Source: file}
		if err := validate(s); err != nil {
			return nil, err
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}

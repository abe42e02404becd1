// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a manifest file. Blocks other
// than `model`, such as seed `record` blocks, are left in Remain.
type fileRoot struct {
	Models []*modelBlock `hcl:"model,block"`
	Remain hcl.Body      `hcl:",remain"`
}

// modelBlock represents a `model` block.
type modelBlock struct {
	Name        string             `hcl:"name,label"`
	Description string             `hcl:"description,optional"`
	Attributes  []*attributeBlock  `hcl:"attribute,block"`
	Virtuals    []*virtualBlock    `hcl:"virtual,block"`
	Validations []*validationBlock `hcl:"validation,block"`
}

// attributeBlock declares one stored attribute.
type attributeBlock struct {
	Name        string         `hcl:"name,label"`
	Type        *hcl.Attribute `hcl:"type,optional"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Required    bool           `hcl:"required,optional"`
}

// virtualBlock declares one virtual attribute, computed either by an
// expression or by a registered Go handler.
type virtualBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Expr        *hcl.Attribute `hcl:"expr,optional"`
	Handler     string         `hcl:"handler,optional"`
	Type        *hcl.Attribute `hcl:"type,optional"`
	DependsOn   []string       `hcl:"depends_on,optional"`
}

// validationBlock is a boolean condition over the stored attributes.
type validationBlock struct {
	Condition    hcl.Expression `hcl:"condition"`
	ErrorMessage string         `hcl:"error_message"`
}

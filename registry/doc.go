// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package registry provides the central "glue" between manifests and Go code.
//
// The Registry stores mappings between the handler names used in manifests
// (e.g., "widget.label") and the Go functions that compute those virtual
// attributes. Build loads manifests and turns every declared model into a
// *record.Model, resolving expression virtuals, handler virtuals and
// validation conditions.
//
// A manifest that names a handler nobody registered is rejected when it is
// built, so the Go code and the manifests are always checked against each
// other before any record exists.
package registry

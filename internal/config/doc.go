// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package config defines the format-agnostic manifest model: the model,
// attribute, virtual and validation declarations read from manifest files,
// along with the Loader interface that produces them.
//
// The `config.Manifest` is the single source of truth for the `registry`
// package. Concrete loaders, such as the HCL one, live in separate packages.
package config

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for manifest file discovery, parsing, and
// HCL-to-model translation, and it owns the evaluation context (variables
// and functions) that manifest expressions run against.
package hcl

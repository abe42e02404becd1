// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package schema validates record attribute objects against cty type
// constraints and value checks. An *Object satisfies record.Schema.
//
// Types are checked by conformance, never by conversion: a number is not
// accepted where a string is required. Null attributes are accepted unless
// the attribute is Required.
package schema

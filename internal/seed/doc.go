// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package seed reads named record seeds from HCL or YAML files. A seed
// names a model and supplies initial values for some of its stored
// attributes; Build turns it into a record of that model.
//
// HCL seeds are `record` blocks:
//
//	record "widget" "first" {
//	  id    = 1
//	  name  = "Name"
//	  value = "MyValue"
//	}
//
// YAML seeds are listed under a top-level `records` key:
//
//	records:
//	  - model: widget
//	    name: first
//	    values:
//	      id: 1
package seed

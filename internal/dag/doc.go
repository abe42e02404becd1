// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package dag models dependencies between the attributes of a record model
// as a directed graph. A virtual attribute that reads another attribute
// depends on it; the graph is used while a model is being defined to reject
// dependency cycles and to order virtuals so that each one is listed after
// everything it reads.
package dag

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package integrationtests holds end-to-end tests that drive manifests and
// seeds through the registry and the app exactly as the avery binary does.
package integrationtests

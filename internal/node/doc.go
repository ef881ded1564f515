// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package node provides the dynamically typed tree that every config pass
// operates on. A Node is one of Null, Bool, Number, String, Sequence or
// Mapping; mappings keep their keys in authoring order and only accept string
// keys.
//
// # Lifecycle
//
// A tree is decoded once from YAML, then each pipeline pass takes exclusive
// ownership of it and rewrites it in place. Once the loader returns, the tree
// is treated as frozen: resolution only reads it, so a single canonical tree
// may be shared by concurrent resolutions.
//
// # Interop
//
// Nodes convert to and from gopkg.in/yaml.v3 nodes (Decode, MarshalYAML) and
// to cty values (ToCty) for executors that evaluate HCL expressions.
package node

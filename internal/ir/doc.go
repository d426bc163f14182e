// Package ir defines the dataflow intermediate representation the rewrite
// engine operates on: a directed graph of operator nodes connected by named
// tensor edges, with graph-level inputs, outputs, and constant tensors.
//
// The graph is name-indexed rather than pointer-linked. Producer and consumer
// lookups go through indexes keyed by tensor name that are rebuilt lazily
// after mutations, which keeps node removal free of dangling-reference
// hazards. The package also provides the accessor layer rewrite rules build
// on: constant resolution, positional constant discovery, and attribute
// comparison over dynamically typed cty values.
package ir

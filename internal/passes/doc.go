// Package passes implements the independent whole-graph cleanup scans that
// run after fusion: cascaded cast collapsing, identity elision, and the
// inference-driven removal of redundant casts and reshapes, plus the helpers
// for int32 graph-input upcasting and quantization-node fusion eligibility.
//
// Each pass performs one linear scan over a snapshot of the node sequence
// and applies its rewires afterwards, never mid-scan. Passes that depend on
// shape/type inference request it from the oracle first and skip entirely,
// leaving the graph unchanged, when inference is unavailable.
package passes

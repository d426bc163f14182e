// Package hcl implements the model serialization collaborator: loading HCL
// model files into the ir graph and writing optimized graphs back out. The
// rewrite engine itself never touches this format; it consumes and produces
// ir.Graph values only.
package hcl

// Package app wires the optimizer together for one invocation: logger,
// model loader, rule registry, pipeline run, and optional save of the
// optimized model. It owns no graph logic of its own.
package app

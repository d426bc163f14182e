package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/fusion"
)

// Registry holds the fusion rules for a single optimizer instance, keyed by
// rule name, preserving registration order for deterministic pass sequencing.
type Registry struct {
	rules map[string]fusion.Rule
	order []string
}

// New creates and initializes an empty Registry.
func New() *Registry {
	return &Registry{rules: make(map[string]fusion.Rule)}
}

// Register adds a rule. Duplicate names are rejected so two rules can never
// silently shadow each other inside one pipeline.
func (r *Registry) Register(rule fusion.Rule) error {
	name := rule.Name()
	if name == "" {
		return fmt.Errorf("rule has no name")
	}
	if _, exists := r.rules[name]; exists {
		return fmt.Errorf("rule %q already registered", name)
	}
	r.rules[name] = rule
	r.order = append(r.order, name)
	return nil
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []fusion.Rule {
	out := make([]fusion.Rule, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.rules[name])
	}
	return out
}

// Validate checks the integrity of the registered rule set: every rule must
// declare at least one trigger operator type, and no trigger may be blank.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var errs []string
	for _, name := range r.order {
		rule := r.rules[name]
		triggers := rule.Triggers()
		if len(triggers) == 0 {
			errs = append(errs, fmt.Sprintf("rule %q declares no trigger operator types", name))
			continue
		}
		for _, op := range triggers {
			if op == "" {
				errs = append(errs, fmt.Sprintf("rule %q declares a blank trigger operator type", name))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rule registry validation failed:\n%s", strings.Join(errs, "\n"))
	}
	logger.Debug("Rule registry validation passed.", "rules", len(r.order))
	return nil
}

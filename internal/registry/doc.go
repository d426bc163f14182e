// Package registry provides the central mapping between rule names and the
// fusion rules an optimizer pipeline runs.
//
// During startup the registry is populated with the rule set and then
// validated, so a misconfigured rule (no name, no trigger operators) fails
// loudly before any graph is touched rather than silently never matching.
package registry

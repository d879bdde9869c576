package pattern

import "sort"

type registration struct {
	detector  Detector
	validator Validator
}

// Registry maps pattern type identifiers to their detector/validator pair.
// Adding a type is a pure registration call; the analyzer never needs to
// change.
type Registry struct {
	entries map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// DefaultRegistry returns a registry with all built-in pattern types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeDialog, NewDialogDetector(), NewRuleValidator(DialogRules()))
	return r
}

// Register adds or replaces the pair for a pattern type.
func (r *Registry) Register(typeName string, d Detector, v Validator) {
	if typeName == "" || d == nil || v == nil {
		return
	}
	r.entries[typeName] = registration{detector: d, validator: v}
}

func (r *Registry) Lookup(typeName string) (Detector, Validator, bool) {
	reg, ok := r.entries[typeName]
	if !ok {
		return nil, nil, false
	}
	return reg.detector, reg.validator, true
}

// Types returns all registered type identifiers in sorted order, so that
// analysis output is deterministic across runs.
func (r *Registry) Types() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package pattern

// RuleValidator evaluates a fixed, ordered rule table against a match. Every
// rule runs; issues surface together in declaration order. Rules that only
// apply under some condition encode "not applicable" as satisfied, keeping
// the table static and enumerable.
type RuleValidator struct {
	rules []Rule
}

func NewRuleValidator(rules []Rule) *RuleValidator {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &RuleValidator{rules: copied}
}

func (v *RuleValidator) Validate(m *Match) []Issue {
	issues := make([]Issue, 0)
	if m == nil {
		return issues
	}
	for _, rule := range v.rules {
		if rule.Check(m) {
			continue
		}
		issues = append(issues, Issue{
			RuleID:     rule.ID,
			Severity:   rule.Severity,
			Message:    rule.Message,
			Suggestion: rule.Suggestion,
			Node:       m.Anchor,
		})
	}
	return issues
}

// Rules exposes a copy of the table, mostly so tests can treat it as a
// fixture.
func (v *RuleValidator) Rules() []Rule {
	out := make([]Rule, len(v.rules))
	copy(out, v.rules)
	return out
}

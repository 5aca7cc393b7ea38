package mindprint

import (
	"regexp"
	"strings"
)

// RedactionRule pairs a rule name with a pattern matching one class of
// sensitive substrings. Matches are replaced by the rule's Tag.
type RedactionRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Tag returns the bracketed uppercase placeholder for this rule,
// e.g. "email" becomes "[EMAIL]". No placeholder text satisfies any of
// the default patterns, which is what makes redaction idempotent.
func (r RedactionRule) Tag() string {
	return "[" + strings.ToUpper(r.Name) + "]"
}

// SignalCategory defines one behavioral signal: a sentence scores the
// category when any keyword appears in its lowercased text, or when the
// optional Extra matcher fires. Each sentence contributes at most one
// count per category regardless of how many keywords it contains.
type SignalCategory struct {
	Name     string
	Keywords []string
	Extra    func(lower string) bool
}

// TraitThresholds holds the strict ">" cutoffs used by the trait mapper.
type TraitThresholds struct {
	ComparisonDriven  int // decision_style: comparison above this is analytical
	ValidationSeeking int // decision_style: uncertainty above this is validation-seeking
	RiskAware         int // risk_profile
	MetaThinking      int // abstraction_level
	WhyDriven         int // learning_style
}

// RuleSet bundles the redaction rules, signal categories, and trait
// thresholds for one pipeline revision. It is constructed once and passed
// explicitly into each stage; stages never reach for hidden process state.
type RuleSet struct {
	Redactions []RedactionRule
	Categories []SignalCategory
	Thresholds TraitThresholds
}

// Trait labels emitted by the mapper.
const (
	DecisionAnalytical = "Analytical and comparison-driven"
	DecisionValidation = "Validation-seeking"
	DecisionBalanced   = "Balanced"

	ExecutionOriented    = "Execution-oriented"
	ExecutionExploratory = "Exploratory"

	RiskAware    = "Risk-aware"
	RiskModerate = "Moderate"

	AbstractionSystems  = "High-level systems thinker"
	AbstractionConcrete = "Concrete or tactical thinker"

	LearningConceptual = "Conceptual (why-driven)"
	LearningPractical  = "Practical (how-driven)"
)

// DefaultRules returns the rule set for ModelVersion.
//
// Redaction rules apply in the listed order over the whole text. The order
// is load-bearing: a rule applied earlier can mask substrings a later rule
// would otherwise have matched (a phone number inside an already-redacted
// credential, a company name consumed by the full-name rule). This residue
// is a documented limitation of the fixed precedence, not something a
// caller should reorder away.
func DefaultRules() *RuleSet {
	return &RuleSet{
		Redactions: []RedactionRule{
			{Name: "email", Pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
			{Name: "phone", Pattern: regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b|\b\+?1?\s?[().-]?\d{3}[().-]?\d{3}[-.]?\d{4}\b`)},
			{Name: "url", Pattern: regexp.MustCompile(`(?i)https?://[^\s)]+|www\.[^\s)]+`)},
			{Name: "ip_address", Pattern: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
			{Name: "api_key", Pattern: regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret|token|password)\s*[:=]\s*['"]?[A-Za-z0-9_\-.]+['"]?`)},
			{Name: "full_name", Pattern: regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)},
			{Name: "company", Pattern: regexp.MustCompile(`\b[A-Z][A-Za-z0-9&]+ (?:Inc|LLC|Ltd|Corp|GmbH)\.?\b`)},
		},
		Categories: []SignalCategory{
			{Name: "comparison", Keywords: []string{
				"compare", "comparison", "versus", " vs ", "better than",
				"worse than", "pros and cons", "trade-off", "tradeoff",
			}},
			{Name: "risk_awareness", Keywords: []string{
				"risk", "edge case", "failure mode", "could fail", "worst case",
				"security", "vulnerab", "mitigat", "what could go wrong",
			}},
			{Name: "implementation_focus", Keywords: []string{
				"implement", "build", "ship", "deploy", "refactor",
				"integrate", "wire up", "concrete steps", "get it working",
			}},
			{Name: "why_questions", Keywords: []string{
				"root cause", "rationale", "underlying reason", "first principles",
			}, Extra: hasWhyMarker},
			{Name: "meta_thinking", Keywords: []string{
				"architecture", "system", "abstraction", "mental model",
				"framework", "holistic", "big picture", "meta",
			}},
			{Name: "uncertainty", Keywords: []string{
				"not sure", "unsure", "uncertain", "maybe", "perhaps",
				"unclear", "confus", "doubt", "need to validate", "need to verify",
			}},
			{Name: "optimization", Keywords: []string{
				"optimiz", "optimis", "efficien", "faster", "speed up",
				"reduce latency", "streamline", "tune",
			}},
			{Name: "exploration", Keywords: []string{
				"explore", "experiment", "prototype", "investigate",
				"research", "curious", "what if", "spike",
			}},
		},
		Thresholds: TraitThresholds{
			ComparisonDriven:  5,
			ValidationSeeking: 5,
			RiskAware:         3,
			MetaThinking:      3,
			WhyDriven:         3,
		},
	}
}

// hasWhyMarker reports whether a lowercased sentence begins with the token
// "why" or contains " why " anywhere. This fires independently of the
// why_questions keyword set.
func hasWhyMarker(lower string) bool {
	if strings.Contains(lower, " why ") {
		return true
	}
	fields := strings.Fields(lower)
	return len(fields) > 0 && fields[0] == "why"
}

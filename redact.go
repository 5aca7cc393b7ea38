package mindprint

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Redact is the pipeline stage that masks sensitive spans. It implements
// pipz.Chainable[*Distillation].
//
// Each rule is applied in order over the whole text; every match is
// replaced by the rule's bracketed uppercase tag. The guarantee is scoped
// per rule at application time: a pattern applied earlier can mask
// substrings a later pattern would otherwise have matched, and a
// placeholder inserted earlier could in principle satisfy a later pattern.
// The default rule set is constructed so that no placeholder matches any
// pattern, which makes redaction idempotent.
type Redact struct {
	key   string
	rules *RuleSet
}

// NewRedact creates a new redaction stage.
//
// Example:
//
//	stage := mindprint.NewRedact("redact_pii")
//	result, _ := stage.Process(ctx, distillation)
//	fmt.Println(result.RedactedText())
func NewRedact(key string) *Redact {
	return &Redact{
		key:   key,
		rules: DefaultRules(),
	}
}

// Process implements pipz.Chainable[*Distillation].
func (s *Redact) Process(ctx context.Context, d *Distillation) (*Distillation, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("redact"),
		FieldInputSize.Field(len(d.RawText())),
	)

	redacted, counts := RedactText(d.RawText(), s.rules.Redactions)
	d.setRedacted(redacted, counts)

	total := 0
	for _, n := range counts {
		total += n
	}

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("redact"),
		FieldStageDuration.Field(time.Since(start)),
		FieldRedactedCount.Field(total),
	)

	return d, nil
}

// Name implements pipz.Chainable[*Distillation].
func (s *Redact) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Distillation].
func (s *Redact) Close() error {
	return nil
}

// WithRules sets the rule set for this stage. The rules are applied in the
// order given; reordering changes which rule masks overlapping spans.
func (s *Redact) WithRules(rules *RuleSet) *Redact {
	s.rules = rules
	return s
}

// RedactText applies the rules in order over the whole text and returns
// the masked text plus per-rule match counts. Pure function, no side
// effects. Applying it twice with the default rules yields the same text
// as applying it once.
func RedactText(text string, rules []RedactionRule) (string, map[string]int) {
	counts := make(map[string]int, len(rules))
	for _, rule := range rules {
		matches := rule.Pattern.FindAllStringIndex(text, -1)
		if len(matches) > 0 {
			counts[rule.Name] = len(matches)
			text = rule.Pattern.ReplaceAllString(text, rule.Tag())
		}
	}
	return text, counts
}

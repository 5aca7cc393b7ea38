package mindprint

import (
	"context"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Score is the pipeline stage that converts the sentence sequence into the
// fixed-shape signal vector. It implements pipz.Chainable[*Distillation].
//
// Classification is by presence, not count: a sentence increments a
// category at most once no matter how many of its keywords appear, but one
// sentence can increment several categories. Every sentence is evaluated
// against every category; there is no early exit. The aggregate is
// order-insensitive.
type Score struct {
	key   string
	rules *RuleSet
}

// NewScore creates a new signal scoring stage.
//
// Example:
//
//	stage := mindprint.NewScore("score_signals")
//	result, _ := stage.Process(ctx, distillation)
//	vector, _ := result.Signals()
//	fmt.Println(vector.WhyQuestions)
func NewScore(key string) *Score {
	return &Score{
		key:   key,
		rules: DefaultRules(),
	}
}

// Process implements pipz.Chainable[*Distillation].
func (s *Score) Process(ctx context.Context, d *Distillation) (*Distillation, error) {
	start := time.Now()

	sentences := d.Sentences()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("score"),
		FieldSentenceCount.Field(len(sentences)),
	)

	vector := ScoreSentences(sentences, s.rules.Categories)
	d.setSignals(vector)

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("score"),
		FieldStageDuration.Field(time.Since(start)),
		FieldSignalTotal.Field(vector.Total()),
	)

	return d, nil
}

// Name implements pipz.Chainable[*Distillation].
func (s *Score) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Distillation].
func (s *Score) Close() error {
	return nil
}

// WithRules sets the rule set whose signal categories this stage uses.
func (s *Score) WithRules(rules *RuleSet) *Score {
	s.rules = rules
	return s
}

// ScoreSentences evaluates every sentence against every category and sums
// the per-sentence presence hits into a SignalVector. Pure function;
// counters only ever grow as sentences are appended to the input.
func ScoreSentences(sentences []string, categories []SignalCategory) SignalVector {
	var vector SignalVector

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, category := range categories {
			if categoryHit(lower, category) {
				vector.bump(category.Name)
			}
		}
	}

	return vector
}

// categoryHit reports whether the lowercased sentence contains any of the
// category's keywords or satisfies its extra matcher.
func categoryHit(lower string, category SignalCategory) bool {
	for _, keyword := range category.Keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return category.Extra != nil && category.Extra(lower)
}

package mindprint

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// MapTraits is the pipeline stage that derives the trait profile from the
// signal vector. It implements pipz.Chainable[*Distillation].
//
// Each of the five traits is computed independently from the same vector
// snapshot through first-match-wins threshold rules with strict ">"
// comparisons. The mapping is a pure function of the vector: no other
// input, no randomness, no clock.
type MapTraits struct {
	key   string
	rules *RuleSet
}

// NewMapTraits creates a new trait mapping stage.
func NewMapTraits(key string) *MapTraits {
	return &MapTraits{
		key:   key,
		rules: DefaultRules(),
	}
}

// Process implements pipz.Chainable[*Distillation].
func (s *MapTraits) Process(ctx context.Context, d *Distillation) (*Distillation, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("traits"),
	)

	vector, _ := d.Signals()
	profile := MapSignals(vector, s.rules.Thresholds)
	d.setTraits(profile)

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("traits"),
		FieldStageDuration.Field(time.Since(start)),
	)

	return d, nil
}

// Name implements pipz.Chainable[*Distillation].
func (s *MapTraits) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Distillation].
func (s *MapTraits) Close() error {
	return nil
}

// WithRules sets the rule set whose thresholds this stage uses.
func (s *MapTraits) WithRules(rules *RuleSet) *MapTraits {
	s.rules = rules
	return s
}

// MapSignals converts a signal vector into a trait profile via the
// threshold rules. Pure deterministic function: identical vectors always
// yield identical profiles.
func MapSignals(v SignalVector, t TraitThresholds) TraitProfile {
	profile := TraitProfile{
		ExecutionMode:    ExecutionExploratory,
		RiskProfile:      RiskModerate,
		AbstractionLevel: AbstractionConcrete,
		LearningStyle:    LearningPractical,
	}

	switch {
	case v.Comparison > t.ComparisonDriven:
		profile.DecisionStyle = DecisionAnalytical
	case v.Uncertainty > t.ValidationSeeking:
		profile.DecisionStyle = DecisionValidation
	default:
		profile.DecisionStyle = DecisionBalanced
	}

	if v.ImplementationFocus > v.Exploration {
		profile.ExecutionMode = ExecutionOriented
	}

	if v.RiskAwareness > t.RiskAware {
		profile.RiskProfile = RiskAware
	}

	if v.MetaThinking > t.MetaThinking {
		profile.AbstractionLevel = AbstractionSystems
	}

	if v.WhyQuestions > t.WhyDriven {
		profile.LearningStyle = LearningConceptual
	}

	return profile
}

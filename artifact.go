package mindprint

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SignalVector is the fixed-shape mapping from the eight behavioral signal
// names to non-negative counts. Field order is the declaration order used
// by the rendered view.
type SignalVector struct {
	Comparison          int `json:"comparison"`
	RiskAwareness       int `json:"risk_awareness"`
	ImplementationFocus int `json:"implementation_focus"`
	WhyQuestions        int `json:"why_questions"`
	MetaThinking        int `json:"meta_thinking"`
	Uncertainty         int `json:"uncertainty"`
	Optimization        int `json:"optimization"`
	Exploration         int `json:"exploration"`
}

// SignalCount pairs a signal name with its count for ordered iteration.
type SignalCount struct {
	Name  string
	Count int
}

// Counts returns the vector entries in declaration order.
func (v SignalVector) Counts() []SignalCount {
	return []SignalCount{
		{"comparison", v.Comparison},
		{"risk_awareness", v.RiskAwareness},
		{"implementation_focus", v.ImplementationFocus},
		{"why_questions", v.WhyQuestions},
		{"meta_thinking", v.MetaThinking},
		{"uncertainty", v.Uncertainty},
		{"optimization", v.Optimization},
		{"exploration", v.Exploration},
	}
}

// Total returns the sum of all counters.
func (v SignalVector) Total() int {
	total := 0
	for _, c := range v.Counts() {
		total += c.Count
	}
	return total
}

// bump increments the counter for the named category. Unknown names are
// ignored so that a trimmed-down rule set cannot corrupt the fixed shape.
func (v *SignalVector) bump(name string) {
	switch name {
	case "comparison":
		v.Comparison++
	case "risk_awareness":
		v.RiskAwareness++
	case "implementation_focus":
		v.ImplementationFocus++
	case "why_questions":
		v.WhyQuestions++
	case "meta_thinking":
		v.MetaThinking++
	case "uncertainty":
		v.Uncertainty++
	case "optimization":
		v.Optimization++
	case "exploration":
		v.Exploration++
	}
}

// TraitProfile is the fixed set of five qualitative trait labels derived
// deterministically from a SignalVector.
type TraitProfile struct {
	DecisionStyle    string `json:"decision_style"`
	ExecutionMode    string `json:"execution_mode"`
	RiskProfile      string `json:"risk_profile"`
	AbstractionLevel string `json:"abstraction_level"`
	LearningStyle    string `json:"learning_style"`
}

// TraitLabel pairs a trait name with its label for ordered iteration.
type TraitLabel struct {
	Name  string
	Label string
}

// Labels returns the profile entries in declaration order.
func (p TraitProfile) Labels() []TraitLabel {
	return []TraitLabel{
		{"decision_style", p.DecisionStyle},
		{"execution_mode", p.ExecutionMode},
		{"risk_profile", p.RiskProfile},
		{"abstraction_level", p.AbstractionLevel},
		{"learning_style", p.LearningStyle},
	}
}

// CognitionArtifact is the canonical output of one distillation run. The
// schema is closed: exactly these three fields, recreated in full on every
// invocation.
type CognitionArtifact struct {
	Version string       `json:"version"`
	Signals SignalVector `json:"signals"`
	Traits  TraitProfile `json:"traits"`
}

// EncodeArtifact serializes the artifact as indented JSON with a trailing
// newline.
func EncodeArtifact(a *CognitionArtifact) ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeArtifact parses a structured artifact file back into a
// CognitionArtifact. Decoding the bytes produced by EncodeArtifact yields
// the exact version, signals, and traits that were encoded.
func DecodeArtifact(data []byte) (*CognitionArtifact, error) {
	var a CognitionArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return &a, nil
}

// Render produces the human-readable Markdown view of the artifact with a
// deterministic section order: heading and version line, dominant traits,
// behavioral signal scores in declaration order, and the closing
// disclosure note.
func (a *CognitionArtifact) Render() string {
	var b strings.Builder

	b.WriteString("# Cognition Profile\n\n")
	fmt.Fprintf(&b, "*Model version: %s*\n\n", a.Version)

	b.WriteString("## Dominant Traits\n\n")
	for _, t := range a.Traits.Labels() {
		fmt.Fprintf(&b, "- **%s**: %s\n", titleCase(t.Name), t.Label)
	}
	b.WriteString("\n")

	b.WriteString("## Behavioral Signal Scores\n\n")
	for _, s := range a.Signals.Counts() {
		fmt.Fprintf(&b, "- %s: %d\n", s.Name, s.Count)
	}
	b.WriteString("\n")

	b.WriteString("## Privacy & Redaction\n\n")
	b.WriteString("This profile was distilled from working notes with automatic masking of\n")
	b.WriteString("emails, phone numbers, URLs, IP addresses, credential-like text, personal\n")
	b.WriteString("names, and company names. Masking covers the documented pattern set only;\n")
	b.WriteString("review before sharing.\n\n")
	b.WriteString("---\n\n")
	b.WriteString("*Generated by mindprint - Automated Cognition Distillation*\n")

	return b.String()
}

// titleCase converts a snake_case identifier into a human-readable title,
// e.g. "decision_style" becomes "Decision Style".
func titleCase(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

package mindprint

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// sentenceDelimiter splits on one or more sentence-ending characters or
// newlines. There is no boundary detection beyond this character class:
// abbreviations and decimals split too, which is a deliberate
// simplification of the extractor.
var sentenceDelimiter = regexp.MustCompile(`[.!?\n]+`)

// ExtractSentences is the pipeline stage that splits redacted text into an
// ordered sequence of sentence-like units. It implements
// pipz.Chainable[*Distillation].
type ExtractSentences struct {
	key string
}

// NewExtractSentences creates a new sentence extraction stage.
//
// Segments are trimmed of surrounding whitespace and discarded when their
// trimmed length is 20 characters or fewer. Source order is preserved.
func NewExtractSentences(key string) *ExtractSentences {
	return &ExtractSentences{key: key}
}

// Process implements pipz.Chainable[*Distillation].
func (s *ExtractSentences) Process(ctx context.Context, d *Distillation) (*Distillation, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("sentences"),
		FieldInputSize.Field(len(d.RedactedText())),
	)

	sentences := SplitSentences(d.RedactedText())
	d.setSentences(sentences)

	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("sentences"),
		FieldStageDuration.Field(time.Since(start)),
		FieldSentenceCount.Field(len(sentences)),
	)

	return d, nil
}

// Name implements pipz.Chainable[*Distillation].
func (s *ExtractSentences) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Distillation].
func (s *ExtractSentences) Close() error {
	return nil
}

// SplitSentences splits text wherever one or more of ". ! ? newline"
// occur, trims each segment, and keeps segments longer than
// MinSentenceLength characters in source order. Length is counted in
// runes, not bytes, so multi-byte input is gated the same as ASCII.
// Pure function.
func SplitSentences(text string) []string {
	segments := sentenceDelimiter.Split(text, -1)

	sentences := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if utf8.RuneCountInString(trimmed) > MinSentenceLength {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

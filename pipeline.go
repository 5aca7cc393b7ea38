package mindprint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zoobzio/capitan"
)

// distillConfig collects the optional knobs of one Distill call.
type distillConfig struct {
	outputPath string
	rules      *RuleSet
	gateway    Gateway
}

// DistillOption customizes a Distill call.
type DistillOption func(*distillConfig)

// WithOutput overrides the default ".mindprint" output location.
func WithOutput(path string) DistillOption {
	return func(c *distillConfig) {
		c.outputPath = path
	}
}

// WithRuleSet overrides the default redaction rules, keyword tables, and
// thresholds for every stage of the call.
func WithRuleSet(rules *RuleSet) DistillOption {
	return func(c *distillConfig) {
		c.rules = rules
	}
}

// WithSyncGateway supplies the gateway for the sync stage, taking
// precedence over context and global gateways.
func WithSyncGateway(g Gateway) DistillOption {
	return func(c *distillConfig) {
		c.gateway = g
	}
}

// Distill runs the whole pipeline against a source location: read, redact,
// extract, score, map, write, log, sync. The returned string is a
// human-readable status for both success and failure; err is non-nil
// exactly when the status reports a failure. No fault propagates past this
// entry point - panics are recovered into failure statuses.
//
// Stages run strictly in order and the invocation owns its Distillation
// exclusively. Sync outcomes never surface here: once the artifact is on
// disk the operation has succeeded.
func Distill(ctx context.Context, source string, opts ...DistillOption) (status string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("distill panic: %v", r)
			status = fmt.Sprintf("Error: %v", err)
		}
	}()

	cfg := distillConfig{rules: DefaultRules()}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()

	d, err := NewDistillation(ctx, source, cfg.outputPath)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), err
	}

	pipeline := Sequence("distill",
		NewRedact("redact_pii").WithRules(cfg.rules),
		NewExtractSentences("extract_sentences"),
		NewScore("score_signals").WithRules(cfg.rules),
		NewMapTraits("map_traits").WithRules(cfg.rules),
		NewWriteArtifact("write_artifact"),
		NewLogProvenance("log_provenance"),
		NewSync("sync_artifact").WithGateway(cfg.gateway),
	)

	result, err := pipeline.Process(ctx, d)
	if err != nil {
		capitan.Error(ctx, DistillationFailed,
			FieldTraceID.Field(d.TraceID),
			FieldSourcePath.Field(d.SourcePath),
			FieldStageDuration.Field(time.Since(start)),
			FieldError.Field(err),
		)
		return fmt.Sprintf("Error: %v", err), err
	}

	capitan.Emit(ctx, DistillationCompleted,
		FieldTraceID.Field(result.TraceID),
		FieldSourcePath.Field(result.SourcePath),
		FieldOutputPath.Field(result.OutputPath),
		FieldStageDuration.Field(time.Since(start)),
	)

	viewFile := filepath.Join(result.OutputPath, ArtifactViewFile)
	redactedInfo := ""
	if summary := result.RedactionSummary(); summary != "" {
		redactedInfo = " Redacted: " + summary
	}

	return fmt.Sprintf("✓ Cognition distilled to %s%s", viewFile, redactedInfo), nil
}

// ListPatterns scans root recursively for rendered cognition artifacts and
// returns a formatted summary of what it found.
func ListPatterns(root string) (string, error) {
	pattern := "**/" + OutputDir + "/" + ArtifactViewFile

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", root, err)
	}

	type patternInfo struct {
		path  string
		size  int
		lines int
	}

	patterns := make([]patternInfo, 0, len(matches))
	for _, match := range matches {
		full := filepath.Join(root, filepath.FromSlash(match))
		content, readErr := os.ReadFile(full)
		if readErr != nil {
			continue
		}
		patterns = append(patterns, patternInfo{
			path:  full,
			size:  len(content),
			lines: len(strings.Split(strings.TrimRight(string(content), "\n"), "\n")),
		})
	}

	if len(patterns) == 0 {
		return fmt.Sprintf("No cognition patterns found in %s", root), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d cognition pattern(s):\n", len(patterns))
	for _, p := range patterns {
		fmt.Fprintf(&b, "\n- %s\n  Size: %d bytes, Lines: %d", p.path, p.size, p.lines)
	}
	return b.String(), nil
}

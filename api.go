// Package mindprint distills working-notes text into shareable cognition
// patterns while protecting privacy.
//
// mindprint implements a deterministic Redact-Extract-Score-Map pipeline
// that reads MEMORY.md and HISTORY.md from a source location, strips
// personally identifiable information, scores the remaining text for
// behavioral signals, maps those signals to qualitative trait labels, and
// writes a versioned cognition artifact to disk.
//
// # Core Types
//
// The package is built around three core concepts:
//
//   - [Distillation] - The rolling context of one pipeline invocation
//   - [CognitionArtifact] - The versioned {signals, traits} output
//   - [RuleSet] - Immutable redaction patterns, keyword tables, and thresholds
//
// # Running the Pipeline
//
// Use [Distill] for the whole pipeline in one call:
//
//	status, err := mindprint.Distill(ctx, "/home/me/notes")
//	fmt.Println(status)
//
// # Stages
//
// Each stage is an independent primitive that can be composed with the
// pipeline helpers:
//
//   - [NewRedact] - Mask sensitive spans with bracketed placeholder tags
//   - [NewExtractSentences] - Split redacted text into sentence units
//   - [NewScore] - Count keyword-presence signals per sentence
//   - [NewMapTraits] - Derive trait labels from signal thresholds
//   - [NewWriteArtifact] - Persist the structured and rendered artifact
//   - [NewLogProvenance] - Append a completion record to the event log
//   - [NewSync] - Best-effort replication through a [Gateway]
//
// # Pipeline Helpers
//
// mindprint wraps pipz connectors for Distillation processing:
//
//   - [Sequence] - Sequential execution
//   - [Filter] - Conditional execution
//   - [Fallback] - Try alternatives on failure
//   - [Retry] - Retry on failure
//   - [Backoff] - Retry with exponential backoff
//   - [Timeout] - Enforce time limits
//   - [Concurrent] - Run processors in parallel
//   - [Race] - Return first successful result
//
// # Gateway
//
// Remote replication uses a resolution hierarchy:
//
//  1. Explicit parameter (.WithGateway(g))
//  2. Context value (mindprint.WithGateway(ctx, g))
//  3. Global default (mindprint.SetGateway(g))
//
// When no gateway resolves, the sync stage is skipped entirely. Sync
// outcomes never affect the locally written artifact.
//
// # Gateway Implementation
//
// The [SoyGateway] implementation uses soy for PostgreSQL persistence:
//
//	gateway, err := mindprint.NewSoyGateway(db)
//
// # Observability
//
// mindprint emits capitan signals throughout execution, including
// [DistillationStarted], [StageStarted], [StageCompleted], [StageFailed],
// [ArtifactWritten], and [SyncFailed]. The complete catalog lives in
// signals.go.
package mindprint

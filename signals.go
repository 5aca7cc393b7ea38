package mindprint

import "github.com/zoobzio/capitan"

// Signal definitions for mindprint distillation events.
// Signals follow the pattern: mindprint.<entity>.<event>.
var (
	// Distillation lifecycle signals.
	DistillationStarted = capitan.NewSignal(
		"mindprint.distillation.started",
		"New distillation run initiated with source path and trace ID",
	)
	DistillationCompleted = capitan.NewSignal(
		"mindprint.distillation.completed",
		"Distillation run finished and artifact persisted",
	)
	DistillationFailed = capitan.NewSignal(
		"mindprint.distillation.failed",
		"Distillation run aborted before the artifact was persisted",
	)

	// Stage execution signals.
	StageStarted = capitan.NewSignal(
		"mindprint.stage.started",
		"Pipeline stage began execution",
	)
	StageCompleted = capitan.NewSignal(
		"mindprint.stage.completed",
		"Pipeline stage finished successfully",
	)
	StageFailed = capitan.NewSignal(
		"mindprint.stage.failed",
		"Pipeline stage encountered an error",
	)

	// Artifact signals.
	ArtifactWritten = capitan.NewSignal(
		"mindprint.artifact.written",
		"Structured and rendered artifact files persisted to the output location",
	)
	ProvenanceRecorded = capitan.NewSignal(
		"mindprint.provenance.recorded",
		"Completion record appended to the distillation event log",
	)

	// Sync signals.
	SyncCompleted = capitan.NewSignal(
		"mindprint.sync.completed",
		"Artifact replicated to the remote gateway",
	)
	SyncSkipped = capitan.NewSignal(
		"mindprint.sync.skipped",
		"No gateway resolved; artifact stays local only",
	)
	SyncFailed = capitan.NewSignal(
		"mindprint.sync.failed",
		"Gateway sync call failed; outcome logged and swallowed",
	)
)

// Field keys for mindprint event data.
var (
	// Run metadata.
	FieldTraceID    = capitan.NewStringKey("trace_id")
	FieldSourcePath = capitan.NewStringKey("source_path")
	FieldOutputPath = capitan.NewStringKey("output_path")

	// Stage metadata.
	FieldStageName = capitan.NewStringKey("stage_name")
	FieldStageType = capitan.NewStringKey("stage_type") // redact, sentences, score, traits, write, provenance, sync

	// Pipeline metrics.
	FieldInputSize     = capitan.NewIntKey("input_size") // character count
	FieldSentenceCount = capitan.NewIntKey("sentence_count")
	FieldRedactedCount = capitan.NewIntKey("redacted_count")
	FieldSignalTotal   = capitan.NewIntKey("signal_total")

	// Timing.
	FieldStageDuration = capitan.NewDurationKey("stage_duration")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)

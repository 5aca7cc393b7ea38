package mindprint

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// LogProvenance is the pipeline stage that appends one timestamped
// completion record to the distillation event log after a successful
// artifact write. The log is append-only and unbounded; this stage never
// rotates or truncates it. It implements pipz.Chainable[*Distillation].
type LogProvenance struct {
	key string
}

// NewLogProvenance creates a new provenance logging stage.
func NewLogProvenance(key string) *LogProvenance {
	return &LogProvenance{key: key}
}

// Process implements pipz.Chainable[*Distillation].
func (s *LogProvenance) Process(ctx context.Context, d *Distillation) (*Distillation, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("provenance"),
	)

	line := fmt.Sprintf("%s - Cognition distilled", time.Now().Format(time.RFC3339))

	mu := lockOutput(d.OutputPath)
	mu.Lock()
	err := appendLogLine(d.OutputPath, ProvenanceLogFile, line)
	mu.Unlock()

	if err != nil {
		capitan.Error(ctx, StageFailed,
			FieldTraceID.Field(d.TraceID),
			FieldStageName.Field(s.key),
			FieldStageType.Field("provenance"),
			FieldStageDuration.Field(time.Since(start)),
			FieldError.Field(err),
		)
		return d, fmt.Errorf("provenance: %w", err)
	}

	capitan.Emit(ctx, ProvenanceRecorded,
		FieldTraceID.Field(d.TraceID),
		FieldOutputPath.Field(d.OutputPath),
	)
	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("provenance"),
		FieldStageDuration.Field(time.Since(start)),
	)

	return d, nil
}

// Name implements pipz.Chainable[*Distillation].
func (s *LogProvenance) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Distillation].
func (s *LogProvenance) Close() error {
	return nil
}

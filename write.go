package mindprint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// outputLocks serializes all writers per output location. Two invocations
// against the same directory take the same mutex, so a completed run's
// files are never interleaved with another's and log appends stay ordered.
var outputLocks sync.Map // map[string]*sync.Mutex

// lockOutput returns the mutex guarding the given output location.
func lockOutput(path string) *sync.Mutex {
	key := filepath.Clean(path)
	actual, _ := outputLocks.LoadOrStore(key, &sync.Mutex{})
	mu, _ := actual.(*sync.Mutex)
	return mu
}

// WriteArtifact is the pipeline stage that persists the cognition artifact
// as a structured JSON file and a rendered Markdown view under fixed names
// in the output location. It implements pipz.Chainable[*Distillation].
//
// Both files go through write-temp-then-rename while holding the output
// location's lock, so readers never observe a half-written or mismatched
// pair. Prior artifact files at those paths are overwritten. If encoding
// fails, nothing is written.
type WriteArtifact struct {
	key string
}

// NewWriteArtifact creates a new artifact writing stage.
func NewWriteArtifact(key string) *WriteArtifact {
	return &WriteArtifact{key: key}
}

// Process implements pipz.Chainable[*Distillation].
func (s *WriteArtifact) Process(ctx context.Context, d *Distillation) (*Distillation, error) {
	start := time.Now()

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("write"),
		FieldOutputPath.Field(d.OutputPath),
	)

	signals, scored := d.Signals()
	traits, mapped := d.Traits()
	if !scored || !mapped {
		err := fmt.Errorf("write: signals and traits must be computed before the artifact is assembled")
		s.emitFailed(ctx, d, start, err)
		return d, err
	}

	artifact := &CognitionArtifact{
		Version: ModelVersion,
		Signals: signals,
		Traits:  traits,
	}

	// Encode before touching the filesystem: an encoding failure writes nothing.
	encoded, err := EncodeArtifact(artifact)
	if err != nil {
		s.emitFailed(ctx, d, start, err)
		return d, fmt.Errorf("write: %w", err)
	}
	rendered := artifact.Render()

	if err := os.MkdirAll(d.OutputPath, 0o755); err != nil {
		s.emitFailed(ctx, d, start, err)
		return d, fmt.Errorf("write: failed to create output location: %w", err)
	}

	mu := lockOutput(d.OutputPath)
	mu.Lock()
	defer mu.Unlock()

	if err := writeFileAtomic(d.OutputPath, ArtifactJSONFile, encoded); err != nil {
		s.emitFailed(ctx, d, start, err)
		return d, fmt.Errorf("write: %w", err)
	}
	if err := writeFileAtomic(d.OutputPath, ArtifactViewFile, []byte(rendered)); err != nil {
		s.emitFailed(ctx, d, start, err)
		return d, fmt.Errorf("write: %w", err)
	}

	d.setArtifact(artifact)

	capitan.Emit(ctx, ArtifactWritten,
		FieldTraceID.Field(d.TraceID),
		FieldOutputPath.Field(d.OutputPath),
		FieldSignalTotal.Field(signals.Total()),
	)
	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("write"),
		FieldStageDuration.Field(time.Since(start)),
	)

	return d, nil
}

// Name implements pipz.Chainable[*Distillation].
func (s *WriteArtifact) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Distillation].
func (s *WriteArtifact) Close() error {
	return nil
}

// emitFailed emits a stage failed event.
func (s *WriteArtifact) emitFailed(ctx context.Context, d *Distillation, start time.Time, err error) {
	capitan.Error(ctx, StageFailed,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("write"),
		FieldStageDuration.Field(time.Since(start)),
		FieldError.Field(err),
	)
}

// writeFileAtomic writes data to dir/name via a temp file and rename, so a
// crash mid-write never leaves a truncated file at the final path.
func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename %s into place: %w", name, err)
	}
	return nil
}

// appendLogLine appends one line to a log file in the output location.
// Callers must hold the output location's lock.
func appendLogLine(dir, name, line string) error {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", name, err)
	}
	return nil
}

package mindprint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
)

// ErrInputMissing is returned when neither MEMORY.md nor HISTORY.md exists
// in the source location. The wrapping error names the searched path.
var ErrInputMissing = fmt.Errorf("no %s or %s found", MemoryFile, HistoryFile)

// Distillation is the rolling context of one pipeline invocation. Each
// stage reads its predecessor's output from the Distillation and records
// its own. A Distillation is owned exclusively by its invocation; it is
// never shared across runs.
//
// # Concurrency
//
// Distillation is safe for concurrent reads but not concurrent writes.
// For parallel processing, use Clone to create independent copies for each
// goroutine.
type Distillation struct {
	// Identity
	TraceID string

	// Locations
	SourcePath string
	OutputPath string

	// Timestamps
	ReadAt    time.Time
	CreatedAt time.Time

	raw        string
	redacted   string
	redactions map[string]int
	sentences  []string
	signals    SignalVector
	scored     bool
	traits     TraitProfile
	mapped     bool
	artifact   *CognitionArtifact

	mu sync.RWMutex
}

// NewDistillation reads the memory and history documents from sourcePath
// and returns a fresh Distillation. outputPath may be empty, in which case
// the default ".mindprint" subdirectory of sourcePath is used.
//
// Returns an error wrapping [ErrInputMissing] when neither input file
// exists; in that case nothing has been created on disk.
func NewDistillation(ctx context.Context, sourcePath, outputPath string) (*Distillation, error) {
	if outputPath == "" {
		outputPath = filepath.Join(sourcePath, OutputDir)
	}

	memoryFile := filepath.Join(sourcePath, MemoryFile)
	historyFile := filepath.Join(sourcePath, HistoryFile)

	// A read error on an existing file is fatal even when the other input
	// reads fine: distilling half the input would silently skew the profile.
	memoryContent, memErr := os.ReadFile(memoryFile)
	if memErr != nil && !os.IsNotExist(memErr) {
		return nil, fmt.Errorf("failed to read %s: %w", memoryFile, memErr)
	}
	historyContent, histErr := os.ReadFile(historyFile)
	if histErr != nil && !os.IsNotExist(histErr) {
		return nil, fmt.Errorf("failed to read %s: %w", historyFile, histErr)
	}
	if memErr != nil && histErr != nil {
		return nil, fmt.Errorf("%w in %s", ErrInputMissing, sourcePath)
	}

	combined := fmt.Sprintf("# Memory\n\n%s\n\n# History\n\n%s", memoryContent, historyContent)

	d := &Distillation{
		TraceID:    uuid.New().String(),
		SourcePath: sourcePath,
		OutputPath: outputPath,
		ReadAt:     time.Now(),
		CreatedAt:  time.Now(),
		raw:        combined,
		redactions: make(map[string]int),
	}

	capitan.Emit(ctx, DistillationStarted,
		FieldTraceID.Field(d.TraceID),
		FieldSourcePath.Field(d.SourcePath),
		FieldOutputPath.Field(d.OutputPath),
		FieldInputSize.Field(len(d.raw)),
	)

	return d, nil
}

// RawText returns the combined input text as read from disk.
func (d *Distillation) RawText() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.raw
}

// RedactedText returns the text after rule-set substitution. Empty until
// the redact stage has run.
func (d *Distillation) RedactedText() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.redacted
}

// Redactions returns a copy of the per-rule match counts recorded by the
// redact stage.
func (d *Distillation) Redactions() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	counts := make(map[string]int, len(d.redactions))
	for k, v := range d.redactions {
		counts[k] = v
	}
	return counts
}

// RedactionSummary formats the non-zero redaction counts as
// "email=2, url=1", ordered by rule name. Empty when nothing was masked.
func (d *Distillation) RedactionSummary() string {
	counts := d.Redactions()

	names := make([]string, 0, len(counts))
	for name, n := range counts {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}
	return strings.Join(parts, ", ")
}

// Sentences returns the extracted sentence units in source order.
func (d *Distillation) Sentences() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sentences := make([]string, len(d.sentences))
	copy(sentences, d.sentences)
	return sentences
}

// Signals returns the signal vector and whether the score stage has run.
// The vector must not be read before scoring completes.
func (d *Distillation) Signals() (SignalVector, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.signals, d.scored
}

// Traits returns the trait profile and whether the mapping stage has run.
func (d *Distillation) Traits() (TraitProfile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.traits, d.mapped
}

// Artifact returns the assembled cognition artifact, or nil before the
// write stage has run.
func (d *Distillation) Artifact() *CognitionArtifact {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.artifact
}

func (d *Distillation) setRedacted(text string, counts map[string]int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.redacted = text
	d.redactions = counts
}

func (d *Distillation) setSentences(sentences []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sentences = sentences
}

func (d *Distillation) setSignals(v SignalVector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signals = v
	d.scored = true
}

func (d *Distillation) setTraits(p TraitProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.traits = p
	d.mapped = true
}

func (d *Distillation) setArtifact(a *CognitionArtifact) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.artifact = a
}

// Clone creates a deep copy of the distillation for concurrent processing.
// Required for pipz.Concurrent and other parallel operations.
func (d *Distillation) Clone() *Distillation {
	d.mu.RLock()
	defer d.mu.RUnlock()

	clone := &Distillation{
		TraceID:    d.TraceID,
		SourcePath: d.SourcePath,
		OutputPath: d.OutputPath,
		ReadAt:     d.ReadAt,
		CreatedAt:  d.CreatedAt,
		raw:        d.raw,
		redacted:   d.redacted,
		redactions: make(map[string]int, len(d.redactions)),
		sentences:  make([]string, len(d.sentences)),
		signals:    d.signals,
		scored:     d.scored,
		traits:     d.traits,
		mapped:     d.mapped,
	}

	for k, v := range d.redactions {
		clone.redactions[k] = v
	}
	copy(clone.sentences, d.sentences)

	if d.artifact != nil {
		artifact := *d.artifact
		clone.artifact = &artifact
	}

	return clone
}

// Compile-time check: *Distillation must implement pipz.Cloner[*Distillation].
var _ interface{ Clone() *Distillation } = (*Distillation)(nil)

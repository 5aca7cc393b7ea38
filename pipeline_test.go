package mindprint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMemory = `We should compare the two queue brokers before picking one.
Why does the old importer keep timing out under load?
The system architecture needs a clearer module boundary.
Contact a@b.com or visit http://x.com for the vendor docs.
Maybe the retry policy is wrong, not sure the backoff helps.`

const sampleHistory = `Compared the costs again and the managed broker wins on every axis.
We need to implement the ingestion worker and ship it this sprint.
What could go wrong if the replica lags during the cutover window?`

func TestDistillEndToEnd(t *testing.T) {
	dir := writeSource(t, sampleMemory, sampleHistory)

	status, err := Distill(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outDir := filepath.Join(dir, OutputDir)
	viewPath := filepath.Join(outDir, ArtifactViewFile)

	if !strings.HasPrefix(status, "✓ Cognition distilled to "+viewPath) {
		t.Errorf("unexpected status: %q", status)
	}
	if !strings.Contains(status, "Redacted: email=1, url=1") {
		t.Errorf("status must carry the redaction summary: %q", status)
	}

	encoded, err := os.ReadFile(filepath.Join(outDir, ArtifactJSONFile))
	if err != nil {
		t.Fatalf("structured artifact missing: %v", err)
	}
	artifact, err := DecodeArtifact(encoded)
	if err != nil {
		t.Fatalf("artifact does not decode: %v", err)
	}
	if artifact.Version != ModelVersion {
		t.Errorf("unexpected version: %q", artifact.Version)
	}
	if artifact.Signals.Comparison == 0 || artifact.Signals.WhyQuestions == 0 {
		t.Errorf("expected comparison and why signals, got %+v", artifact.Signals)
	}

	rendered, err := os.ReadFile(viewPath)
	if err != nil {
		t.Fatalf("rendered view missing: %v", err)
	}
	if !strings.HasPrefix(string(rendered), "# Cognition Profile") {
		t.Error("rendered view missing heading")
	}

	logData, err := os.ReadFile(filepath.Join(outDir, ProvenanceLogFile))
	if err != nil {
		t.Fatalf("provenance log missing: %v", err)
	}
	if !strings.Contains(string(logData), " - Cognition distilled") {
		t.Errorf("unexpected provenance entry: %q", string(logData))
	}
}

func TestDistillInputMissing(t *testing.T) {
	dir := t.TempDir()

	status, err := Distill(context.Background(), dir)
	if err == nil {
		t.Fatal("expected error for empty source location")
	}
	if !errors.Is(err, ErrInputMissing) {
		t.Errorf("error must wrap ErrInputMissing, got %v", err)
	}
	if !strings.HasPrefix(status, "Error: ") {
		t.Errorf("failure status must be readable, got %q", status)
	}
	if !strings.Contains(status, dir) {
		t.Errorf("status must name the searched location: %q", status)
	}

	// The failed run leaves no trace on disk.
	if _, statErr := os.Stat(filepath.Join(dir, OutputDir)); !os.IsNotExist(statErr) {
		t.Error("output location must not be created for a failed read")
	}
}

func TestDistillNoRedactions(t *testing.T) {
	dir := writeSource(t, "a perfectly clean note about module boundaries.", "")

	status, err := Distill(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(status, "Redacted:") {
		t.Errorf("clean input must not report redactions: %q", status)
	}
}

func TestDistillIsRepeatable(t *testing.T) {
	dir := writeSource(t, sampleMemory, sampleHistory)

	if _, err := Distill(context.Background(), dir); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(dir, OutputDir, ArtifactJSONFile))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Distill(context.Background(), dir); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, OutputDir, ArtifactJSONFile))
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("identical input must produce identical artifacts:\nfirst:  %s\nsecond: %s", first, second)
	}

	logData, err := os.ReadFile(filepath.Join(dir, OutputDir, ProvenanceLogFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(logData), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 provenance lines after 2 runs, got %d", len(lines))
	}
}

func TestDistillWithOutput(t *testing.T) {
	dir := writeSource(t, sampleMemory, "")
	out := filepath.Join(t.TempDir(), "custom-out")

	status, err := Distill(context.Background(), dir, WithOutput(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(status, filepath.Join(out, ArtifactViewFile)) {
		t.Errorf("status must name the custom location: %q", status)
	}
	if _, err := os.Stat(filepath.Join(out, ArtifactJSONFile)); err != nil {
		t.Errorf("artifact missing from custom location: %v", err)
	}
}

func TestDistillSyncsThroughGateway(t *testing.T) {
	dir := writeSource(t, sampleMemory, sampleHistory)
	gw := newMockGateway()

	if _, err := Distill(context.Background(), dir, WithSyncGateway(gw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.jsonCalls) != 1 || len(gw.fileCalls) != 1 {
		t.Errorf("gateway not exercised: json=%d file=%d", len(gw.jsonCalls), len(gw.fileCalls))
	}
}

func TestDistillSucceedsDespiteSyncFailure(t *testing.T) {
	dir := writeSource(t, sampleMemory, sampleHistory)
	gw := newMockGateway()
	gw.connected = false

	status, err := Distill(context.Background(), dir, WithSyncGateway(gw))
	if err != nil {
		t.Fatalf("sync failure must not fail the run: %v", err)
	}
	if !strings.HasPrefix(status, "✓ Cognition distilled") {
		t.Errorf("unexpected status: %q", status)
	}

	outDir := filepath.Join(dir, OutputDir)
	if _, err := os.Stat(filepath.Join(outDir, ArtifactJSONFile)); err != nil {
		t.Errorf("local artifact missing: %v", err)
	}
	logData, err := os.ReadFile(filepath.Join(outDir, SyncLogFile))
	if err != nil {
		t.Fatalf("sync log missing: %v", err)
	}
	if !strings.Contains(string(logData), "sync failed:") {
		t.Errorf("unexpected sync log: %q", string(logData))
	}
}

func TestDistillWithRuleSet(t *testing.T) {
	dir := writeSource(t, "Contact a@b.com or visit http://x.com for details.", "")

	rules := DefaultRules()
	rules.Redactions = rules.Redactions[:1] // email only

	status, err := Distill(context.Background(), dir, WithRuleSet(rules))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(status, "Redacted: email=1") || strings.Contains(status, "url=") {
		t.Errorf("custom rule set not honored: %q", status)
	}
}

func TestListPatterns(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"alpha", "beta/nested"} {
		dir := filepath.Join(root, name)
		src := writeSource(t, sampleMemory, "")
		if _, err := Distill(context.Background(), src, WithOutput(filepath.Join(dir, OutputDir))); err != nil {
			t.Fatalf("seeding %s: %v", name, err)
		}
	}

	report, err := ListPatterns(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(report, "Found 2 cognition pattern(s):") {
		t.Errorf("unexpected report header: %q", report)
	}
	if !strings.Contains(report, filepath.Join(root, "alpha", OutputDir, ArtifactViewFile)) {
		t.Errorf("alpha artifact missing from report: %q", report)
	}
	if !strings.Contains(report, "Size: ") || !strings.Contains(report, "Lines: ") {
		t.Errorf("report missing size details: %q", report)
	}
}

func TestListPatternsEmpty(t *testing.T) {
	root := t.TempDir()

	report, err := ListPatterns(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report != "No cognition patterns found in "+root {
		t.Errorf("unexpected report: %q", report)
	}
}

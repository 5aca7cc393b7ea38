package mindprint

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
)

// writtenDistillation builds a distillation that has passed the write
// stage: artifact recorded and output location on disk.
func writtenDistillation(t *testing.T) *Distillation {
	t.Helper()
	d := scoredDistillation(t)

	stage := NewWriteArtifact("write_artifact")
	if _, err := stage.Process(context.Background(), d); err != nil {
		t.Fatalf("write stage: %v", err)
	}
	return d
}

func readSyncLog(t *testing.T, d *Distillation) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(d.OutputPath, SyncLogFile))
	if err != nil {
		t.Fatalf("sync log not written: %v", err)
	}
	return string(data)
}

func TestSyncPushesBothFiles(t *testing.T) {
	d := writtenDistillation(t)
	gw := newMockGateway()

	stage := NewSync("sync_artifact").WithGateway(gw)
	if _, err := stage.Process(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gw.testCalls != 1 {
		t.Errorf("connection must be tested exactly once, got %d", gw.testCalls)
	}
	if len(gw.jsonCalls) != 1 || len(gw.fileCalls) != 1 {
		t.Fatalf("expected one call per file, got json=%d file=%d",
			len(gw.jsonCalls), len(gw.fileCalls))
	}

	if want := path.Join(OutputDir, ArtifactJSONFile); gw.jsonCalls[0].path != want {
		t.Errorf("json path %q, want %q", gw.jsonCalls[0].path, want)
	}
	if want := path.Join(OutputDir, ArtifactViewFile); gw.fileCalls[0].path != want {
		t.Errorf("view path %q, want %q", gw.fileCalls[0].path, want)
	}

	if _, err := DecodeArtifact([]byte(gw.jsonCalls[0].content)); err != nil {
		t.Errorf("pushed json does not decode: %v", err)
	}
	if !strings.HasPrefix(gw.fileCalls[0].content, "# Cognition Profile") {
		t.Errorf("pushed view missing heading")
	}

	if _, err := os.Stat(filepath.Join(d.OutputPath, SyncLogFile)); !os.IsNotExist(err) {
		t.Error("successful sync must not create the sync log")
	}
}

func TestSyncConnectionTestRunsFirst(t *testing.T) {
	d := writtenDistillation(t)
	gw := newMockGateway()
	gw.connected = false

	stage := NewSync("sync_artifact").WithGateway(gw)
	if _, err := stage.Process(context.Background(), d); err != nil {
		t.Fatalf("sync failure must not surface: %v", err)
	}

	if len(gw.jsonCalls) != 0 || len(gw.fileCalls) != 0 {
		t.Error("no sync call may run after a failed connection test")
	}

	log := readSyncLog(t, d)
	if !strings.Contains(log, "connection test failed") {
		t.Errorf("failure not recorded: %q", log)
	}
	if !strings.Contains(log, gw.InstallID()) {
		t.Errorf("failure line must name the install, got %q", log)
	}
}

func TestSyncFailureIsSwallowed(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*mockGateway)
		wantInLog string
	}{
		{
			name:      "json sync error",
			configure: func(m *mockGateway) { m.jsonErr = errors.New("remote rejected payload") },
			wantInLog: "remote rejected payload",
		},
		{
			name:      "file sync error",
			configure: func(m *mockGateway) { m.fileErr = errors.New("remote timeout") },
			wantInLog: "remote timeout",
		},
		{
			name:      "panic during connection test",
			configure: func(m *mockGateway) { m.panicOn = "test" },
			wantInLog: "gateway panic",
		},
		{
			name:      "panic during sync",
			configure: func(m *mockGateway) { m.panicOn = "json" },
			wantInLog: "gateway panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := writtenDistillation(t)
			gw := newMockGateway()
			tt.configure(gw)

			stage := NewSync("sync_artifact").WithGateway(gw)
			result, err := stage.Process(context.Background(), d)
			if err != nil {
				t.Fatalf("sync failure must not surface: %v", err)
			}

			log := readSyncLog(t, d)
			if !strings.Contains(log, "sync failed:") {
				t.Errorf("log missing failure marker: %q", log)
			}
			if !strings.Contains(log, tt.wantInLog) {
				t.Errorf("log missing %q: %q", tt.wantInLog, log)
			}

			// The local artifact survives every remote failure.
			if result.Artifact() == nil {
				t.Error("artifact lost after failed sync")
			}
			if _, err := os.Stat(filepath.Join(d.OutputPath, ArtifactJSONFile)); err != nil {
				t.Errorf("local artifact rolled back: %v", err)
			}
		})
	}
}

func TestSyncJSONErrorSkipsFilePush(t *testing.T) {
	d := writtenDistillation(t)
	gw := newMockGateway()
	gw.jsonErr = errors.New("boom")

	stage := NewSync("sync_artifact").WithGateway(gw)
	if _, err := stage.Process(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.fileCalls) != 0 {
		t.Error("file push must not run after a failed json push")
	}
}

func TestSyncSkippedWithoutGateway(t *testing.T) {
	SetGateway(nil)

	d := writtenDistillation(t)

	stage := NewSync("sync_artifact")
	if _, err := stage.Process(context.Background(), d); err != nil {
		t.Fatalf("missing gateway must not be an error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(d.OutputPath, SyncLogFile)); !os.IsNotExist(err) {
		t.Error("skipped sync must not touch the sync log")
	}
}

func TestSyncRequiresArtifact(t *testing.T) {
	d := distillationWithRaw(t, "")

	stage := NewSync("sync_artifact").WithGateway(newMockGateway())
	if _, err := stage.Process(context.Background(), d); err == nil {
		t.Fatal("sync before write is a composition bug and must error")
	}
}

func TestSyncResolvesContextGateway(t *testing.T) {
	d := writtenDistillation(t)
	gw := newMockGateway()

	ctx := WithGateway(context.Background(), gw)

	stage := NewSync("sync_artifact")
	if _, err := stage.Process(ctx, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.jsonCalls) != 1 {
		t.Error("context gateway was not used")
	}
}

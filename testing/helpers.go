// Package mindprinttest provides test utilities for mindprint.
package mindprinttest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/zoobzio/mindprint"
)

// MockGateway implements mindprint.Gateway for testing without a database.
// It records every pushed file in memory and can be configured to refuse
// connections or fail pushes.
type MockGateway struct {
	mu sync.RWMutex

	// Refuse, when true, makes TestConnection report the store as
	// unreachable.
	Refuse bool

	// PushErr, when non-nil, is returned from every sync call.
	PushErr error

	files map[string]string
}

// NewMockGateway creates a new in-memory mock for mindprint.Gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		files: make(map[string]string),
	}
}

// TestConnection reports the configured reachability.
func (m *MockGateway) TestConnection(_ context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.Refuse
}

// SyncCognitionJSON records the structured artifact push.
func (m *MockGateway) SyncCognitionJSON(_ context.Context, path, content string) error {
	return m.record(path, content)
}

// SyncCognitionFile records the rendered view push.
func (m *MockGateway) SyncCognitionFile(_ context.Context, path, content string) error {
	return m.record(path, content)
}

// InstallID returns a fixed identifier.
func (m *MockGateway) InstallID() string {
	return "mindprinttest"
}

func (m *MockGateway) record(path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PushErr != nil {
		return m.PushErr
	}
	m.files[path] = content
	return nil
}

// File returns the last content pushed for path.
func (m *MockGateway) File(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	return content, ok
}

// Files returns the number of distinct paths pushed so far.
func (m *MockGateway) Files() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// WriteWorkspace creates a temp source location holding memory and history
// documents. Empty content skips that file.
func WriteWorkspace(t testing.TB, memory, history string) string {
	t.Helper()

	dir := t.TempDir()
	if memory != "" {
		if err := os.WriteFile(filepath.Join(dir, mindprint.MemoryFile), []byte(memory), 0o644); err != nil {
			t.Fatalf("failed to write memory document: %v", err)
		}
	}
	if history != "" {
		if err := os.WriteFile(filepath.Join(dir, mindprint.HistoryFile), []byte(history), 0o644); err != nil {
			t.Fatalf("failed to write history document: %v", err)
		}
	}
	return dir
}

// ReadArtifact loads and decodes the structured artifact from an output
// location populated by a distillation run.
func ReadArtifact(t testing.TB, outputPath string) *mindprint.CognitionArtifact {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(outputPath, mindprint.ArtifactJSONFile))
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	artifact, err := mindprint.DecodeArtifact(data)
	if err != nil {
		t.Fatalf("failed to decode artifact: %v", err)
	}
	return artifact
}

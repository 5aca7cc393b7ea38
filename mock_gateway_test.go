package mindprint

import (
	"context"
	"sync"
)

// mockGateway implements Gateway for testing with configurable behavior
// and call recording.
type mockGateway struct {
	mu sync.Mutex

	// Behavior configuration
	connected bool
	jsonErr   error
	fileErr   error
	panicOn   string // "test", "json", or "file"

	// Call recording
	testCalls int
	jsonCalls []syncCall
	fileCalls []syncCall
}

type syncCall struct {
	path    string
	content string
}

func newMockGateway() *mockGateway {
	return &mockGateway{connected: true}
}

func (m *mockGateway) TestConnection(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.testCalls++
	if m.panicOn == "test" {
		panic("gateway exploded during connection test")
	}
	return m.connected
}

func (m *mockGateway) SyncCognitionJSON(ctx context.Context, path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOn == "json" {
		panic("gateway exploded during json sync")
	}
	m.jsonCalls = append(m.jsonCalls, syncCall{path, content})
	return m.jsonErr
}

func (m *mockGateway) SyncCognitionFile(ctx context.Context, path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOn == "file" {
		panic("gateway exploded during file sync")
	}
	m.fileCalls = append(m.fileCalls, syncCall{path, content})
	return m.fileErr
}

func (m *mockGateway) InstallID() string {
	return "mock-install-1"
}

package mindprint

import (
	"context"
	"errors"
	"sync"
)

// Gateway defines the capability surface required from the external store
// used for best-effort artifact replication. The pipeline calls
// TestConnection before any sync call; sync outcomes never affect the
// locally written artifact.
type Gateway interface {
	// TestConnection reports whether the remote store is reachable.
	TestConnection(ctx context.Context) bool

	// SyncCognitionJSON replicates the structured artifact encoding.
	SyncCognitionJSON(ctx context.Context, path, content string) error

	// SyncCognitionFile replicates the rendered artifact view.
	SyncCognitionFile(ctx context.Context, path, content string) error

	// InstallID returns the stable installation/hardware identifier
	// under which replicated files are recorded.
	InstallID() string
}

// Context key for gateway.
type gatewayKeyType struct{}

var gatewayKey = gatewayKeyType{}

// Global gateway fallback.
var (
	globalGateway   Gateway
	globalGatewayMu sync.RWMutex
)

// ErrNoGateway is returned when no gateway can be resolved. The sync stage
// treats this as "gateway omitted" and skips replication entirely.
var ErrNoGateway = errors.New("no gateway configured: set via context, step-level, or global")

// SetGateway sets the global fallback gateway.
// This gateway is used when no context or step-level gateway is available.
func SetGateway(g Gateway) {
	globalGatewayMu.Lock()
	defer globalGatewayMu.Unlock()
	globalGateway = g
}

// GetGateway returns the global gateway, if set.
func GetGateway() Gateway {
	globalGatewayMu.RLock()
	defer globalGatewayMu.RUnlock()
	return globalGateway
}

// WithGateway adds a gateway to the context.
// This is the preferred method for gateway management.
func WithGateway(ctx context.Context, g Gateway) context.Context {
	return context.WithValue(ctx, gatewayKey, g)
}

// GatewayFromContext retrieves the gateway from context, if present.
func GatewayFromContext(ctx context.Context) (Gateway, bool) {
	g, ok := ctx.Value(gatewayKey).(Gateway)
	return g, ok
}

// ResolveGateway determines which gateway to use based on resolution order:
// 1. Step-level gateway (passed as argument)
// 2. Context gateway
// 3. Global gateway
// 4. ErrNoGateway if none found.
func ResolveGateway(ctx context.Context, stepGateway Gateway) (Gateway, error) {
	// 1. Step-level gateway takes highest priority
	if stepGateway != nil {
		return stepGateway, nil
	}

	// 2. Context gateway
	if g, ok := GatewayFromContext(ctx); ok {
		return g, nil
	}

	// 3. Global gateway
	globalGatewayMu.RLock()
	g := globalGateway
	globalGatewayMu.RUnlock()

	if g != nil {
		return g, nil
	}

	// 4. No gateway found
	return nil, ErrNoGateway
}

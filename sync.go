package mindprint

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Sync is the fire-and-forget replication stage. It implements
// pipz.Chainable[*Distillation].
//
// The stage resolves a [Gateway], calls TestConnection first, and pushes
// the two artifact files. Every failure path - no gateway, negative
// connection test, sync call error, even a panic inside the gateway - is
// recorded in the sync log and swallowed: the locally written artifact is
// never rolled back and the distillation never fails because of sync.
type Sync struct {
	key     string
	gateway Gateway
}

// NewSync creates a new sync stage.
//
// Example:
//
//	stage := mindprint.NewSync("sync_artifact").WithGateway(gateway)
//	result, _ := stage.Process(ctx, distillation)
func NewSync(key string) *Sync {
	return &Sync{key: key}
}

// Process implements pipz.Chainable[*Distillation].
func (s *Sync) Process(ctx context.Context, d *Distillation) (*Distillation, error) {
	start := time.Now()

	artifact := d.Artifact()
	if artifact == nil {
		err := fmt.Errorf("sync: artifact has not been written")
		capitan.Error(ctx, StageFailed,
			FieldTraceID.Field(d.TraceID),
			FieldStageName.Field(s.key),
			FieldStageType.Field("sync"),
			FieldError.Field(err),
		)
		return d, err
	}

	gateway, err := ResolveGateway(ctx, s.gateway)
	if err != nil {
		// Gateway omitted: local persistence already succeeded, nothing to do.
		capitan.Emit(ctx, SyncSkipped,
			FieldTraceID.Field(d.TraceID),
			FieldStageName.Field(s.key),
			FieldStageType.Field("sync"),
		)
		return d, nil
	}

	capitan.Emit(ctx, StageStarted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("sync"),
	)

	if syncErr := s.push(ctx, d, artifact, gateway); syncErr != nil {
		s.logFailure(ctx, d, syncErr)
		capitan.Error(ctx, SyncFailed,
			FieldTraceID.Field(d.TraceID),
			FieldStageName.Field(s.key),
			FieldStageDuration.Field(time.Since(start)),
			FieldError.Field(syncErr),
		)
		return d, nil
	}

	capitan.Emit(ctx, SyncCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageDuration.Field(time.Since(start)),
	)
	capitan.Emit(ctx, StageCompleted,
		FieldTraceID.Field(d.TraceID),
		FieldStageName.Field(s.key),
		FieldStageType.Field("sync"),
		FieldStageDuration.Field(time.Since(start)),
	)

	return d, nil
}

// push runs the connection test and the two sync calls. A panic inside
// the gateway is converted to an error so no fault escapes the stage.
func (s *Sync) push(ctx context.Context, d *Distillation, artifact *CognitionArtifact, gateway Gateway) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()

	if !gateway.TestConnection(ctx) {
		return fmt.Errorf("connection test failed (install %s)", gateway.InstallID())
	}

	encoded, err := EncodeArtifact(artifact)
	if err != nil {
		return fmt.Errorf("encode for sync: %w", err)
	}

	jsonPath := path.Join(OutputDir, ArtifactJSONFile)
	viewPath := path.Join(OutputDir, ArtifactViewFile)

	if err := gateway.SyncCognitionJSON(ctx, jsonPath, string(encoded)); err != nil {
		return fmt.Errorf("sync %s: %w", jsonPath, err)
	}
	if err := gateway.SyncCognitionFile(ctx, viewPath, artifact.Render()); err != nil {
		return fmt.Errorf("sync %s: %w", viewPath, err)
	}

	return nil
}

// logFailure appends a failure line to the sync log. Log errors are
// themselves swallowed: the sync channel must never fail the operation.
func (s *Sync) logFailure(ctx context.Context, d *Distillation, syncErr error) {
	line := fmt.Sprintf("%s - sync failed: %v", time.Now().Format(time.RFC3339), syncErr)

	mu := lockOutput(d.OutputPath)
	mu.Lock()
	defer mu.Unlock()

	if err := appendLogLine(d.OutputPath, SyncLogFile, line); err != nil {
		capitan.Error(ctx, SyncFailed,
			FieldTraceID.Field(d.TraceID),
			FieldStageName.Field(s.key),
			FieldError.Field(err),
		)
	}
}

// Name implements pipz.Chainable[*Distillation].
func (s *Sync) Name() pipz.Name {
	return pipz.Name(s.key)
}

// Close implements pipz.Chainable[*Distillation].
func (s *Sync) Close() error {
	return nil
}

// WithGateway sets the gateway for this stage.
// This takes precedence over context and global gateways.
func (s *Sync) WithGateway(g Gateway) *Sync {
	s.gateway = g
	return s
}

package mindprint

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// MemoryRecord mirrors the collaborator store's memory_data table: one row
// per replicated artifact file per content hash.
type MemoryRecord struct {
	ID            string    `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	FilePath      string    `db:"file_path" type:"text" constraints:"notnull"`
	Content       string    `db:"content" type:"text" constraints:"notnull"`
	FileHash      string    `db:"file_hash" type:"text" constraints:"notnull"`
	UserID        string    `db:"user_id" type:"text" constraints:"notnull"`
	ScannedAt     time.Time `db:"scanned_at" type:"timestamp" constraints:"notnull"`
	ExtraMetadata string    `db:"extra_metadata" type:"jsonb" default:"'{}'"`
}

// SellerRecord mirrors the collaborator store's sellers table: one row per
// installation that replicates artifacts.
type SellerRecord struct {
	UserID         string    `db:"user_id" type:"text" constraints:"primarykey"`
	Hostname       string    `db:"hostname" type:"text"`
	OSName         string    `db:"os_name" type:"text"`
	OSVersion      string    `db:"os_version" type:"text"`
	OSArch         string    `db:"os_arch" type:"text"`
	RuntimeVersion string    `db:"runtime_version" type:"text"`
	InstallPath    string    `db:"install_path" type:"text"`
	FirstSeen      time.Time `db:"first_seen" type:"timestamp" constraints:"notnull"`
	LastSeen       time.Time `db:"last_seen" type:"timestamp" constraints:"notnull"`
	MetadataJSON   string    `db:"metadata_json" type:"jsonb" default:"'{}'"`
}

// SyncMetadata is the closed schema serialized into a memory record's
// extra_metadata column.
type SyncMetadata struct {
	ModelVersion string    `json:"model_version"`
	SyncedAt     time.Time `json:"synced_at"`
}

// InstallMetadata is the closed schema serialized into a seller record's
// metadata_json column.
type InstallMetadata struct {
	OS        string    `json:"os"`
	Arch      string    `json:"arch"`
	Node      string    `json:"node"`
	Timestamp time.Time `json:"timestamp"`
}

// SoyGateway implements Gateway using soy for PostgreSQL persistence.
// Artifact files are recorded in memory_data keyed by (file_path,
// file_hash); installation telemetry is registered in sellers before the
// first sync of a connection.
type SoyGateway struct {
	memories *soy.Soy[MemoryRecord]
	sellers  *soy.Soy[SellerRecord]
	db       *sqlx.DB

	installID    string
	registerOnce sync.Once
	registerErr  error
}

// NewSoyGateway creates a new soy-backed Gateway implementation.
func NewSoyGateway(db *sqlx.DB) (*SoyGateway, error) {
	renderer := postgres.New()

	memories, err := soy.New[MemoryRecord](db, "memory_data", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory_data table: %w", err)
	}

	sellers, err := soy.New[SellerRecord](db, "sellers", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sellers table: %w", err)
	}

	return &SoyGateway{
		memories:  memories,
		sellers:   sellers,
		db:        db,
		installID: hardwareID(),
	}, nil
}

// TestConnection reports whether the remote store answers a ping.
func (g *SoyGateway) TestConnection(ctx context.Context) bool {
	return g.db.PingContext(ctx) == nil
}

// InstallID returns the stable hardware-derived installation identifier.
func (g *SoyGateway) InstallID() string {
	return g.installID
}

// SyncCognitionJSON replicates the structured artifact encoding.
func (g *SoyGateway) SyncCognitionJSON(ctx context.Context, path, content string) error {
	return g.syncFile(ctx, path, content)
}

// SyncCognitionFile replicates the rendered artifact view.
func (g *SoyGateway) SyncCognitionFile(ctx context.Context, path, content string) error {
	return g.syncFile(ctx, path, content)
}

// syncFile registers the installation once per gateway, then upserts the
// file content keyed by (file_path, file_hash).
func (g *SoyGateway) syncFile(ctx context.Context, path, content string) error {
	g.registerOnce.Do(func() {
		g.registerErr = g.registerInstall(ctx)
	})
	if g.registerErr != nil {
		return fmt.Errorf("failed to register installation: %w", g.registerErr)
	}

	sum := md5.Sum([]byte(content))
	fileHash := hex.EncodeToString(sum[:])

	metadata, err := json.Marshal(SyncMetadata{
		ModelVersion: ModelVersion,
		SyncedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode sync metadata: %w", err)
	}

	existing, err := g.memories.Query().
		Where("file_path", "=", "file_path").
		Exec(ctx, map[string]any{"file_path": path})
	if err != nil {
		return fmt.Errorf("failed to query memory records: %w", err)
	}

	for _, record := range existing {
		if record.FileHash != fileHash {
			continue
		}
		_, err = g.memories.Modify().
			Set("content", "content").
			Set("scanned_at", "scanned_at").
			Set("extra_metadata", "extra_metadata").
			Where("id", "=", "id").
			Exec(ctx, map[string]any{
				"content":        content,
				"scanned_at":     time.Now().UTC(),
				"extra_metadata": string(metadata),
				"id":             record.ID,
			})
		if err != nil {
			return fmt.Errorf("failed to update memory record: %w", err)
		}
		return nil
	}

	_, err = g.memories.Insert().Exec(ctx, &MemoryRecord{
		FilePath:      path,
		Content:       content,
		FileHash:      fileHash,
		UserID:        g.installID,
		ScannedAt:     time.Now().UTC(),
		ExtraMetadata: string(metadata),
	})
	if err != nil {
		return fmt.Errorf("failed to insert memory record: %w", err)
	}
	return nil
}

// registerInstall upserts the installation telemetry row.
func (g *SoyGateway) registerInstall(ctx context.Context) error {
	hostname, _ := os.Hostname()
	installPath, _ := os.Getwd()
	now := time.Now().UTC()

	metadata, err := json.Marshal(InstallMetadata{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Node:      hostname,
		Timestamp: now,
	})
	if err != nil {
		return fmt.Errorf("failed to encode install metadata: %w", err)
	}

	existing, err := g.sellers.Query().
		Where("user_id", "=", "user_id").
		Exec(ctx, map[string]any{"user_id": g.installID})
	if err != nil {
		return fmt.Errorf("failed to query sellers: %w", err)
	}

	if len(existing) > 0 {
		_, err = g.sellers.Modify().
			Set("hostname", "hostname").
			Set("last_seen", "last_seen").
			Set("metadata_json", "metadata_json").
			Where("user_id", "=", "user_id").
			Exec(ctx, map[string]any{
				"hostname":      hostname,
				"last_seen":     now,
				"metadata_json": string(metadata),
				"user_id":       g.installID,
			})
		if err != nil {
			return fmt.Errorf("failed to update seller record: %w", err)
		}
		return nil
	}

	_, err = g.sellers.Insert().Exec(ctx, &SellerRecord{
		UserID:         g.installID,
		Hostname:       hostname,
		OSName:         runtime.GOOS,
		OSVersion:      osVersion(),
		OSArch:         runtime.GOARCH,
		RuntimeVersion: runtime.Version(),
		InstallPath:    installPath,
		FirstSeen:      now,
		LastSeen:       now,
		MetadataJSON:   string(metadata),
	})
	if err != nil {
		return fmt.Errorf("failed to insert seller record: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (g *SoyGateway) Close() error {
	return g.db.Close()
}

var _ Gateway = (*SoyGateway)(nil)

// osVersion returns the kernel release string, or the empty string on
// platforms that do not expose one.
func osVersion() string {
	data, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// hardwareID derives a stable 12-character installation identifier from
// the first non-loopback interface's MAC address, falling back to the
// hostname when no usable interface exists.
func hardwareID() string {
	if ifaces, err := net.Interfaces(); err == nil {
		for _, ifc := range ifaces {
			if ifc.Flags&net.FlagLoopback != 0 || len(ifc.HardwareAddr) == 0 {
				continue
			}
			sum := md5.Sum([]byte(ifc.HardwareAddr.String()))
			return hex.EncodeToString(sum[:])[:12]
		}
	}

	hostname, _ := os.Hostname()
	sum := md5.Sum([]byte(hostname))
	return hex.EncodeToString(sum[:])[:12]
}

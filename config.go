package mindprint

// ModelVersion identifies the pipeline revision baked into every artifact.
// Bump when redaction rules, keyword tables, or thresholds change.
const ModelVersion = "mindprint/1"

// Fixed file names consumed and produced by the pipeline.
const (
	// MemoryFile and HistoryFile are the two optional input documents
	// expected inside the source location. At least one must exist.
	MemoryFile  = "MEMORY.md"
	HistoryFile = "HISTORY.md"

	// OutputDir is the default output location, created inside the
	// source location when no explicit output path is supplied.
	OutputDir = ".mindprint"

	// ArtifactJSONFile holds the structured encoding (version, signals, traits).
	ArtifactJSONFile = "cognition.json"

	// ArtifactViewFile holds the rendered human-readable view.
	ArtifactViewFile = "cognition.md"

	// ProvenanceLogFile receives one line per completed distillation.
	ProvenanceLogFile = "distill.log"

	// SyncLogFile receives one line per failed or skipped sync attempt.
	SyncLogFile = "sync.log"
)

// MinSentenceLength is the exclusive lower bound on trimmed sentence
// length. Segments at or below this length are discarded by the extractor.
const MinSentenceLength = 20

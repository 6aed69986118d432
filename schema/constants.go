package schema

// Custom string types for type safety.
type (
	// ScoringMethod identifies how commit subjects were scored.
	ScoringMethod string

	// OutputMode represents the format of exported output.
	OutputMode string

	// FileKind classifies a changed path within a diff.
	FileKind string

	// DatabaseBackend represents the database backend for run history archival.
	DatabaseBackend string

	// ClassifierModel selects the remote classifier model tier.
	ClassifierModel string
)

// Cache format versions. Bumping a version discards entries written
// under the previous one on the next load.
const (
	ScoreCacheVersion    = 3
	DiffstatCacheVersion = 1
	EnrichCacheVersion   = 1
)

// Well-known file names resolved relative to the working directory.
const (
	ConfigFileName        = "config.json"
	DataFileName          = "data.json"
	HistoryFileName       = "history.json"
	ScoreCacheFileName    = "score_cache.json"
	DiffstatCacheFileName = "diffstat_cache.json"
	EnrichCacheFileName   = "enrich_cache.json"
)

// All scoring methods supported.
const (
	RegexMethod     ScoringMethod = "regex" // default
	LLMHaikuMethod  ScoringMethod = "llm_haiku"
	LLMSonnetMethod ScoringMethod = "llm_sonnet"
)

// All output modes supported by the export command.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All file kinds recognized by the diff classifier.
const (
	SourceKind FileKind = "source"
	TestKind   FileKind = "test"
	ConfigKind FileKind = "config"
	DocKind    FileKind = "doc"
	OtherKind  FileKind = "other"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All classifier model tiers supported.
const (
	HaikuModel  ClassifierModel = "haiku"
	SonnetModel ClassifierModel = "sonnet"
)

// ValidScoringMethods lists all valid scoring methods.
var ValidScoringMethods = map[ScoringMethod]struct{}{
	RegexMethod:     {},
	LLMHaikuMethod:  {},
	LLMSonnetMethod: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidClassifierModels maps each model tier to its API identifier.
var ValidClassifierModels = map[ClassifierModel]string{
	HaikuModel:  "claude-haiku-4-5-20251001",
	SonnetModel: "claude-sonnet-4-5-20250929",
}

// MethodForModel returns the scoring method recorded in history for a
// classifier model tier.
func MethodForModel(model ClassifierModel) ScoringMethod {
	switch model {
	case SonnetModel:
		return LLMSonnetMethod
	case HaikuModel:
		return LLMHaikuMethod
	default:
		return RegexMethod
	}
}

// SourceExtensions are path suffixes counted as source code.
var SourceExtensions = map[string]struct{}{
	".ts": {}, ".js": {}, ".py": {}, ".sh": {}, ".mjs": {},
	".cjs": {}, ".go": {}, ".rs": {}, ".tsx": {}, ".jsx": {},
}

// TestPatterns are substrings that mark a path as test code.
// Checked before source extensions so test files never count twice.
var TestPatterns = []string{".test.", ".spec.", "__tests__/", "test_", "_test."}

// ConfigExtensions are path suffixes counted as configuration.
var ConfigExtensions = map[string]struct{}{
	".json": {}, ".yml": {}, ".yaml": {}, ".toml": {},
	".ini": {}, ".cfg": {}, ".env": {},
}

// DocExtensions are path suffixes counted as documentation.
var DocExtensions = map[string]struct{}{
	".md": {}, ".txt": {}, ".rst": {},
}

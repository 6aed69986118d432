package contract

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/capcurve/capcurve/schema"
)

// Default values for configuration.
const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 8080
	DefaultDataDir = "."
	MaxPort        = 65535
)

// Config holds the runtime configuration for a scan.
// This struct remains the "final, validated" config.
type Config struct {
	DataDir        string // Absolute directory holding config, caches and reports
	ScanConfigPath string // Resolved path of the scan settings file

	// Scan settings resolved from the scan settings file.
	InceptionDate  time.Time
	ScanDirs       []string
	BroadScanRoot  string
	BroadScanDepth int
	SkipPatterns   []string

	// Scoring settings.
	Thresholds     schema.Thresholds
	Categories     map[string]schema.CategoryDef
	HighLevel      map[string]struct{}
	LowLevel       map[string]struct{}
	SmoothingAlpha float64

	// Enrichment settings.
	Enrich     bool
	Model      schema.ClassifierModel
	APIBaseURL string // Empty keeps the classifier client default
	SecretID   string // AWS Secrets Manager id for the API key, optional

	NoCache bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string

	// Server settings.
	Host        string
	Port        int
	StaticDir   string // Dashboard directory served at /
	TrustedRoot string // Directories accepted over PUT /api/config must resolve under this

	UseEmojis bool       // Enable emojis in output headers
	UseColors bool       // Enable colored labels in table output
	Width     int        // Terminal width override (0 = auto-detect)
	LogLevel  slog.Level // Minimum level for server-side structured logs

	Out io.Writer // Sink for scan progress output (nil = stdout)
}

// Progress returns the sink scan progress is written to.
func (c *Config) Progress() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	DataDir     string `mapstructure:"data-dir"`
	ScanConfig  string `mapstructure:"scan-config"`
	TrustedRoot string `mapstructure:"trusted-root"`
	Emoji       string `mapstructure:"emoji"`
	Color       string `mapstructure:"color"`
	Width       int    `mapstructure:"width"`
	LogLevel    string `mapstructure:"log-level"`

	// --- Fields from scanCmd.Flags() ---
	Enrich   string  `mapstructure:"enrich"`
	APIBase  string  `mapstructure:"api-base"`
	SecretID string  `mapstructure:"secret-id"`
	NoCache  bool    `mapstructure:"no-cache"`
	Alpha    float64 `mapstructure:"alpha"`

	// --- Fields from historyCmd / scanCmd ---
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from exportCmd.Flags() ---
	Output     string `mapstructure:"format"`
	OutputFile string `mapstructure:"out"`

	// --- Fields from serveCmd.Flags() ---
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static-dir"`
}

// ProcessAndValidate performs all parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := resolveDataPaths(cfg, input); err != nil {
		return err
	}
	if err := applyScanFile(cfg); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.NoCache = input.NoCache
	cfg.APIBaseURL = strings.TrimSpace(input.APIBase)
	cfg.SecretID = strings.TrimSpace(input.SecretID)
	cfg.HistoryDBConnect = input.HistoryDBConnect
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse server log level
	level := strings.TrimSpace(input.LogLevel)
	if level == "" {
		level = "info"
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level value %q: %w", input.LogLevel, err)
	}

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Enrichment Validation ---
	cfg.Enrich = false
	cfg.Model = ""
	if model := schema.ClassifierModel(strings.ToLower(input.Enrich)); model != "" {
		if _, ok := schema.ValidClassifierModels[model]; !ok {
			return fmt.Errorf("invalid enrichment model '%s'. must be haiku or sonnet", input.Enrich)
		}
		cfg.Enrich = true
		cfg.Model = model
	}

	// --- 2. Smoothing Validation ---
	if input.Alpha <= 0 || input.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1] (received %g)", input.Alpha)
	}
	cfg.SmoothingAlpha = input.Alpha

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 4. Server Validation ---
	cfg.Host = strings.TrimSpace(input.Host)
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if input.Port < 1 || input.Port > MaxPort {
		return fmt.Errorf("port must be between 1 and %d (received %d)", MaxPort, input.Port)
	}
	cfg.Port = input.Port

	// --- 5. Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// resolveDataPaths resolves the data directory and the paths hanging
// off it.
func resolveDataPaths(cfg *Config, input *ConfigRawInput) error {
	dataDir := input.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	abs, err := filepath.Abs(ExpandHome(dataDir))
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	abs = filepath.Clean(abs)
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("data dir %s is not accessible: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", abs)
	}
	cfg.DataDir = abs

	cfg.ScanConfigPath = input.ScanConfig
	if cfg.ScanConfigPath == "" {
		cfg.ScanConfigPath = filepath.Join(cfg.DataDir, schema.ConfigFileName)
	}

	cfg.StaticDir = input.StaticDir
	if cfg.StaticDir == "" {
		cfg.StaticDir = cfg.DataDir
	} else if cfg.StaticDir, err = filepath.Abs(ExpandHome(cfg.StaticDir)); err != nil {
		return fmt.Errorf("resolving static dir: %w", err)
	}

	cfg.TrustedRoot = input.TrustedRoot
	if cfg.TrustedRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = cfg.DataDir
		}
		cfg.TrustedRoot = home
	} else if cfg.TrustedRoot, err = filepath.Abs(ExpandHome(cfg.TrustedRoot)); err != nil {
		return fmt.Errorf("resolving trusted root: %w", err)
	}

	return nil
}

// applyScanFile loads the scan settings file and resolves every scan
// setting against the built-in defaults. A missing file keeps the
// defaults; a malformed one is a configuration error.
func applyScanFile(cfg *Config) error {
	var file schema.ScanFileConfig
	data, err := os.ReadFile(cfg.ScanConfigPath)
	switch {
	case os.IsNotExist(err):
		// Defaults apply.
	case err != nil:
		return fmt.Errorf("reading scan config %s: %w", cfg.ScanConfigPath, err)
	default:
		if err := json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parsing scan config %s: %w", cfg.ScanConfigPath, err)
		}
	}

	// --- 1. Goal ---
	inception := file.Goal.InceptionDate
	if inception == "" {
		inception = schema.DefaultInceptionDate
	}
	cfg.InceptionDate, err = schema.ParseISODate(inception)
	if err != nil {
		return fmt.Errorf("invalid inception_date %q: %w", inception, err)
	}

	// --- 2. Repository discovery ---
	cfg.ScanDirs = make([]string, 0, len(file.Repos.ScanDirs))
	for _, dir := range file.Repos.ScanDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			cfg.ScanDirs = append(cfg.ScanDirs, ExpandHome(dir))
		}
	}
	cfg.BroadScanRoot = ExpandHome(strings.TrimSpace(file.Repos.BroadScan.Root))
	cfg.BroadScanDepth = schema.DefaultBroadScanDepth
	if file.Repos.BroadScan.MaxDepth != nil {
		if *file.Repos.BroadScan.MaxDepth < 1 {
			return fmt.Errorf("broad_scan.max_depth must be at least 1 (received %d)", *file.Repos.BroadScan.MaxDepth)
		}
		cfg.BroadScanDepth = *file.Repos.BroadScan.MaxDepth
	}
	cfg.SkipPatterns = file.Repos.SkipPatterns

	// --- 3. Scoring thresholds ---
	cfg.Thresholds = file.Scoring.Resolve()

	// --- 4. Rubric ---
	if len(file.Rubric.Categories) > 0 {
		cfg.Categories = make(map[string]schema.CategoryDef, len(file.Rubric.Categories))
		for name, cat := range file.Rubric.Categories {
			weight := 1.0
			if cat.Weight != nil {
				weight = *cat.Weight
			}
			if weight <= 0 {
				return fmt.Errorf("rubric category %q: weight must be positive (received %g)", name, weight)
			}
			cfg.Categories[name] = schema.CategoryDef{Weight: weight, Patterns: cat.Patterns}
		}
	} else {
		cfg.Categories = schema.DefaultCategories()
	}
	if len(file.Rubric.HighLevelCategories) > 0 {
		cfg.HighLevel = stringSet(file.Rubric.HighLevelCategories)
	} else {
		cfg.HighLevel = schema.DefaultHighLevelCategories()
	}
	if len(file.Rubric.LowLevelCategories) > 0 {
		cfg.LowLevel = stringSet(file.Rubric.LowLevelCategories)
	} else {
		cfg.LowLevel = schema.DefaultLowLevelCategories()
	}

	return nil
}

// stringSet converts a list of names into a membership set.
func stringSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

package schema

// Built-in diffstat weighting defaults. Each one can be overridden per
// key from the scoring section of config.json.
const (
	defaultLargeSourceThreshold    = 100
	defaultMediumSourceThreshold   = 30
	defaultLargeSourceBonus        = 0.30
	defaultMediumSourceBonus       = 0.15
	defaultMajorNewFilesThreshold  = 3
	defaultMinorNewFilesThreshold  = 1
	defaultMajorNewFilesBonus      = 0.20
	defaultMinorNewFilesBonus      = 0.10
	defaultConfigOnlyMultiplier    = 0.8
	defaultDeletionHeavyThreshold  = 50
	defaultDeletionHeavyMultiplier = 0.85
	defaultMultiplierFloor         = 0.4
	defaultMultiplierCeiling       = 2.0
	defaultTestLinesThreshold      = 10
	defaultTestSafetyBonus         = 2.0
)

// Thresholds holds every knob of the diffstat weighting pass.
// Zero is a legal override for several of these, so the JSON layer
// uses pointer fields and resolves against DefaultThresholds.
type Thresholds struct {
	LargeSourceThreshold    int     // Source lines at or above which the large bonus applies
	MediumSourceThreshold   int     // Source lines at or above which the medium bonus applies
	LargeSourceBonus        float64 // Additive bonus for large source changes
	MediumSourceBonus       float64 // Additive bonus for medium source changes
	MajorNewFilesThreshold  int     // New files at or above which the major bonus applies
	MinorNewFilesThreshold  int     // New files at or above which the minor bonus applies
	MajorNewFilesBonus      float64 // Additive bonus for major file creation
	MinorNewFilesBonus      float64 // Additive bonus for minor file creation
	ConfigOnlyMultiplier    float64 // Dampening factor for config-only commits
	DeletionHeavyThreshold  int     // Deleted lines beyond added before dampening
	DeletionHeavyMultiplier float64 // Dampening factor for deletion-heavy commits
	MultiplierFloor         float64 // Lower clamp on the combined multiplier
	MultiplierCeiling       float64 // Upper clamp on the combined multiplier
	TestLinesThreshold      int     // Test lines at or above which the safety bonus applies
	TestSafetyBonus         float64 // Flat points added to the safety category
}

// DefaultThresholds returns the built-in diffstat weighting thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LargeSourceThreshold:    defaultLargeSourceThreshold,
		MediumSourceThreshold:   defaultMediumSourceThreshold,
		LargeSourceBonus:        defaultLargeSourceBonus,
		MediumSourceBonus:       defaultMediumSourceBonus,
		MajorNewFilesThreshold:  defaultMajorNewFilesThreshold,
		MinorNewFilesThreshold:  defaultMinorNewFilesThreshold,
		MajorNewFilesBonus:      defaultMajorNewFilesBonus,
		MinorNewFilesBonus:      defaultMinorNewFilesBonus,
		ConfigOnlyMultiplier:    defaultConfigOnlyMultiplier,
		DeletionHeavyThreshold:  defaultDeletionHeavyThreshold,
		DeletionHeavyMultiplier: defaultDeletionHeavyMultiplier,
		MultiplierFloor:         defaultMultiplierFloor,
		MultiplierCeiling:       defaultMultiplierCeiling,
		TestLinesThreshold:      defaultTestLinesThreshold,
		TestSafetyBonus:         defaultTestSafetyBonus,
	}
}

// DefaultInceptionDate is the ISO date the month grid starts from when
// config.json does not pin one.
const DefaultInceptionDate = "2025-06-30"

// DefaultBroadScanDepth bounds the recursive repository walk when
// config.json does not pin one.
const DefaultBroadScanDepth = 4

// ScanFileConfig mirrors the optional config.json file on disk.
// Absent sections keep the built-in defaults.
type ScanFileConfig struct {
	Goal    GoalConfig    `json:"goal"`
	Repos   ReposConfig   `json:"repos"`
	Scoring ScoringConfig `json:"scoring"`
	Rubric  RubricConfig  `json:"rubric"`
}

// GoalConfig pins the project timeline.
type GoalConfig struct {
	InceptionDate string `json:"inception_date"` // ISO date the month grid starts from
}

// ReposConfig controls repository discovery.
type ReposConfig struct {
	ScanDirs     []string        `json:"scan_dirs"`     // Explicit repository paths, ~ expanded
	BroadScan    BroadScanConfig `json:"broad_scan"`    // Recursive discovery settings
	SkipPatterns []string        `json:"skip_patterns"` // Substrings that exclude a discovered path
}

// BroadScanConfig bounds the recursive repository walk.
type BroadScanConfig struct {
	Root     string `json:"root"`      // Directory to walk for nested repositories
	MaxDepth *int   `json:"max_depth"` // Walk depth limit, nil keeps the default
}

// ScoringConfig carries per-threshold overrides. Pointers distinguish
// "absent" from an explicit zero.
type ScoringConfig struct {
	LargeSourceThreshold    *int     `json:"large_source_threshold"`
	MediumSourceThreshold   *int     `json:"medium_source_threshold"`
	LargeSourceBonus        *float64 `json:"large_source_bonus"`
	MediumSourceBonus       *float64 `json:"medium_source_bonus"`
	MajorNewFilesThreshold  *int     `json:"major_new_files_threshold"`
	MinorNewFilesThreshold  *int     `json:"minor_new_files_threshold"`
	MajorNewFilesBonus      *float64 `json:"major_new_files_bonus"`
	MinorNewFilesBonus      *float64 `json:"minor_new_files_bonus"`
	ConfigOnlyMultiplier    *float64 `json:"config_only_multiplier"`
	DeletionHeavyThreshold  *int     `json:"deletion_heavy_threshold"`
	DeletionHeavyMultiplier *float64 `json:"deletion_heavy_multiplier"`
	MultiplierFloor         *float64 `json:"multiplier_floor"`
	MultiplierCeiling       *float64 `json:"multiplier_ceiling"`
	TestLinesThreshold      *int     `json:"test_lines_threshold"`
	TestSafetyBonus         *float64 `json:"test_safety_bonus"`
}

// Resolve merges the overrides onto the built-in thresholds.
func (s ScoringConfig) Resolve() Thresholds {
	t := DefaultThresholds()
	if s.LargeSourceThreshold != nil {
		t.LargeSourceThreshold = *s.LargeSourceThreshold
	}
	if s.MediumSourceThreshold != nil {
		t.MediumSourceThreshold = *s.MediumSourceThreshold
	}
	if s.LargeSourceBonus != nil {
		t.LargeSourceBonus = *s.LargeSourceBonus
	}
	if s.MediumSourceBonus != nil {
		t.MediumSourceBonus = *s.MediumSourceBonus
	}
	if s.MajorNewFilesThreshold != nil {
		t.MajorNewFilesThreshold = *s.MajorNewFilesThreshold
	}
	if s.MinorNewFilesThreshold != nil {
		t.MinorNewFilesThreshold = *s.MinorNewFilesThreshold
	}
	if s.MajorNewFilesBonus != nil {
		t.MajorNewFilesBonus = *s.MajorNewFilesBonus
	}
	if s.MinorNewFilesBonus != nil {
		t.MinorNewFilesBonus = *s.MinorNewFilesBonus
	}
	if s.ConfigOnlyMultiplier != nil {
		t.ConfigOnlyMultiplier = *s.ConfigOnlyMultiplier
	}
	if s.DeletionHeavyThreshold != nil {
		t.DeletionHeavyThreshold = *s.DeletionHeavyThreshold
	}
	if s.DeletionHeavyMultiplier != nil {
		t.DeletionHeavyMultiplier = *s.DeletionHeavyMultiplier
	}
	if s.MultiplierFloor != nil {
		t.MultiplierFloor = *s.MultiplierFloor
	}
	if s.MultiplierCeiling != nil {
		t.MultiplierCeiling = *s.MultiplierCeiling
	}
	if s.TestLinesThreshold != nil {
		t.TestLinesThreshold = *s.TestLinesThreshold
	}
	if s.TestSafetyBonus != nil {
		t.TestSafetyBonus = *s.TestSafetyBonus
	}
	return t
}

// RubricConfig replaces the built-in rubric wholesale when categories
// are present. High and low level lists swap independently.
type RubricConfig struct {
	Categories          map[string]CategoryConfig `json:"categories"`
	HighLevelCategories []string                  `json:"high_level_categories"`
	LowLevelCategories  []string                  `json:"low_level_categories"`
}

// CategoryConfig defines one rubric category in config.json.
type CategoryConfig struct {
	Weight   *float64 `json:"weight"`   // Points per hit, nil defaults to 1
	Patterns []string `json:"patterns"` // Regex patterns matched against subjects
}

package domain

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Extract ExtractConfig `toml:"extract"`
	Scoring ScoringConfig `toml:"scoring"`
	Oracle  OracleConfig  `toml:"oracle"`
	Tracker TrackerConfig `toml:"tracker"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
}

// StoreConfig holds settings for task storage from the [store] section.
type StoreConfig struct {
	Backend string `toml:"backend,omitempty"` // "file" (default), "sqlite" or "tracker"
	Dir     string `toml:"dir,omitempty"`     // Task directory for the file store
	Path    string `toml:"path,omitempty"`    // Database path for the sqlite store
}

// ExtractConfig holds extraction tuning from the [extract] section.
type ExtractConfig struct {
	Taxonomy            map[string]string `toml:"taxonomy,omitempty"`           // keyword -> label
	CommitmentPhrases   []string          `toml:"commitment_phrases,omitempty"` // modal-commitment markers
	HedgePhrases        []string          `toml:"hedge_phrases,omitempty"`      // hedged/vague markers
	ConfidenceThreshold float64           `toml:"confidence_threshold,omitempty"`
}

// ScoringConfig holds urgency tuning from the [scoring] section. The keyword
// list and the deadline-proximity curve are configuration, not hard-coded law.
type ScoringConfig struct {
	UrgencyKeywords map[string]int `toml:"urgency_keywords,omitempty"` // marker -> urgency value
	DeadlineBands   []DeadlineBand `toml:"deadline_bands,omitempty"`   // proximity curve, ascending MaxDays
	UrgencyFloor    int            `toml:"urgency_floor,omitempty"`
	NeutralImpact   int            `toml:"neutral_impact,omitempty"` // fallback when the oracle is unavailable
	NeutralEffort   int            `toml:"neutral_effort,omitempty"`
}

// DeadlineBand maps "due within MaxDays" to an urgency value.
type DeadlineBand struct {
	MaxDays int `toml:"max_days"`
	Value   int `toml:"value"`
}

// OracleConfig holds rubric-oracle settings from the [oracle] section.
type OracleConfig struct {
	Kind           string `toml:"kind,omitempty"` // "heuristic" (default) or "http"
	URL            string `toml:"url,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// TrackerConfig holds third-party tracker settings from the [tracker] section.
// The token is taken from the MINUTE_TRACKER_TOKEN environment variable.
type TrackerConfig struct {
	BaseURL     string `toml:"base_url,omitempty"`
	ActiveList  string `toml:"active_list,omitempty"`
	HoldingList string `toml:"holding_list,omitempty"`
	ArchiveList string `toml:"archive_list,omitempty"`
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // debug, info, warn, error
}

// NewDefaultConfig returns the built-in configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "file",
		},
		Extract: ExtractConfig{
			ConfidenceThreshold: 0.7,
			Taxonomy: map[string]string{
				"auth":     "auth",
				"api":      "api",
				"db":       "database",
				"database": "database",
				"test":     "testing",
				"deploy":   "deploy",
				"bug":      "bug",
				"fix":      "bug",
				"doc":      "docs",
				"design":   "design",
				"front":    "frontend",
				"back":     "backend",
				"infra":    "infrastructure",
			},
			CommitmentPhrases: []string{"will", "needs to", "must", "has to", "going to"},
			HedgePhrases:      []string{"should probably", "at some point", "someday", "maybe", "eventually", "might want to"},
		},
		Scoring: ScoringConfig{
			UrgencyFloor: 5,
			UrgencyKeywords: map[string]int{
				"blocking":      9,
				"blocked":       9,
				"critical":      9,
				"p0":            9,
				"asap":          8,
				"urgent":        8,
				"immediately":   8,
				"eod":           8,
				"p1":            8,
				"high priority": 6,
				"soon":          6,
			},
			DeadlineBands: []DeadlineBand{
				{MaxDays: 0, Value: 10},
				{MaxDays: 2, Value: 9},
				{MaxDays: 7, Value: 7},
				{MaxDays: 14, Value: 6},
			},
			NeutralImpact: 6,
			NeutralEffort: 4,
		},
		Oracle: OracleConfig{
			Kind:           "heuristic",
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

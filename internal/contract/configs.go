package contract

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/repolens/schema"
	"github.com/rs/zerolog"
)

// Default values for configuration.
const (
	DefaultAPIURL      = "https://api.github.com"
	DefaultPrecision   = 1
	DefaultCacheTTL    = time.Hour
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultAddr        = "127.0.0.1:8080"
	MaxResultLimit     = 1000
	MaxHeatmapDays     = 3660
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for repolens.
// This struct remains the "final, validated" config.
type Config struct {
	Token  string // Please use env var as this is plaintext
	APIURL string
	Repo   schema.RepoRef
	Owner  string // Set by commands that list repositories

	Branch string
	Author string
	Base   string
	Head   string

	Workers    int
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	ChurnCommits  int
	TopFiles      int
	RiskyFiles    int
	HeatmapDays   int
	BranchCap     int
	BranchPage    int
	TopAuthors    int
	CommitListing int

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	OpenAIKey   string
	OpenAIModel string
	OpenAIURL   string

	Addr           string
	AllowedOrigins []string

	LogLevel zerolog.Level
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	RepoStr  string
	OwnerStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Token             string `mapstructure:"token"`
	APIURL            string `mapstructure:"api-url"`
	Workers           int    `mapstructure:"workers"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Precision         int    `mapstructure:"precision"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	CacheTTL          string `mapstructure:"cache-ttl"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	LogLevel          string `mapstructure:"log-level"`

	// --- Caller policies ---
	ChurnCommits  int `mapstructure:"churn-commits"`
	Top           int `mapstructure:"top"`
	Risky         int `mapstructure:"risky"`
	Days          int `mapstructure:"days"`
	BranchCap     int `mapstructure:"branch-cap"`
	BranchPage    int `mapstructure:"branch-page"`
	Authors       int `mapstructure:"authors"`
	CommitListing int `mapstructure:"commit-listing"`

	// --- Fields from command flags ---
	Branch string `mapstructure:"branch"`
	Author string `mapstructure:"author"`
	Base   string `mapstructure:"base"`
	Head   string `mapstructure:"head"`

	// --- Summary ---
	OpenAIKey   string `mapstructure:"openai-key"`
	OpenAIModel string `mapstructure:"openai-model"`
	OpenAIURL   string `mapstructure:"openai-url"`

	// --- Server ---
	Addr          string `mapstructure:"addr"`
	AllowedOrigin string `mapstructure:"allowed-origin"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.AllowedOrigins != nil {
		clone.AllowedOrigins = make([]string, len(c.AllowedOrigins))
		copy(clone.AllowedOrigins, c.AllowedOrigins)
	}
	return &clone
}

// CloneWithRepo creates a copy of the Config that targets another repository.
func (c *Config) CloneWithRepo(repo schema.RepoRef) *Config {
	clone := c.Clone()
	clone.Repo = repo
	return clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validatePolicies(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processTarget(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
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

// validateSimpleInputs processes and validates the output and transport fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Token = strings.TrimSpace(input.Token)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Branch = input.Branch
	cfg.Author = input.Author
	cfg.Base = input.Base
	cfg.Head = input.Head
	cfg.OpenAIKey = input.OpenAIKey
	cfg.OpenAIURL = input.OpenAIURL

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	apiURL := strings.TrimRight(input.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api-url '%s'. must be an absolute http(s) URL", input.APIURL)
	}
	cfg.APIURL = apiURL

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	level := zerolog.InfoLevel
	if input.LogLevel != "" {
		level, err = zerolog.ParseLevel(strings.ToLower(input.LogLevel))
		if err != nil {
			return fmt.Errorf("invalid log level '%s': %w", input.LogLevel, err)
		}
	}
	cfg.LogLevel = level

	cfg.OpenAIModel = input.OpenAIModel
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = DefaultOpenAIModel
	}

	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	cfg.AllowedOrigins = nil
	for origin := range strings.SplitSeq(input.AllowedOrigin, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}
	return nil
}

// validatePolicies checks the sampling sizes and windows used by the analytics.
func validatePolicies(cfg *Config, input *ConfigRawInput) error {
	limits := []struct {
		name  string
		value int
		max   int
		dst   *int
	}{
		{"churn-commits", input.ChurnCommits, MaxResultLimit, &cfg.ChurnCommits},
		{"top", input.Top, MaxResultLimit, &cfg.TopFiles},
		{"risky", input.Risky, MaxResultLimit, &cfg.RiskyFiles},
		{"days", input.Days, MaxHeatmapDays, &cfg.HeatmapDays},
		{"branch-cap", input.BranchCap, MaxResultLimit, &cfg.BranchCap},
		{"branch-page", input.BranchPage, 100, &cfg.BranchPage},
		{"authors", input.Authors, MaxResultLimit, &cfg.TopAuthors},
		{"commit-listing", input.CommitListing, MaxResultLimit, &cfg.CommitListing},
	}
	for _, l := range limits {
		if l.value <= 0 || l.value > l.max {
			return fmt.Errorf("%s must be greater than 0 and cannot exceed %d (received %d)", l.name, l.max, l.value)
		}
		*l.dst = l.value
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl '%s': %w", input.CacheTTL, err)
		}
		if ttl < 0 {
			return fmt.Errorf("cache-ttl cannot be negative (received %s)", input.CacheTTL)
		}
		cfg.CacheTTL = ttl
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		analysisPath := cfg.AnalysisDBConnect
		if analysisPath == "" {
			analysisPath = GetAnalysisDBFilePath()
		}
		if cachePath == analysisPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// processTarget resolves the positional repository or owner argument.
func processTarget(cfg *Config, input *ConfigRawInput) error {
	cfg.Owner = strings.TrimSpace(input.OwnerStr)
	if input.RepoStr == "" {
		return nil
	}
	repo, err := ParseRepo(input.RepoStr)
	if err != nil {
		return err
	}
	cfg.Repo = repo
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort  int
	DBHost    string
	DBPort    int
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	// Azure DevOps connection.
	AzDoOrgURL     string
	AzDoProject    string
	AzDoPAT        string
	AzDoAPIVersion string

	// Fan-out and batching limits for upstream calls.
	RevisionBatchSize int
	WorkItemBatchCap  int

	// Retry policy for 429/5xx upstream responses.
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Revision-heavy calls need a much longer timeout than the default.
	HTTPTimeout     time.Duration
	RevisionTimeout time.Duration

	// Optional YAML file describing the teams to aggregate stats over.
	TeamsFile string
}

// Team is one entry of the teams YAML file. Stats endpoints aggregate over
// every configured team independently.
type Team struct {
	Name     string `yaml:"name"`
	AreaPath string `yaml:"areaPath"`
}

type teamsDocument struct {
	Teams []Team `yaml:"teams"`
}

func Load() Config {
	return Config{
		HTTPPort:  intFromEnv("HTTP_PORT", 8080),
		DBHost:    strFromEnv("DB_HOST", "db"),
		DBPort:    intFromEnv("DB_PORT", 5432),
		DBUser:    strFromEnv("DB_USER", "app"),
		DBPass:    strFromEnv("DB_PASSWORD", "app"),
		DBName:    strFromEnv("DB_NAME", "roadmap"),
		DBSSLMode: strFromEnv("DB_SSLMODE", "disable"),

		AzDoOrgURL:     strFromEnv("AZDO_ORG_URL", ""),
		AzDoProject:    strFromEnv("AZDO_PROJECT", ""),
		AzDoPAT:        strFromEnv("AZDO_PAT", ""),
		AzDoAPIVersion: strFromEnv("AZDO_API_VERSION", "7.0"),

		RevisionBatchSize: intFromEnv("AZDO_BATCH_SIZE", 3),
		WorkItemBatchCap:  intFromEnv("AZDO_WORKITEM_BATCH_CAP", 200),

		RetryAttempts:  intFromEnv("AZDO_RETRY_ATTEMPTS", 3),
		RetryBaseDelay: durationFromEnv("AZDO_RETRY_BASE_DELAY", time.Second),

		HTTPTimeout:     durationFromEnv("AZDO_HTTP_TIMEOUT", 30*time.Second),
		RevisionTimeout: durationFromEnv("AZDO_REVISION_TIMEOUT", 120*time.Second),

		TeamsFile: strFromEnv("TEAMS_FILE", ""),
	}
}

// Validate reports configuration that cannot possibly work. The database
// settings have usable defaults; the Azure DevOps connection does not.
func (c Config) Validate() error {
	if c.AzDoOrgURL == "" {
		return fmt.Errorf("AZDO_ORG_URL is required")
	}
	if c.AzDoProject == "" {
		return fmt.Errorf("AZDO_PROJECT is required")
	}
	if c.AzDoPAT == "" {
		return fmt.Errorf("AZDO_PAT is required")
	}
	if c.RevisionBatchSize < 1 {
		return fmt.Errorf("AZDO_BATCH_SIZE must be at least 1, got %d", c.RevisionBatchSize)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// Teams loads the configured teams file. A missing TEAMS_FILE setting yields
// an empty list, which stats endpoints treat as "the whole project".
func (c Config) Teams() ([]Team, error) {
	if c.TeamsFile == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(c.TeamsFile)
	if err != nil {
		return nil, fmt.Errorf("read teams file: %w", err)
	}
	var doc teamsDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse teams file %s: %w", c.TeamsFile, err)
	}
	for _, team := range doc.Teams {
		if team.Name == "" {
			return nil, fmt.Errorf("teams file %s: team with empty name", c.TeamsFile)
		}
	}
	return doc.Teams, nil
}

func strFromEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

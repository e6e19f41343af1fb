package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, 8080, cfg.HTTPPort)
	require.Equal(t, "db", cfg.DBHost)
	require.Equal(t, "7.0", cfg.AzDoAPIVersion)
	require.Equal(t, 3, cfg.RevisionBatchSize)
	require.Equal(t, 200, cfg.WorkItemBatchCap)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 120*time.Second, cfg.RevisionTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("AZDO_ORG_URL", "https://dev.azure.com/acme")
	t.Setenv("AZDO_BATCH_SIZE", "5")
	t.Setenv("AZDO_RETRY_BASE_DELAY", "250ms")

	cfg := Load()
	require.Equal(t, 9090, cfg.HTTPPort)
	require.Equal(t, "https://dev.azure.com/acme", cfg.AzDoOrgURL)
	require.Equal(t, 5, cfg.RevisionBatchSize)
	require.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("AZDO_RETRY_BASE_DELAY", "soon")

	cfg := Load()
	require.Equal(t, 8080, cfg.HTTPPort)
	require.Equal(t, time.Second, cfg.RetryBaseDelay)
}

func TestValidate(t *testing.T) {
	valid := Config{
		AzDoOrgURL:        "https://dev.azure.com/acme",
		AzDoProject:       "Dashboard",
		AzDoPAT:           "secret",
		RevisionBatchSize: 3,
	}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.AzDoPAT = ""
	require.ErrorContains(t, missing.Validate(), "AZDO_PAT")

	badBatch := valid
	badBatch.RevisionBatchSize = 0
	require.ErrorContains(t, badBatch.Validate(), "AZDO_BATCH_SIZE")
}

func TestDatabaseURL(t *testing.T) {
	cfg := Config{
		DBUser:    "app",
		DBPass:    "pw",
		DBHost:    "localhost",
		DBPort:    5433,
		DBName:    "roadmap",
		DBSSLMode: "disable",
	}
	require.Equal(t, "postgres://app:pw@localhost:5433/roadmap?sslmode=disable", cfg.DatabaseURL())
}

func TestTeams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`teams:
  - name: Payments
    areaPath: Dashboard\Payments
  - name: Platform
    areaPath: Dashboard\Platform
`), 0o600))

	cfg := Config{TeamsFile: path}
	teams, err := cfg.Teams()
	require.NoError(t, err)
	require.Len(t, teams, 2)
	require.Equal(t, "Payments", teams[0].Name)
	require.Equal(t, `Dashboard\Payments`, teams[0].AreaPath)
}

func TestTeamsRejectsEmptyName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teams:\n  - areaPath: Dashboard\n"), 0o600))

	_, err := Config{TeamsFile: path}.Teams()
	require.ErrorContains(t, err, "empty name")
}

func TestTeamsWithoutFile(t *testing.T) {
	teams, err := Config{}.Teams()
	require.NoError(t, err)
	require.Empty(t, teams)
}

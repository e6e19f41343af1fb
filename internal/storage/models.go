package storage

import "time"

// Valid deployment environments.
const (
	EnvDev        = "dev"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Deployment is the only durable state the service itself owns; everything
// else is a view over Azure DevOps. Records are append-only: created once,
// never mutated or deleted.
type Deployment struct {
	ID             string
	ReleaseVersion string
	Environment    string
	WorkItemIDs    []int
	DeployedBy     string
	DeployedAt     time.Time
	Notes          string
}

// ValidEnvironment reports whether env is one of the known environments.
func ValidEnvironment(env string) bool {
	switch env {
	case EnvDev, EnvStaging, EnvProduction:
		return true
	}
	return false
}

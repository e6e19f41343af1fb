package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/storage"
)

// CreateDeploymentInput is the request to record a deployment.
type CreateDeploymentInput struct {
	ReleaseVersion string `json:"releaseVersion"`
	Environment    string `json:"environment"`
	WorkItemIDs    []int  `json:"workItemIds"`
	DeployedBy     string `json:"deployedBy"`
	Notes          string `json:"notes"`
}

// CreateDeployment validates and records a deployment.
func (s *Service) CreateDeployment(ctx context.Context, input CreateDeploymentInput) (storage.Deployment, error) {
	if input.ReleaseVersion == "" {
		return storage.Deployment{}, apperr.New(http.StatusBadRequest, "MISSING_RELEASE_VERSION", "releaseVersion is required")
	}
	if !storage.ValidEnvironment(input.Environment) {
		return storage.Deployment{}, apperr.New(http.StatusBadRequest, "INVALID_ENVIRONMENT",
			fmt.Sprintf("environment must be dev, staging or production, got %q", input.Environment))
	}
	if input.DeployedBy == "" {
		return storage.Deployment{}, apperr.New(http.StatusBadRequest, "MISSING_DEPLOYED_BY", "deployedBy is required")
	}

	return s.store.CreateDeployment(ctx, storage.Deployment{
		ReleaseVersion: input.ReleaseVersion,
		Environment:    input.Environment,
		WorkItemIDs:    input.WorkItemIDs,
		DeployedBy:     input.DeployedBy,
		Notes:          input.Notes,
	})
}

// ListDeployments returns recorded deployments, newest first.
func (s *Service) ListDeployments(ctx context.Context, environment string, limit int) ([]storage.Deployment, error) {
	if environment != "" && !storage.ValidEnvironment(environment) {
		return nil, apperr.New(http.StatusBadRequest, "INVALID_ENVIRONMENT",
			fmt.Sprintf("environment must be dev, staging or production, got %q", environment))
	}
	deployments, err := s.store.ListDeployments(ctx, environment, limit)
	if err != nil {
		return nil, err
	}
	if deployments == nil {
		deployments = []storage.Deployment{}
	}
	return deployments, nil
}

// GetDeployment fetches one deployment record.
func (s *Service) GetDeployment(ctx context.Context, id string) (storage.Deployment, error) {
	if id == "" {
		return storage.Deployment{}, apperr.New(http.StatusBadRequest, "MISSING_ID", "deployment id is required")
	}
	return s.store.GetDeployment(ctx, id)
}

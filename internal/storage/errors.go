package storage

import "errors"

var (
	ErrDeploymentNotFound = errors.New("deployment not found")
	ErrDeploymentExists   = errors.New("deployment already exists")
)

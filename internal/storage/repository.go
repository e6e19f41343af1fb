package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateDeployment inserts a new deployment record. The insert is atomic, so
// concurrent deployment creations cannot lose each other's records. A zero
// DeployedAt is stamped with the current time; a missing ID gets a fresh
// UUID.
func (r *Repository) CreateDeployment(ctx context.Context, d Deployment) (Deployment, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DeployedAt.IsZero() {
		d.DeployedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO deployments (id, release_version, environment, work_item_ids, deployed_by, deployed_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.ReleaseVersion, d.Environment, d.WorkItemIDs, d.DeployedBy, d.DeployedAt, d.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Deployment{}, ErrDeploymentExists
		}
		return Deployment{}, err
	}
	return d, nil
}

// GetDeployment fetches one deployment by ID.
func (r *Repository) GetDeployment(ctx context.Context, id string) (Deployment, error) {
	var d Deployment
	err := r.pool.QueryRow(ctx, `
		SELECT id, release_version, environment, work_item_ids, deployed_by, deployed_at, notes
		FROM deployments
		WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.ReleaseVersion, &d.Environment, &d.WorkItemIDs, &d.DeployedBy, &d.DeployedAt, &d.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deployment{}, ErrDeploymentNotFound
		}
		return Deployment{}, err
	}
	return d, nil
}

// ListDeployments returns deployments newest first, optionally filtered by
// environment. limit <= 0 means no limit.
func (r *Repository) ListDeployments(ctx context.Context, environment string, limit int) ([]Deployment, error) {
	query := `
		SELECT id, release_version, environment, work_item_ids, deployed_by, deployed_at, notes
		FROM deployments`
	args := []any{}
	if environment != "" {
		query += ` WHERE environment = $1`
		args = append(args, environment)
	}
	query += ` ORDER BY deployed_at DESC`
	if limit > 0 {
		args = append(args, limit)
		if environment != "" {
			query += ` LIMIT $2`
		} else {
			query += ` LIMIT $1`
		}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deployments []Deployment
	for rows.Next() {
		var d Deployment
		if err := rows.Scan(&d.ID, &d.ReleaseVersion, &d.Environment, &d.WorkItemIDs, &d.DeployedBy, &d.DeployedAt, &d.Notes); err != nil {
			return nil, err
		}
		deployments = append(deployments, d)
	}
	return deployments, rows.Err()
}

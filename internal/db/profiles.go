package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-agent/internal/interview"
)

// CreateProfile inserts a role profile.
func (db *DB) CreateProfile(ctx context.Context, p *interview.RoleProfile) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO role_profiles (id, role, required_skills, difficulty_policy)
		 VALUES ($1, $2, $3, $4)`,
		p.ID, p.Role, p.RequiredSkills, p.DifficultyPolicy,
	)
	if err != nil {
		return fmt.Errorf("failed to create role profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a role profile by ID, returning (nil, nil) when absent.
func (db *DB) GetProfile(ctx context.Context, id uuid.UUID) (*interview.RoleProfile, error) {
	var p interview.RoleProfile
	err := db.pool.QueryRow(ctx,
		`SELECT id, role, required_skills, difficulty_policy FROM role_profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Role, &p.RequiredSkills, &p.DifficultyPolicy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role profile: %w", err)
	}
	return &p, nil
}

// ListProfiles retrieves all role profiles.
func (db *DB) ListProfiles(ctx context.Context) ([]*interview.RoleProfile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, role, required_skills, difficulty_policy FROM role_profiles ORDER BY role`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list role profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*interview.RoleProfile
	for rows.Next() {
		var p interview.RoleProfile
		if err := rows.Scan(&p.ID, &p.Role, &p.RequiredSkills, &p.DifficultyPolicy); err != nil {
			return nil, fmt.Errorf("failed to scan role profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes a role profile.
func (db *DB) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM role_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role profile not found: %s", id)
	}
	return nil
}

package interview

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateRequirement stores a role requirement for later interviews.
func (s *Service) CreateRequirement(ctx context.Context, p *RoleProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		return fmt.Errorf("failed to create requirement: %w", err)
	}
	s.log.Info().Str("requirementId", p.ID.String()).Str("role", p.Role).Msg("requirement created")
	return nil
}

// GetRequirement returns the requirement or a not-found error.
func (s *Service) GetRequirement(ctx context.Context, id uuid.UUID) (*RoleProfile, error) {
	p, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirement: %w", err)
	}
	if p == nil {
		return nil, &RequirementNotFoundError{ID: id}
	}
	return p, nil
}

// ListRequirements returns all stored requirements.
func (s *Service) ListRequirements(ctx context.Context) ([]*RoleProfile, error) {
	return s.profiles.ListProfiles(ctx)
}

// DeleteRequirement removes a requirement. Sessions already generated from
// it are unaffected.
func (s *Service) DeleteRequirement(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetRequirement(ctx, id); err != nil {
		return err
	}
	if err := s.profiles.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("failed to delete requirement: %w", err)
	}
	return nil
}

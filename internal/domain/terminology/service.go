package terminology

import (
	"context"
	"fmt"
)

// Service loads and serves the reference catalog.
type Service struct {
	repo Repository
}

// NewService creates a new terminology service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LoadCatalog reads the full reference tables and builds the immutable
// catalog snapshot used by the rule engine for the lifetime of a run.
func (s *Service) LoadCatalog(ctx context.Context) (*Catalog, error) {
	organisms, err := s.repo.ListOrganisms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load organisms: %w", err)
	}
	drugs, err := s.repo.ListDrugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load drugs: %w", err)
	}
	members, err := s.repo.ListValueSetMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load value set members: %w", err)
	}
	return NewCatalog(organisms, drugs, members), nil
}

// LookupOrganism looks up a single organism code.
func (s *Service) LookupOrganism(ctx context.Context, code string) (*OrganismRef, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.repo.GetOrganism(ctx, code)
}

// LookupDrug looks up a single medication code.
func (s *Service) LookupDrug(ctx context.Context, code string) (*DrugRef, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	return s.repo.GetDrug(ctx, code)
}

package terminology

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a reference code has no entry.
var ErrNotFound = errors.New("terminology: code not found")

// Repository provides access to the reference tables backing the catalog.
type Repository interface {
	ListOrganisms(ctx context.Context) ([]OrganismRef, error)
	ListDrugs(ctx context.Context) ([]DrugRef, error)
	ListValueSetMembers(ctx context.Context) ([]ValueSetMember, error)
	GetOrganism(ctx context.Context, code string) (*OrganismRef, error)
	GetDrug(ctx context.Context, code string) (*DrugRef, error)
}

package terminology

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates a Postgres-backed reference repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) ListOrganisms(ctx context.Context) ([]OrganismRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, display, identity_class, COALESCE(species_code,''), COALESCE(genus,'')
		 FROM reference_organisms ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list organisms: %w", err)
	}
	defer rows.Close()
	var out []OrganismRef
	for rows.Next() {
		var o OrganismRef
		if err := rows.Scan(&o.Code, &o.Display, &o.Class, &o.SpeciesCode, &o.Genus); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repoPG) ListDrugs(ctx context.Context) ([]DrugRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, display, ingredient, drug_class FROM reference_drugs ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list drugs: %w", err)
	}
	defer rows.Close()
	var out []DrugRef
	for rows.Next() {
		var d DrugRef
		if err := rows.Scan(&d.Code, &d.Display, &d.Ingredient, &d.Class); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) ListValueSetMembers(ctx context.Context) ([]ValueSetMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT set_id, code, COALESCE(system_uri,'') FROM reference_valueset_members ORDER BY set_id, code`)
	if err != nil {
		return nil, fmt.Errorf("list value set members: %w", err)
	}
	defer rows.Close()
	var out []ValueSetMember
	for rows.Next() {
		var m ValueSetMember
		if err := rows.Scan(&m.SetID, &m.Code, &m.System); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repoPG) GetOrganism(ctx context.Context, code string) (*OrganismRef, error) {
	var o OrganismRef
	err := r.pool.QueryRow(ctx,
		`SELECT code, display, identity_class, COALESCE(species_code,''), COALESCE(genus,'')
		 FROM reference_organisms WHERE code = $1`, code).
		Scan(&o.Code, &o.Display, &o.Class, &o.SpeciesCode, &o.Genus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organism: %w", err)
	}
	return &o, nil
}

func (r *repoPG) GetDrug(ctx context.Context, code string) (*DrugRef, error) {
	var d DrugRef
	err := r.pool.QueryRow(ctx,
		`SELECT code, display, ingredient, drug_class FROM reference_drugs WHERE code = $1`, code).
		Scan(&d.Code, &d.Display, &d.Ingredient, &d.Class)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get drug: %w", err)
	}
	return &d, nil
}

package permissions

import (
	"context"

	"github.com/freshroots/admin-service/internal/models"
)

// Directory supplies the enterprise relations the resolver scopes by.
// The api package implements it on top of the database.
type Directory interface {
	// AllEnterprises returns every enterprise, for site admins.
	AllEnterprises(ctx context.Context) ([]models.Enterprise, error)
	// ManagedEnterprises returns the enterprises the user owns or manages.
	ManagedEnterprises(ctx context.Context, userID int64) ([]models.Enterprise, error)
	// CycleParticipantIDs returns the IDs of enterprises participating in
	// an order cycle. An unknown cycle resolves to an empty set.
	CycleParticipantIDs(ctx context.Context, orderCycleID int64) ([]int64, error)
	// CoordinatedEnterpriseIDs returns the IDs of enterprises whose order
	// cycles are coordinated by the given enterprise.
	CoordinatedEnterpriseIDs(ctx context.Context, coordinatorID int64) ([]int64, error)
}

// Scope narrows the resolved set. Zero value means no narrowing. When both
// references are present the result is the intersection of both scopes.
type Scope struct {
	OrderCycleID  *int64
	CoordinatorID *int64
}

// Resolver determines the set of enterprises a principal may act on
type Resolver struct {
	dir Directory
}

// NewResolver creates a resolver backed by the given directory
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// EnterprisesFor returns the enterprises the principal may act on, scoped
// by whichever references are present. An unauthenticated principal gets
// an empty set, not an error.
func (r *Resolver) EnterprisesFor(ctx context.Context, principal models.Principal, scope Scope) ([]models.Enterprise, error) {
	if !principal.Authenticated() {
		return []models.Enterprise{}, nil
	}

	var base []models.Enterprise
	var err error
	if principal.Admin {
		base, err = r.dir.AllEnterprises(ctx)
	} else {
		base, err = r.dir.ManagedEnterprises(ctx, principal.UserID)
	}
	if err != nil {
		return nil, err
	}

	if scope.OrderCycleID != nil {
		ids, err := r.dir.CycleParticipantIDs(ctx, *scope.OrderCycleID)
		if err != nil {
			return nil, err
		}
		base = intersect(base, ids)
	}

	if scope.CoordinatorID != nil {
		ids, err := r.dir.CoordinatedEnterpriseIDs(ctx, *scope.CoordinatorID)
		if err != nil {
			return nil, err
		}
		base = intersect(base, ids)
	}

	return base, nil
}

// VisibleDistributorIDs returns the distributor set the principal may see
// in reports. A nil slice means unrestricted (site admin); an empty slice
// means no visibility at all.
func (r *Resolver) VisibleDistributorIDs(ctx context.Context, principal models.Principal) ([]int64, error) {
	if principal.Admin {
		return nil, nil
	}
	if !principal.Authenticated() {
		return []int64{}, nil
	}
	managed, err := r.dir.ManagedEnterprises(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(managed))
	for _, e := range managed {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// intersect keeps the enterprises whose ID appears in ids, preserving the
// original ordering of base.
func intersect(base []models.Enterprise, ids []int64) []models.Enterprise {
	keep := make(map[int64]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := make([]models.Enterprise, 0, len(base))
	for _, e := range base {
		if keep[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

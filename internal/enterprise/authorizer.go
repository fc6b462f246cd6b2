package enterprise

import (
	"errors"
	"sort"
	"strconv"

	"github.com/freshroots/admin-service/internal/models"
)

// ErrNotAuthorized is returned when a principal with no relation to the
// enterprise attempts a mutation.
var ErrNotAuthorized = errors.New("not authorized to manage this enterprise")

// Relation ranks the principal's relation to an enterprise
type Relation int

const (
	RelationNone Relation = iota
	RelationManager
	RelationOwner
	RelationAdmin
)

// RelationTo computes the principal's relation to the enterprise. Owner
// beats manager; site admin beats both.
func RelationTo(principal models.Principal, e models.Enterprise) Relation {
	switch {
	case principal.Admin:
		return RelationAdmin
	case principal.UserID == e.OwnerID:
		return RelationOwner
	case principal.Manages(e.ID):
		return RelationManager
	default:
		return RelationNone
	}
}

// AuthorizeUpdate filters an update request down to the fields the
// principal may change. Site admins pass through unfiltered; owners may
// change owner, managers and sells; plain managers have those fields
// silently dropped; anyone else is rejected outright.
func AuthorizeUpdate(principal models.Principal, e models.Enterprise, requested models.EnterpriseParams) (models.EnterpriseParams, error) {
	switch RelationTo(principal, e) {
	case RelationAdmin, RelationOwner:
		return requested, nil
	case RelationManager:
		applied := requested
		applied.OwnerID = nil
		applied.UserIDs = nil
		applied.Sells = nil
		return applied, nil
	default:
		return models.EnterpriseParams{}, ErrNotAuthorized
	}
}

// DefaultSells infers the sells classification for a newly created
// enterprise. Site admins are exempt and keep whatever they submitted.
// A user who already owns a selling enterprise gets 'any' for new
// non-producers; primary producers and first enterprises default to 'none'.
func DefaultSells(principal models.Principal, requested *models.Sells, isPrimaryProducer, ownsSellingEnterprise bool) models.Sells {
	if principal.Admin {
		if requested != nil && requested.IsValid() {
			return *requested
		}
		return models.SellsNone
	}
	if ownsSellingEnterprise && !isPrimaryProducer {
		return models.SellsAny
	}
	return models.SellsNone
}

// MatchProducerProperties resolves nested property assignments against the
// set of existing properties. Assignments are keyed by an ordinal index and
// applied in that order; names that match no existing property are dropped,
// never created.
func MatchProducerProperties(attrs map[string]models.ProducerPropertyAttributes, existing map[string]int64) []models.ProducerProperty {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		if aerr != nil || berr != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	var out []models.ProducerProperty
	for _, k := range keys {
		attr := attrs[k]
		propertyID, ok := existing[attr.PropertyName]
		if !ok {
			continue
		}
		out = append(out, models.ProducerProperty{
			PropertyID:   propertyID,
			PropertyName: attr.PropertyName,
			Value:        attr.Value,
		})
	}
	return out
}

package enterprise

import (
	"testing"

	"github.com/freshroots/admin-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string               { return &s }
func int64Ptr(v int64) *int64               { return &v }
func sellsPtr(s models.Sells) *models.Sells { return &s }
func boolPtr(b bool) *bool                  { return &b }

func TestRelationTo(t *testing.T) {
	e := models.Enterprise{ID: 10, OwnerID: 1}

	assert.Equal(t, RelationAdmin, RelationTo(models.Principal{UserID: 99, Admin: true}, e))
	assert.Equal(t, RelationOwner, RelationTo(models.Principal{UserID: 1}, e))
	assert.Equal(t, RelationManager, RelationTo(models.Principal{UserID: 2, ManagedEnterpriseIDs: []int64{10}}, e))
	assert.Equal(t, RelationNone, RelationTo(models.Principal{UserID: 3}, e))
}

func TestAuthorizeUpdateAdminPassesAllFields(t *testing.T) {
	admin := models.Principal{UserID: 99, Admin: true}
	e := models.Enterprise{ID: 10, OwnerID: 1}
	requested := models.EnterpriseParams{
		OwnerID: int64Ptr(5),
		Sells:   sellsPtr(models.SellsAny),
		UserIDs: []int64{1, 2, 3},
	}

	applied, err := AuthorizeUpdate(admin, e, requested)
	require.NoError(t, err)
	assert.Equal(t, requested, applied)
}

func TestAuthorizeUpdateOwnerPassesRestrictedFields(t *testing.T) {
	owner := models.Principal{UserID: 1}
	e := models.Enterprise{ID: 10, OwnerID: 1}
	requested := models.EnterpriseParams{
		OwnerID: int64Ptr(5),
		Sells:   sellsPtr(models.SellsAny),
		UserIDs: []int64{1, 2, 3},
	}

	applied, err := AuthorizeUpdate(owner, e, requested)
	require.NoError(t, err)
	assert.Equal(t, int64Ptr(5), applied.OwnerID)
	assert.Equal(t, sellsPtr(models.SellsAny), applied.Sells)
	assert.Equal(t, []int64{1, 2, 3}, applied.UserIDs)
}

func TestAuthorizeUpdateManagerStripsRestrictedFields(t *testing.T) {
	manager := models.Principal{UserID: 2, ManagedEnterpriseIDs: []int64{10}}
	e := models.Enterprise{ID: 10, OwnerID: 1}
	requested := models.EnterpriseParams{
		Name:    strPtr("New Name"),
		OwnerID: int64Ptr(2),
		Sells:   sellsPtr(models.SellsAny),
		UserIDs: []int64{1, 2, 3},
	}

	applied, err := AuthorizeUpdate(manager, e, requested)
	require.NoError(t, err)
	assert.Equal(t, strPtr("New Name"), applied.Name)
	assert.Nil(t, applied.OwnerID)
	assert.Nil(t, applied.Sells)
	assert.Nil(t, applied.UserIDs)
}

func TestAuthorizeUpdateUnrelatedPrincipalRejected(t *testing.T) {
	stranger := models.Principal{UserID: 7}
	e := models.Enterprise{ID: 10, OwnerID: 1}

	_, err := AuthorizeUpdate(stranger, e, models.EnterpriseParams{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDefaultSells(t *testing.T) {
	user := models.Principal{UserID: 1}
	admin := models.Principal{UserID: 99, Admin: true}

	// Owner of a selling enterprise creates a new hub
	assert.Equal(t, models.SellsAny, DefaultSells(user, nil, false, true))

	// Primary producers default to none even for selling owners
	assert.Equal(t, models.SellsNone, DefaultSells(user, nil, true, true))

	// First enterprise defaults to none
	assert.Equal(t, models.SellsNone, DefaultSells(user, nil, false, false))

	// Requested value is ignored for ordinary users
	assert.Equal(t, models.SellsNone, DefaultSells(user, sellsPtr(models.SellsAny), false, false))

	// Admins keep what they submitted regardless of holdings
	assert.Equal(t, models.SellsNone, DefaultSells(admin, sellsPtr(models.SellsNone), false, true))
	assert.Equal(t, models.SellsAny, DefaultSells(admin, sellsPtr(models.SellsAny), false, false))
}

func TestMatchProducerProperties(t *testing.T) {
	existing := map[string]int64{"A nice name": 1, "Another": 2}

	attrs := map[string]models.ProducerPropertyAttributes{
		"1": {PropertyName: "Another", Value: "second"},
		"0": {PropertyName: "A nice name", Value: "first"},
		"2": {PropertyName: "a different name", Value: "dropped"},
	}

	matched := MatchProducerProperties(attrs, existing)
	require.Len(t, matched, 2)
	assert.Equal(t, "A nice name", matched[0].PropertyName)
	assert.Equal(t, int64(1), matched[0].PropertyID)
	assert.Equal(t, "first", matched[0].Value)
	assert.Equal(t, "Another", matched[1].PropertyName)
	assert.Equal(t, "second", matched[1].Value)
}

func TestMatchProducerPropertiesNoMatches(t *testing.T) {
	attrs := map[string]models.ProducerPropertyAttributes{
		"0": {PropertyName: "unknown", Value: "x"},
	}
	assert.Empty(t, MatchProducerProperties(attrs, map[string]int64{"known": 1}))
}

package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/freshroots/admin-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	all          []models.Enterprise
	managed      map[int64][]models.Enterprise
	participants map[int64][]int64
	coordinated  map[int64][]int64
	err          error
}

func (f *fakeDirectory) AllEnterprises(ctx context.Context) ([]models.Enterprise, error) {
	return f.all, f.err
}

func (f *fakeDirectory) ManagedEnterprises(ctx context.Context, userID int64) ([]models.Enterprise, error) {
	return f.managed[userID], f.err
}

func (f *fakeDirectory) CycleParticipantIDs(ctx context.Context, orderCycleID int64) ([]int64, error) {
	return f.participants[orderCycleID], f.err
}

func (f *fakeDirectory) CoordinatedEnterpriseIDs(ctx context.Context, coordinatorID int64) ([]int64, error) {
	return f.coordinated[coordinatorID], f.err
}

func ent(id int64, name string) models.Enterprise {
	return models.Enterprise{ID: id, Name: name}
}

func idsOf(enterprises []models.Enterprise) []int64 {
	ids := make([]int64, 0, len(enterprises))
	for _, e := range enterprises {
		ids = append(ids, e.ID)
	}
	return ids
}

func int64Ptr(v int64) *int64 { return &v }

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		all: []models.Enterprise{ent(1, "Apple Farm"), ent(2, "Berry Hub"), ent(3, "Cider Mill")},
		managed: map[int64][]models.Enterprise{
			5: {ent(2, "Berry Hub"), ent(3, "Cider Mill")},
		},
		participants: map[int64][]int64{
			10: {1, 3},
		},
		coordinated: map[int64][]int64{
			2: {3},
		},
	}
}

func TestEnterprisesForUnauthenticated(t *testing.T) {
	r := NewResolver(testDirectory())

	got, err := r.EnterprisesFor(context.Background(), models.Principal{}, Scope{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnterprisesForAdminSeesAll(t *testing.T) {
	r := NewResolver(testDirectory())
	admin := models.Principal{UserID: 99, Admin: true}

	got, err := r.EnterprisesFor(context.Background(), admin, Scope{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, idsOf(got))
}

func TestEnterprisesForManagerSeesManaged(t *testing.T) {
	r := NewResolver(testDirectory())
	user := models.Principal{UserID: 5}

	got, err := r.EnterprisesFor(context.Background(), user, Scope{})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, idsOf(got))
}

func TestEnterprisesForOrderCycleScope(t *testing.T) {
	r := NewResolver(testDirectory())
	admin := models.Principal{UserID: 99, Admin: true}

	got, err := r.EnterprisesFor(context.Background(), admin, Scope{OrderCycleID: int64Ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, idsOf(got))
}

func TestEnterprisesForUnknownOrderCycleIsEmpty(t *testing.T) {
	r := NewResolver(testDirectory())
	admin := models.Principal{UserID: 99, Admin: true}

	got, err := r.EnterprisesFor(context.Background(), admin, Scope{OrderCycleID: int64Ptr(404)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnterprisesForCombinedScopesIntersect(t *testing.T) {
	r := NewResolver(testDirectory())
	user := models.Principal{UserID: 5}

	got, err := r.EnterprisesFor(context.Background(), user, Scope{
		OrderCycleID:  int64Ptr(10),
		CoordinatorID: int64Ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, idsOf(got))
}

func TestEnterprisesForDirectoryError(t *testing.T) {
	dir := testDirectory()
	dir.err = errors.New("connection refused")
	r := NewResolver(dir)

	_, err := r.EnterprisesFor(context.Background(), models.Principal{UserID: 5}, Scope{})
	assert.Error(t, err)
}

func TestVisibleDistributorIDs(t *testing.T) {
	r := NewResolver(testDirectory())

	ids, err := r.VisibleDistributorIDs(context.Background(), models.Principal{UserID: 99, Admin: true})
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = r.VisibleDistributorIDs(context.Background(), models.Principal{})
	require.NoError(t, err)
	require.NotNil(t, ids)
	assert.Empty(t, ids)

	ids, err = r.VisibleDistributorIDs(context.Background(), models.Principal{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)
}

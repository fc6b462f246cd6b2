package reports

import (
	"context"
	"testing"
	"time"

	"github.com/freshroots/admin-service/internal/features"
	"github.com/freshroots/admin-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	completed   []models.Order
	outstanding []models.Order

	lastSince          time.Time
	lastDistributorIDs []int64
	calledCompleted    bool
	calledOutstanding  bool
}

func (f *fakeSource) CompletedOrdersSince(ctx context.Context, since time.Time, distributorIDs []int64) ([]models.Order, error) {
	f.calledCompleted = true
	f.lastSince = since
	f.lastDistributorIDs = distributorIDs
	return f.completed, nil
}

func (f *fakeSource) OutstandingBalanceOrders(ctx context.Context, distributorIDs []int64) ([]models.Order, error) {
	f.calledOutstanding = true
	f.lastDistributorIDs = distributorIDs
	return f.outstanding, nil
}

type fakeVisibility struct {
	ids []int64
}

func (f fakeVisibility) VisibleDistributorIDs(ctx context.Context, principal models.Principal) ([]int64, error) {
	return f.ids, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestOrdersDefaultsToTrailingMonthWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	src := &fakeSource{completed: []models.Order{{ID: 1}}}
	r := NewReport(src, fakeVisibility{ids: []int64{2, 3}}, features.StaticProvider{}, fixedClock(now))

	got, err := r.Orders(context.Background(), models.Principal{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, orderIDs(got))
	assert.True(t, src.calledCompleted)
	assert.False(t, src.calledOutstanding)
	assert.Equal(t, time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC), src.lastSince)
	assert.Equal(t, []int64{2, 3}, src.lastDistributorIDs)
}

func TestOrdersCustomerBalanceFlagUsesOutstandingVariant(t *testing.T) {
	src := &fakeSource{outstanding: []models.Order{{ID: 7}, {ID: 8}}}
	flags := features.StaticProvider{features.CustomerBalance: true}
	r := NewReport(src, fakeVisibility{ids: []int64{2}}, flags, nil)

	got, err := r.Orders(context.Background(), models.Principal{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, orderIDs(got))
	assert.True(t, src.calledOutstanding)
	assert.False(t, src.calledCompleted)
}

func TestOrdersAdminGetsUnrestrictedDistributors(t *testing.T) {
	src := &fakeSource{}
	r := NewReport(src, fakeVisibility{ids: nil}, features.StaticProvider{}, nil)

	_, err := r.Orders(context.Background(), models.Principal{UserID: 99, Admin: true})
	require.NoError(t, err)
	assert.True(t, src.calledCompleted)
	assert.Nil(t, src.lastDistributorIDs)
}

func TestOrdersNoVisibleDistributorsShortCircuits(t *testing.T) {
	src := &fakeSource{}
	r := NewReport(src, fakeVisibility{ids: []int64{}}, features.StaticProvider{}, nil)

	got, err := r.Orders(context.Background(), models.Principal{UserID: 5})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, src.calledCompleted)
	assert.False(t, src.calledOutstanding)
}

func TestRunScopesFiltersAndProjects(t *testing.T) {
	src := &fakeSource{completed: []models.Order{
		{ID: 1, OrderCycleID: int64Ptr(10), Email: "a@example.com"},
		{ID: 2, OrderCycleID: int64Ptr(11), Email: "b@example.com"},
	}}
	r := NewReport(src, fakeVisibility{ids: []int64{2}}, features.StaticProvider{}, nil)

	rows, err := r.Run(context.Background(), models.Principal{UserID: 5}, models.ReportRequest{
		ReportType:   ReportTypePaymentMethods,
		OrderCycleID: int64Ptr(10),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 10)
	assert.Equal(t, "a@example.com", rows[0][4])
}

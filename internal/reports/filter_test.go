package reports

import (
	"testing"

	"github.com/freshroots/admin-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func testOrders() []models.Order {
	return []models.Order{
		{
			ID:           1,
			OrderCycleID: int64Ptr(10),
			Payments:     []models.Payment{{MethodID: 1, MethodName: "Cash"}},
			Shipments:    []models.Shipment{{MethodID: 5, MethodName: "Pickup"}},
		},
		{
			ID:           2,
			OrderCycleID: int64Ptr(11),
			Payments:     []models.Payment{{MethodID: 2, MethodName: "Stripe"}},
			Shipments:    []models.Shipment{{MethodID: 6, MethodName: "Delivery"}},
		},
		{
			ID:           3,
			OrderCycleID: int64Ptr(10),
			Payments:     []models.Payment{{MethodID: 2, MethodName: "Stripe"}},
			Shipments:    []models.Shipment{{MethodID: 5, MethodName: "Pickup"}},
		},
		{
			ID: 4,
		},
	}
}

func orderIDs(orders []models.Order) []int64 {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestFilterNoCriteriaIsIdentity(t *testing.T) {
	orders := testOrders()
	assert.Equal(t, orders, Filter(orders, Criteria{}))
}

func TestFilterByOrderCycle(t *testing.T) {
	got := Filter(testOrders(), Criteria{OrderCycleID: int64Ptr(10)})
	assert.Equal(t, []int64{1, 3}, orderIDs(got))
}

func TestFilterOrderWithoutCycleNeverMatchesCycleCriterion(t *testing.T) {
	got := Filter(testOrders(), Criteria{OrderCycleID: int64Ptr(99)})
	assert.Empty(t, got)
}

func TestFilterByPaymentMethodID(t *testing.T) {
	got := Filter(testOrders(), Criteria{PaymentMethodIn: []int64{2}})
	assert.Equal(t, []int64{2, 3}, orderIDs(got))
}

func TestFilterByPaymentMethodName(t *testing.T) {
	got := Filter(testOrders(), Criteria{PaymentMethodName: "Cash"})
	assert.Equal(t, []int64{1}, orderIDs(got))
}

func TestFilterByShippingMethodID(t *testing.T) {
	got := Filter(testOrders(), Criteria{ShippingMethodIn: []int64{5}})
	assert.Equal(t, []int64{1, 3}, orderIDs(got))
}

func TestFilterByShippingMethodName(t *testing.T) {
	got := Filter(testOrders(), Criteria{ShippingMethodName: "Delivery"})
	assert.Equal(t, []int64{2}, orderIDs(got))
}

func TestFilterCriteriaAreConjunctive(t *testing.T) {
	got := Filter(testOrders(), Criteria{
		OrderCycleID:     int64Ptr(10),
		PaymentMethodIn:  []int64{2},
		ShippingMethodIn: []int64{5},
	})
	assert.Equal(t, []int64{3}, orderIDs(got))
}

func TestFilterPreservesInputOrdering(t *testing.T) {
	got := Filter(testOrders(), Criteria{PaymentMethodIn: []int64{1, 2}})
	assert.Equal(t, []int64{1, 2, 3}, orderIDs(got))
}

func TestCriteriaEmpty(t *testing.T) {
	assert.True(t, Criteria{}.Empty())
	assert.False(t, Criteria{OrderCycleID: int64Ptr(1)}.Empty())
	assert.False(t, Criteria{PaymentMethodName: "Cash"}.Empty())
	assert.False(t, Criteria{ShippingMethodIn: []int64{1}}.Empty())
}

func TestFromRequest(t *testing.T) {
	req := models.ReportRequest{
		OrderCycleID:     int64Ptr(7),
		PaymentMethodIn:  []int64{1, 2},
		ShippingMethodIn: []int64{3},
	}
	c := FromRequest(req)
	assert.Equal(t, int64(7), *c.OrderCycleID)
	assert.Equal(t, []int64{1, 2}, c.PaymentMethodIn)
	assert.Equal(t, []int64{3}, c.ShippingMethodIn)
}

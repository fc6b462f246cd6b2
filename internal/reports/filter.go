package reports

import "github.com/freshroots/admin-service/internal/models"

// Criteria are the optional, conjunctive report filters. Each criterion
// present narrows the result further; an empty Criteria filters nothing.
type Criteria struct {
	OrderCycleID       *int64
	PaymentMethodIn    []int64
	PaymentMethodName  string
	ShippingMethodIn   []int64
	ShippingMethodName string
}

// FromRequest builds filter criteria from report query parameters
func FromRequest(req models.ReportRequest) Criteria {
	return Criteria{
		OrderCycleID:       req.OrderCycleID,
		PaymentMethodIn:    req.PaymentMethodIn,
		PaymentMethodName:  req.PaymentMethodName,
		ShippingMethodIn:   req.ShippingMethodIn,
		ShippingMethodName: req.ShippingMethodName,
	}
}

// Empty reports whether no criterion is set
func (c Criteria) Empty() bool {
	return c.OrderCycleID == nil &&
		len(c.PaymentMethodIn) == 0 && c.PaymentMethodName == "" &&
		len(c.ShippingMethodIn) == 0 && c.ShippingMethodName == ""
}

// Filter keeps the orders matching every criterion present, preserving
// the relative ordering of the input. With no criteria it is the identity.
func Filter(orders []models.Order, c Criteria) []models.Order {
	if c.Empty() {
		return orders
	}

	paymentIDs := idSet(c.PaymentMethodIn)
	shippingIDs := idSet(c.ShippingMethodIn)

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if c.OrderCycleID != nil {
			if o.OrderCycleID == nil || *o.OrderCycleID != *c.OrderCycleID {
				continue
			}
		}
		if len(paymentIDs) > 0 && !hasPaymentMethodID(o, paymentIDs) {
			continue
		}
		if c.PaymentMethodName != "" && !hasPaymentMethodName(o, c.PaymentMethodName) {
			continue
		}
		if len(shippingIDs) > 0 && !hasShippingMethodID(o, shippingIDs) {
			continue
		}
		if c.ShippingMethodName != "" && !hasShippingMethodName(o, c.ShippingMethodName) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func idSet(ids []int64) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func hasPaymentMethodID(o models.Order, ids map[int64]bool) bool {
	for _, p := range o.Payments {
		if ids[p.MethodID] {
			return true
		}
	}
	return false
}

func hasPaymentMethodName(o models.Order, name string) bool {
	for _, p := range o.Payments {
		if p.MethodName == name {
			return true
		}
	}
	return false
}

func hasShippingMethodID(o models.Order, ids map[int64]bool) bool {
	for _, s := range o.Shipments {
		if ids[s.MethodID] {
			return true
		}
	}
	return false
}

func hasShippingMethodName(o models.Order, name string) bool {
	for _, s := range o.Shipments {
		if s.MethodName == name {
			return true
		}
	}
	return false
}

package reports

import (
	"fmt"

	"github.com/freshroots/admin-service/internal/models"
)

// ReportTypePaymentMethods selects the payment-method row shape; any other
// report type gets the delivery shape.
const ReportTypePaymentMethods = "payment_methods"

// TableItems projects filtered orders into fixed-shape row tuples, one per
// order. Totals are negated: the report reads as a balance owed to the
// customer. The projection is a pure function of its input and can be
// recomputed at will.
func TableItems(orders []models.Order, reportType string) [][]any {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		if reportType == ReportTypePaymentMethods {
			rows = append(rows, paymentMethodRow(o))
		} else {
			rows = append(rows, deliveryRow(o))
		}
	}
	return rows
}

// paymentMethodRow is the 10-column payment shape. Columns 7-9 are always
// nil, matching the report this replaces; the payment method name was
// never filled in there even when a payment exists.
func paymentMethodRow(o models.Order) []any {
	return []any{
		o.BillAddress.FirstName,
		o.BillAddress.LastName,
		o.DistributorName,
		"",
		o.Email,
		o.BillAddress.Phone,
		nil,
		nil,
		nil,
		o.Total.Neg(),
	}
}

// deliveryRow is the 13-column delivery shape
func deliveryRow(o models.Order) []any {
	var shippingMethod any
	if len(o.Shipments) > 0 {
		shippingMethod = o.Shipments[0].MethodName
	}
	return []any{
		o.ShipAddress.FirstName,
		o.ShipAddress.LastName,
		o.DistributorName,
		nil,
		shipToAddress(o.ShipAddress),
		o.ShipAddress.Zipcode,
		o.ShipAddress.Phone,
		shippingMethod,
		nil,
		nil,
		o.Total.Neg(),
		false,
		o.SpecialInstructions,
	}
}

// shipToAddress joins street lines and city with literal single spaces.
// Missing parts collapse to nothing but the spacing is kept as-is.
func shipToAddress(a models.Address) string {
	return fmt.Sprintf("%s %s %s", a.Address1, a.Address2, a.City)
}

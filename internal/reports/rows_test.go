package reports

import (
	"testing"

	"github.com/freshroots/admin-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportOrder() models.Order {
	return models.Order{
		ID:                  1,
		DistributorName:     "Berry Hub",
		Email:               "jane@example.com",
		SpecialInstructions: "leave at gate",
		Total:               decimal.RequireFromString("10.00"),
		BillAddress: models.Address{
			FirstName: "Jane",
			LastName:  "Doe",
			Phone:     "555-0101",
		},
		ShipAddress: models.Address{
			FirstName: "John",
			LastName:  "Smith",
			Address1:  "1 Main St",
			Address2:  "Unit 2",
			City:      "Springfield",
			Zipcode:   "12345",
			Phone:     "555-0202",
		},
		Shipments: []models.Shipment{{MethodID: 5, MethodName: "Pickup"}},
	}
}

func TestPaymentMethodRowShape(t *testing.T) {
	rows := TableItems([]models.Order{reportOrder()}, ReportTypePaymentMethods)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Len(t, row, 10)
	assert.Equal(t, "Jane", row[0])
	assert.Equal(t, "Doe", row[1])
	assert.Equal(t, "Berry Hub", row[2])
	assert.Equal(t, "", row[3])
	assert.Equal(t, "jane@example.com", row[4])
	assert.Equal(t, "555-0101", row[5])
	assert.Nil(t, row[6])
	assert.Nil(t, row[7])
	assert.Nil(t, row[8])
	assert.True(t, decimal.RequireFromString("-10.00").Equal(row[9].(decimal.Decimal)))
}

func TestDeliveryRowShape(t *testing.T) {
	rows := TableItems([]models.Order{reportOrder()}, "delivery")
	require.Len(t, rows, 1)

	row := rows[0]
	require.Len(t, row, 13)
	assert.Equal(t, "John", row[0])
	assert.Equal(t, "Smith", row[1])
	assert.Equal(t, "Berry Hub", row[2])
	assert.Nil(t, row[3])
	assert.Equal(t, "1 Main St Unit 2 Springfield", row[4])
	assert.Equal(t, "12345", row[5])
	assert.Equal(t, "555-0202", row[6])
	assert.Equal(t, "Pickup", row[7])
	assert.Nil(t, row[8])
	assert.Nil(t, row[9])
	assert.True(t, decimal.RequireFromString("-10.00").Equal(row[10].(decimal.Decimal)))
	assert.Equal(t, false, row[11])
	assert.Equal(t, "leave at gate", row[12])
}

func TestDeliveryRowWithoutShipments(t *testing.T) {
	o := reportOrder()
	o.Shipments = nil

	rows := TableItems([]models.Order{o}, "delivery")
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0][7])
}

func TestShipToAddressKeepsSpacingForMissingParts(t *testing.T) {
	assert.Equal(t, "1 Main St  Springfield", shipToAddress(models.Address{
		Address1: "1 Main St",
		City:     "Springfield",
	}))
	assert.Equal(t, "  ", shipToAddress(models.Address{}))
}

func TestTableItemsOneRowPerOrder(t *testing.T) {
	orders := []models.Order{reportOrder(), reportOrder(), reportOrder()}
	assert.Len(t, TableItems(orders, ReportTypePaymentMethods), 3)
	assert.Empty(t, TableItems(nil, ReportTypePaymentMethods))
}

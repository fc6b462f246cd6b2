package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freshroots/admin-service/internal/models"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `
	o.id, o.state, o.completed_at, o.distributor_id, d.name,
	o.order_cycle_id, o.email, COALESCE(o.special_instructions, ''), o.total,
	bill.firstname, bill.lastname, bill.address1, bill.address2, bill.city, bill.zipcode, bill.phone,
	ship.firstname, ship.lastname, ship.address1, ship.address2, ship.city, ship.zipcode, ship.phone
`

const orderJoins = `
	FROM orders o
	JOIN enterprises d ON d.id = o.distributor_id
	LEFT JOIN addresses bill ON bill.id = o.bill_address_id
	LEFT JOIN addresses ship ON ship.id = o.ship_address_id
`

// reportEligibleStates enumerates the order states admitted into reports,
// derived from models.OrderState so the SQL cannot drift from the model.
var reportEligibleStates = func() []string {
	all := []models.OrderState{
		models.OrderStateCart,
		models.OrderStatePayment,
		models.OrderStateComplete,
		models.OrderStateResumed,
		models.OrderStateCanceled,
	}
	var out []string
	for _, s := range all {
		if s.ReportEligible() {
			out = append(out, string(s))
		}
	}
	return out
}()

func scanOrder(rows pgx.Rows) (models.Order, error) {
	var o models.Order
	var bill, ship [7]*string
	err := rows.Scan(
		&o.ID,
		&o.State,
		&o.CompletedAt,
		&o.DistributorID,
		&o.DistributorName,
		&o.OrderCycleID,
		&o.Email,
		&o.SpecialInstructions,
		&o.Total,
		&bill[0], &bill[1], &bill[2], &bill[3], &bill[4], &bill[5], &bill[6],
		&ship[0], &ship[1], &ship[2], &ship[3], &ship[4], &ship[5], &ship[6],
	)
	if err != nil {
		return models.Order{}, err
	}
	o.BillAddress = toAddress(bill)
	o.ShipAddress = toAddress(ship)
	return o, nil
}

func toAddress(fields [7]*string) models.Address {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return models.Address{
		FirstName: str(fields[0]),
		LastName:  str(fields[1]),
		Address1:  str(fields[2]),
		Address2:  str(fields[3]),
		City:      str(fields[4]),
		Zipcode:   str(fields[5]),
		Phone:     str(fields[6]),
	}
}

// CompletedOrdersSince implements reports.OrderSource: report-eligible
// orders completed at or after the cutoff, oldest first. A nil
// distributorIDs means unrestricted.
func (h *Handler) CompletedOrdersSince(ctx context.Context, since time.Time, distributorIDs []int64) ([]models.Order, error) {
	where := []string{
		"o.state = ANY($1)",
		"o.completed_at IS NOT NULL",
		"o.completed_at >= $2",
	}
	args := []interface{}{reportEligibleStates, since}

	if distributorIDs != nil {
		where = append(where, fmt.Sprintf("o.distributor_id = ANY($%d)", len(args)+1))
		args = append(args, distributorIDs)
	}

	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE %s
		ORDER BY o.completed_at, o.id
	`, orderColumns, orderJoins, strings.Join(where, " AND "))

	return h.queryOrders(ctx, query, args...)
}

// OutstandingBalanceOrders implements reports.OrderSource: report-eligible
// orders regardless of completion window, with the outstanding balance
// computed per order, ordered by ascending ID. Ineligible states never
// appear even when a balance remains.
func (h *Handler) OutstandingBalanceOrders(ctx context.Context, distributorIDs []int64) ([]models.Order, error) {
	where := []string{
		"o.state = ANY($1)",
	}
	args := []interface{}{reportEligibleStates}

	if distributorIDs != nil {
		where = append(where, fmt.Sprintf("o.distributor_id = ANY($%d)", len(args)+1))
		args = append(args, distributorIDs)
	}

	query := fmt.Sprintf(`
		SELECT %s, o.total - o.payment_total AS outstanding_balance
		%s
		WHERE %s
		ORDER BY o.id
	`, orderColumns, orderJoins, strings.Join(where, " AND "))

	rows, err := h.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var bill, ship [7]*string
		err := rows.Scan(
			&o.ID,
			&o.State,
			&o.CompletedAt,
			&o.DistributorID,
			&o.DistributorName,
			&o.OrderCycleID,
			&o.Email,
			&o.SpecialInstructions,
			&o.Total,
			&bill[0], &bill[1], &bill[2], &bill[3], &bill[4], &bill[5], &bill[6],
			&ship[0], &ship[1], &ship[2], &ship[3], &ship[4], &ship[5], &ship[6],
			&o.OutstandingBalance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.BillAddress = toAddress(bill)
		o.ShipAddress = toAddress(ship)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := h.attachMethods(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (h *Handler) queryOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := h.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := h.attachMethods(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachMethods loads payments and shipments for the order set, keeping
// their stored ordering.
func (h *Handler) attachMethods(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]*models.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	payRows, err := h.db.Pool.Query(ctx, `
		SELECT p.order_id, p.id, p.payment_method_id, pm.name
		FROM payments p
		JOIN payment_methods pm ON pm.id = p.payment_method_id
		WHERE p.order_id = ANY($1)
		ORDER BY p.order_id, p.id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query payments: %w", err)
	}
	defer payRows.Close()
	for payRows.Next() {
		var orderID int64
		var p models.Payment
		if err := payRows.Scan(&orderID, &p.ID, &p.MethodID, &p.MethodName); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		if o := index[orderID]; o != nil {
			o.Payments = append(o.Payments, p)
		}
	}
	if err := payRows.Err(); err != nil {
		return fmt.Errorf("error iterating payments: %w", err)
	}

	shipRows, err := h.db.Pool.Query(ctx, `
		SELECT s.order_id, s.id, s.shipping_method_id, sm.name
		FROM shipments s
		JOIN shipping_methods sm ON sm.id = s.shipping_method_id
		WHERE s.order_id = ANY($1)
		ORDER BY s.order_id, s.id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query shipments: %w", err)
	}
	defer shipRows.Close()
	for shipRows.Next() {
		var orderID int64
		var s models.Shipment
		if err := shipRows.Scan(&orderID, &s.ID, &s.MethodID, &s.MethodName); err != nil {
			return fmt.Errorf("failed to scan shipment: %w", err)
		}
		if o := index[orderID]; o != nil {
			o.Shipments = append(o.Shipments, s)
		}
	}
	if err := shipRows.Err(); err != nil {
		return fmt.Errorf("error iterating shipments: %w", err)
	}

	return nil
}

package reports

import (
	"context"
	"time"

	"github.com/freshroots/admin-service/internal/features"
	"github.com/freshroots/admin-service/internal/models"
)

// OrderSource supplies the base order sets the report scopes down from.
// Both methods must already exclude canceled orders and restrict states to
// complete and resumed. A nil distributorIDs means unrestricted; an empty
// slice means none.
type OrderSource interface {
	// CompletedOrdersSince returns report-eligible orders completed at or
	// after the given time, in completion order.
	CompletedOrdersSince(ctx context.Context, since time.Time, distributorIDs []int64) ([]models.Order, error)
	// OutstandingBalanceOrders returns report-eligible orders plus any
	// order carrying an outstanding balance regardless of completion
	// window, ordered by ascending ID.
	OutstandingBalanceOrders(ctx context.Context, distributorIDs []int64) ([]models.Order, error)
}

// Visibility resolves which distributors a principal may see
type Visibility interface {
	VisibleDistributorIDs(ctx context.Context, principal models.Principal) ([]int64, error)
}

// Report is the order cycle management report: permission-scoped order
// retrieval, in-memory filtering, and row projection.
type Report struct {
	source OrderSource
	vis    Visibility
	flags  features.Provider
	now    func() time.Time
}

// NewReport wires a report engine. A nil clock defaults to time.Now.
func NewReport(source OrderSource, vis Visibility, flags features.Provider, now func() time.Time) *Report {
	if now == nil {
		now = time.Now
	}
	return &Report{source: source, vis: vis, flags: flags, now: now}
}

// Orders returns the scoped base collection for the principal. With the
// customer balance feature on, the balance-aware variant is used instead
// of the trailing one month completion window.
func (r *Report) Orders(ctx context.Context, principal models.Principal) ([]models.Order, error) {
	distributorIDs, err := r.vis.VisibleDistributorIDs(ctx, principal)
	if err != nil {
		return nil, err
	}
	if distributorIDs != nil && len(distributorIDs) == 0 {
		return []models.Order{}, nil
	}

	if r.flags.Enabled(features.CustomerBalance, principal) {
		return r.source.OutstandingBalanceOrders(ctx, distributorIDs)
	}

	since := r.now().AddDate(0, -1, 0)
	return r.source.CompletedOrdersSince(ctx, since, distributorIDs)
}

// Run produces the report rows for a request: scope, filter, project.
func (r *Report) Run(ctx context.Context, principal models.Principal, req models.ReportRequest) ([][]any, error) {
	orders, err := r.Orders(ctx, principal)
	if err != nil {
		return nil, err
	}
	filtered := Filter(orders, FromRequest(req))
	return TableItems(filtered, req.ReportType), nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sells represents what an enterprise is allowed to sell and through whom
type Sells string

const (
	SellsNone        Sells = "none"
	SellsOwn         Sells = "own"
	SellsAny         Sells = "any"
	SellsUnspecified Sells = "unspecified"
)

// IsValid checks if the sells value is valid
func (s Sells) IsValid() bool {
	switch s {
	case SellsNone, SellsOwn, SellsAny, SellsUnspecified:
		return true
	default:
		return false
	}
}

// OrderState represents the state of an order
type OrderState string

const (
	OrderStateCart     OrderState = "cart"
	OrderStatePayment  OrderState = "payment"
	OrderStateComplete OrderState = "complete"
	OrderStateResumed  OrderState = "resumed"
	OrderStateCanceled OrderState = "canceled"
)

// ReportEligible returns true for states that appear in management reports.
// Canceled orders are always excluded.
func (s OrderState) ReportEligible() bool {
	return s == OrderStateComplete || s == OrderStateResumed
}

// ShopTrialLength is the grace period granted when an enterprise first
// opts into sells=own.
const ShopTrialLength = 30 * 24 * time.Hour

// Principal is the authenticated actor issuing a request. It is rebuilt
// from JWT claims plus an enterprise-role query on every request and is
// never persisted.
type Principal struct {
	UserID               int64   `json:"user_id"`
	Email                string  `json:"email"`
	Admin                bool    `json:"admin"`
	ManagedEnterpriseIDs []int64 `json:"managed_enterprise_ids"`
}

// Authenticated reports whether the principal came from a valid session.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// Manages returns true if the principal owns or manages the enterprise
func (p Principal) Manages(enterpriseID int64) bool {
	for _, id := range p.ManagedEnterpriseIDs {
		if id == enterpriseID {
			return true
		}
	}
	return false
}

// Enterprise is a tenant organization (producer or hub) in the marketplace
type Enterprise struct {
	ID                  int64      `json:"id" db:"id"`
	Name                string     `json:"name" db:"name"`
	Permalink           string     `json:"permalink" db:"permalink"`
	OwnerID             int64      `json:"owner_id" db:"owner_id"`
	ManagerIDs          []int64    `json:"manager_ids"`
	Sells               Sells      `json:"sells" db:"sells"`
	IsPrimaryProducer   bool       `json:"is_primary_producer" db:"is_primary_producer"`
	ProducerProfileOnly bool       `json:"producer_profile_only" db:"producer_profile_only"`
	ShopTrialStartDate  *time.Time `json:"shop_trial_start_date,omitempty" db:"shop_trial_start_date"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// TrialExpiry returns the end of the shop trial window, or nil if no
// trial was ever started.
func (e Enterprise) TrialExpiry() *time.Time {
	if e.ShopTrialStartDate == nil {
		return nil
	}
	expiry := e.ShopTrialStartDate.Add(ShopTrialLength)
	return &expiry
}

// Address holds billing or shipping contact details for an order
type Address struct {
	FirstName string `json:"first_name" db:"firstname"`
	LastName  string `json:"last_name" db:"lastname"`
	Address1  string `json:"address1" db:"address1"`
	Address2  string `json:"address2" db:"address2"`
	City      string `json:"city" db:"city"`
	Zipcode   string `json:"zipcode" db:"zipcode"`
	Phone     string `json:"phone" db:"phone"`
}

// Payment references the payment method used on an order
type Payment struct {
	ID         int64  `json:"id" db:"id"`
	MethodID   int64  `json:"payment_method_id" db:"payment_method_id"`
	MethodName string `json:"payment_method_name"`
}

// Shipment references the shipping method used on an order
type Shipment struct {
	ID         int64  `json:"id" db:"id"`
	MethodID   int64  `json:"shipping_method_id" db:"shipping_method_id"`
	MethodName string `json:"shipping_method_name"`
}

// Order is a persisted order as seen by the management report. Payments
// and shipments preserve their stored ordering.
type Order struct {
	ID                  int64           `json:"id" db:"id"`
	State               OrderState      `json:"state" db:"state"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	DistributorID       int64           `json:"distributor_id" db:"distributor_id"`
	DistributorName     string          `json:"distributor_name"`
	OrderCycleID        *int64          `json:"order_cycle_id,omitempty" db:"order_cycle_id"`
	Email               string          `json:"email" db:"email"`
	SpecialInstructions string          `json:"special_instructions" db:"special_instructions"`
	Total               decimal.Decimal `json:"total" db:"total"`
	OutstandingBalance  decimal.Decimal `json:"outstanding_balance"`
	BillAddress         Address         `json:"bill_address"`
	ShipAddress         Address         `json:"ship_address"`
	Payments            []Payment       `json:"payments"`
	Shipments           []Shipment      `json:"shipments"`
}

// OrderCycle is a bounded recurring window during which orders for a set
// of enterprises are collected.
type OrderCycle struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	CoordinatorID int64     `json:"coordinator_id" db:"coordinator_id"`
	OrdersCloseAt time.Time `json:"orders_close_at" db:"orders_close_at"`
}

// ProducerProperty links an enterprise to an existing property with a value
type ProducerProperty struct {
	ID           int64  `json:"id" db:"id"`
	EnterpriseID int64  `json:"enterprise_id" db:"enterprise_id"`
	PropertyID   int64  `json:"property_id" db:"property_id"`
	PropertyName string `json:"property_name"`
	Value        string `json:"value" db:"value"`
}

// Request/Response models

// ProducerPropertyAttributes is one nested property assignment. Only
// property names that already exist are attached; others are dropped.
type ProducerPropertyAttributes struct {
	PropertyName string `json:"property_name"`
	Value        string `json:"value"`
}

// EnterpriseParams carries the recognized attribute map for enterprise
// create and update requests. Pointer fields distinguish "absent" from
// zero values so the authorizer can strip rather than overwrite.
type EnterpriseParams struct {
	Name                         *string                               `json:"name,omitempty"`
	Permalink                    *string                               `json:"permalink,omitempty"`
	OwnerID                      *int64                                `json:"owner_id,omitempty"`
	Sells                        *Sells                                `json:"sells,omitempty"`
	UserIDs                      []int64                               `json:"user_ids,omitempty"`
	IsPrimaryProducer            *bool                                 `json:"is_primary_producer,omitempty"`
	ProducerProfileOnly          *bool                                 `json:"producer_profile_only,omitempty"`
	ProducerPropertiesAttributes map[string]ProducerPropertyAttributes `json:"producer_properties_attributes,omitempty"`
}

// CreateEnterpriseRequest represents a request to create an enterprise
type CreateEnterpriseRequest struct {
	Enterprise EnterpriseParams `json:"enterprise" binding:"required"`
}

// UpdateEnterpriseRequest represents a request to update an enterprise
type UpdateEnterpriseRequest struct {
	Enterprise EnterpriseParams `json:"enterprise" binding:"required"`
}

// SetSellsRequest represents a request to change the sells classification
type SetSellsRequest struct {
	Sells               Sells `json:"sells" binding:"required"`
	ProducerProfileOnly *bool `json:"producer_profile_only,omitempty"`
}

// BulkUpdateEnterprisesRequest updates several enterprises in one call.
// Each entry passes through the same authorizer as a single update.
type BulkUpdateEnterprisesRequest struct {
	Enterprises []BulkEnterpriseParams `json:"enterprises" binding:"required,min=1"`
}

// BulkEnterpriseParams is one entry of a bulk update
type BulkEnterpriseParams struct {
	ID         int64            `json:"id" binding:"required"`
	Enterprise EnterpriseParams `json:"enterprise"`
}

// ForOrderCycleRequest represents query parameters for listing the
// enterprises a user may act on within an order-cycle context
type ForOrderCycleRequest struct {
	OrderCycleID  *int64 `form:"order_cycle_id"`
	CoordinatorID *int64 `form:"coordinator_id"`
}

// ReportRequest represents query parameters for the order cycle
// management report
type ReportRequest struct {
	ReportType         string  `form:"report_type"`
	OrderCycleID       *int64  `form:"order_cycle_id"`
	PaymentMethodIn    []int64 `form:"payment_method_in"`
	PaymentMethodName  string  `form:"payment_method_name"`
	ShippingMethodIn   []int64 `form:"shipping_method_in"`
	ShippingMethodName string  `form:"shipping_method_name"`
}

// ReportResponse represents the report output: one fixed-width row tuple
// per order
type ReportResponse struct {
	ReportType string  `json:"report_type"`
	Rows       [][]any `json:"rows"`
}

// OutcomeResponse serializes a redirect-plus-flash outcome. The boundary
// (an admin SPA or gateway) performs the actual redirect.
type OutcomeResponse struct {
	RedirectTo string `json:"redirect_to"`
	NoticeKind string `json:"notice_kind"`
	Message    string `json:"message"`
}

// EnterpriseResponse wraps an enterprise with its outcome for mutations
type EnterpriseResponse struct {
	Enterprise Enterprise       `json:"enterprise"`
	Outcome    *OutcomeResponse `json:"outcome,omitempty"`
}

// EnterpriseListResponse represents a list of enterprises
type EnterpriseListResponse struct {
	Enterprises []Enterprise `json:"enterprises"`
	Total       int          `json:"total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries decorated field errors for an invalid
// nested record
type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/freshroots/admin-service/internal/enterprise"
	"github.com/freshroots/admin-service/internal/models"
	"github.com/freshroots/admin-service/internal/permissions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateEnterprise creates an enterprise. Non-admin creators always become
// the owner and get a management role; the sells classification is
// inferred unless the creator is a site admin.
func (h *Handler) CreateEnterprise(c *gin.Context) {
	principal, ok := h.CurrentPrincipal(c)
	if !ok {
		return
	}

	var req models.CreateEnterpriseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request data",
			Message: err.Error(),
		})
		return
	}

	params := req.Enterprise
	if params.Name == nil || *params.Name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Missing enterprise name",
			Message: "Enterprise name is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Owner cannot be delegated by ordinary users
	ownerID := principal.UserID
	if principal.Admin && params.OwnerID != nil {
		ownerID = *params.OwnerID
	}

	isPrimaryProducer := params.IsPrimaryProducer != nil && *params.IsPrimaryProducer

	ownsSelling, err := h.ownsSellingEnterprise(ctx, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create enterprise",
			Message: err.Error(),
		})
		return
	}

	e := models.Enterprise{
		Name:              *params.Name,
		OwnerID:           ownerID,
		Sells:             enterprise.DefaultSells(principal, params.Sells, isPrimaryProducer, ownsSelling),
		IsPrimaryProducer: isPrimaryProducer,
	}
	if params.Permalink != nil {
		e.Permalink = *params.Permalink
	}
	if params.ProducerProfileOnly != nil {
		e.ProducerProfileOnly = *params.ProducerProfileOnly
	}

	managerIDs := append([]int64{}, params.UserIDs...)
	if !principal.Admin && !containsID(managerIDs, principal.UserID) {
		// The creating user manages the new enterprise; admins are not
		// auto-enrolled.
		managerIDs = append(managerIDs, principal.UserID)
	}

	created, err := h.createEnterprise(ctx, e, managerIDs)
	if err != nil {
		h.log.Error("enterprise create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create enterprise",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.EnterpriseResponse{Enterprise: created})
}

// UpdateEnterprise applies an authorized update to an enterprise. Fields
// the principal may not change are silently dropped for managers; an
// unrelated principal is rejected outright.
func (h *Handler) UpdateEnterprise(c *gin.Context) {
	principal, ok := h.CurrentPrincipal(c)
	if !ok {
		return
	}

	id, ok := enterpriseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateEnterpriseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request data",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	target, err := h.getEnterprise(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEnterpriseNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "Enterprise not found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load enterprise",
			Message: err.Error(),
		})
		return
	}

	applied, err := enterprise.AuthorizeUpdate(principal, target, req.Enterprise)
	if err != nil {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Unauthorized",
			Message: "You do not have permission to update this enterprise",
		})
		return
	}

	var properties []models.ProducerProperty
	if applied.ProducerPropertiesAttributes != nil {
		existing, err := h.existingPropertyIDs(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to update enterprise",
				Message: err.Error(),
			})
			return
		}
		properties = enterprise.MatchProducerProperties(applied.ProducerPropertiesAttributes, existing)
	}

	if err := h.applyEnterpriseParams(ctx, id, applied, properties); err != nil {
		h.log.Error("enterprise update failed", zap.Int64("enterprise_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to update enterprise",
			Message: err.Error(),
		})
		return
	}

	updated, err := h.getEnterprise(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load enterprise",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.EnterpriseResponse{Enterprise: updated})
}

// SetSells runs the sells state machine for an enterprise and persists the
// resulting change, if any.
func (h *Handler) SetSells(c *gin.Context) {
	principal, ok := h.CurrentPrincipal(c)
	if !ok {
		return
	}

	id, ok := enterpriseIDParam(c)
	if !ok {
		return
	}

	var req models.SetSellsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request data",
			Message: err.Error(),
		})
		return
	}
	if !req.Sells.IsValid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid sells value",
			Message: "Sells must be one of: none, own, any, unspecified",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	target, err := h.getEnterprise(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEnterpriseNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "Enterprise not found",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load enterprise",
			Message: err.Error(),
		})
		return
	}

	outcome := enterprise.SetSells(principal, target, req.Sells, req.ProducerProfileOnly, time.Now())

	if outcome.Applied() {
		if err := h.applySellsChange(ctx, id, *outcome.Apply); err != nil {
			h.log.Error("sells change failed", zap.Int64("enterprise_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to apply sells change",
				Message: err.Error(),
			})
			return
		}
	}

	status := http.StatusOK
	if outcome.Destination == enterprise.DestinationUnauthorized {
		status = http.StatusForbidden
	}
	c.JSON(status, outcomeResponse(outcome))
}

// BulkUpdateEnterprises applies the update authorizer to several
// enterprises in one request. Any enterprise the principal has no relation
// to aborts the whole request before changes are applied.
func (h *Handler) BulkUpdateEnterprises(c *gin.Context) {
	principal, ok := h.CurrentPrincipal(c)
	if !ok {
		return
	}

	var req models.BulkUpdateEnterprisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request data",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	type pending struct {
		id      int64
		applied models.EnterpriseParams
	}
	var updates []pending

	for _, entry := range req.Enterprises {
		target, err := h.getEnterprise(ctx, entry.ID)
		if err != nil {
			if errors.Is(err, ErrEnterpriseNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:   "Enterprise not found",
					Message: err.Error(),
				})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to load enterprise",
				Message: err.Error(),
			})
			return
		}

		applied, err := enterprise.AuthorizeUpdate(principal, target, entry.Enterprise)
		if err != nil {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "Unauthorized",
				Message: "You do not have permission to update one of these enterprises",
			})
			return
		}
		updates = append(updates, pending{id: entry.ID, applied: applied})
	}

	var results []models.Enterprise
	for _, u := range updates {
		if err := h.applyEnterpriseParams(ctx, u.id, u.applied, nil); err != nil {
			h.log.Error("bulk enterprise update failed", zap.Int64("enterprise_id", u.id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to update enterprises",
				Message: err.Error(),
			})
			return
		}
		updated, err := h.getEnterprise(ctx, u.id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to load enterprise",
				Message: err.Error(),
			})
			return
		}
		results = append(results, updated)
	}

	c.JSON(http.StatusOK, models.EnterpriseListResponse{Enterprises: results, Total: len(results)})
}

// ForOrderCycle lists the enterprises the principal may act on, optionally
// scoped to an order cycle and/or a coordinating enterprise. References
// that do not resolve are treated as absent, not as errors.
func (h *Handler) ForOrderCycle(c *gin.Context) {
	principal, ok := h.CurrentPrincipal(c)
	if !ok {
		return
	}

	var req models.ForOrderCycleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scope := permissions.Scope{}
	if req.OrderCycleID != nil {
		exists, err := h.orderCycleExists(ctx, *req.OrderCycleID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to resolve order cycle",
				Message: err.Error(),
			})
			return
		}
		if exists {
			scope.OrderCycleID = req.OrderCycleID
		}
	}
	if req.CoordinatorID != nil {
		exists, err := h.enterpriseExists(ctx, *req.CoordinatorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to resolve coordinator",
				Message: err.Error(),
			})
			return
		}
		if exists {
			scope.CoordinatorID = req.CoordinatorID
		}
	}

	enterprises, err := h.resolver.EnterprisesFor(ctx, principal, scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to resolve enterprises",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.EnterpriseListResponse{Enterprises: enterprises, Total: len(enterprises)})
}

// enterpriseIDParam parses the enterprise_id path parameter
func enterpriseIDParam(c *gin.Context) (int64, bool) {
	id, err := parseID(c.Param("enterprise_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid enterprise ID",
			Message: "Enterprise ID must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/freshroots/admin-service/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetOrderCycleManagementReport produces the order cycle management report
// for the current principal: permission-scoped orders, narrowed by the
// requested filters, projected into fixed-shape rows.
func (h *Handler) GetOrderCycleManagementReport(c *gin.Context) {
	principal, ok := h.CurrentPrincipal(c)
	if !ok {
		return
	}

	var req models.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := h.report.Run(ctx, principal, req)
	if err != nil {
		h.log.Error("report query failed", zap.Int64("user_id", principal.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to generate report",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ReportResponse{
		ReportType: req.ReportType,
		Rows:       rows,
	})
}

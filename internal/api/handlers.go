package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/freshroots/admin-service/internal/calculator"
	"github.com/freshroots/admin-service/internal/db"
	"github.com/freshroots/admin-service/internal/enterprise"
	"github.com/freshroots/admin-service/internal/features"
	"github.com/freshroots/admin-service/internal/models"
	"github.com/freshroots/admin-service/internal/permissions"
	"github.com/freshroots/admin-service/internal/reports"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the database connection and provides HTTP handlers
type Handler struct {
	db          *db.Database
	log         *zap.Logger
	flags       features.Provider
	calculators *calculator.Registry
	resolver    *permissions.Resolver
	report      *reports.Report
}

// NewHandler creates a new handler instance
func NewHandler(database *db.Database, log *zap.Logger) *Handler {
	h := &Handler{
		db:          database,
		log:         log,
		flags:       features.EnvProvider{},
		calculators: calculator.NewRegistry(),
	}
	h.resolver = permissions.NewResolver(h)
	h.report = reports.NewReport(h, h.resolver, h.flags, nil)
	return h
}

// Health checks the health of the service
func (h *Handler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Database not connected",
			Message: "Database connection was not established at startup",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Database connection failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "admin-service",
		"timestamp": time.Now().UTC(),
	})
}

// CurrentPrincipal rebuilds the principal for this request from JWT
// claims plus an enterprise-role lookup. Managed enterprise IDs are
// queried fresh every time rather than cached on the session.
func (h *Handler) CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Invalid user",
			Message: "Could not extract user ID from token",
		})
		return models.Principal{}, false
	}

	email, _ := c.Get("email")
	emailStr, _ := email.(string)

	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Database not connected",
			Message: "Database connection was not established at startup",
		})
		return models.Principal{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	managedIDs, err := h.managedEnterpriseIDs(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to resolve permissions",
			Message: err.Error(),
		})
		return models.Principal{}, false
	}

	return models.Principal{
		UserID:               userID,
		Email:                emailStr,
		Admin:                IsSiteAdmin(c),
		ManagedEnterpriseIDs: managedIDs,
	}, true
}

// outcomeResponse maps a sells-transition outcome to its JSON form
func outcomeResponse(o enterprise.Outcome) models.OutcomeResponse {
	return models.OutcomeResponse{
		RedirectTo: o.Destination,
		NoticeKind: o.NoticeKind,
		Message:    o.Message,
	}
}

// parseID parses a positive integer identifier
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// calculatorOptions reads number-localization settings from the
// environment
func calculatorOptions() calculator.Options {
	enabled := false
	switch os.Getenv("LOCALIZE_NUMBERS") {
	case "1", "true", "on":
		enabled = true
	}
	return calculator.Options{
		LocalizedNumbers: enabled,
		DecimalSeparator: os.Getenv("NUMBER_DECIMAL_SEPARATOR"),
	}
}

package api

import (
	"net/http"

	"github.com/freshroots/admin-service/internal/calculator"
	"github.com/freshroots/admin-service/internal/models"
	"github.com/gin-gonic/gin"
)

// ValidateCalculatorRequest carries a calculator as embedded in a payment
// or shipping method form
type ValidateCalculatorRequest struct {
	Calculator calculator.Calculator `json:"calculator" binding:"required"`
}

// ListCalculators returns the registered calculator variants and their
// field schemas, for building method forms.
func (h *Handler) ListCalculators(c *gin.Context) {
	type fieldInfo struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	type variantInfo struct {
		Tag    string      `json:"tag"`
		Fields []fieldInfo `json:"fields"`
	}

	var out []variantInfo
	for _, tag := range h.calculators.Tags() {
		v, _ := h.calculators.Lookup(tag)
		info := variantInfo{Tag: v.Tag}
		for _, f := range v.Fields {
			info.Fields = append(info.Fields, fieldInfo{Name: f.Name, Label: f.Label})
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"calculators": out})
}

// ValidateCalculator validates the embedded calculator of a method form.
// Only the selected variant's fields are checked; failures come back as
// decorated messages in field declaration order.
func (h *Handler) ValidateCalculator(c *gin.Context) {
	var req ValidateCalculatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request data",
			Message: err.Error(),
		})
		return
	}

	fieldErrs, err := h.calculators.Validate(req.Calculator, calculatorOptions())
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Unknown calculator type",
			Message: err.Error(),
		})
		return
	}

	if len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Error:  "Calculator validation failed",
			Errors: calculator.Messages(fieldErrs),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Calculator is valid"})
}

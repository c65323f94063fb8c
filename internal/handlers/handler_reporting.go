package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/SscSPs/licoreria_pos/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// RegisterReportingRoutes registers routes related to reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := &reportingHandler{reportingService: reportingService}

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/dashboard", h.getDashboard)
		reportingGroup.GET("/sales", h.getSalesSeries)
		reportingGroup.GET("/purchases", h.getPurchaseSeries)
		reportingGroup.GET("/top-products", h.getTopProducts)
		reportingGroup.GET("/categories", h.getSalesByCategory)
		reportingGroup.GET("/financial-summary", h.getFinancialSummary)
		reportingGroup.GET("/comparison", h.getComparison)
		reportingGroup.GET("/hourly", h.getHourlySales)
	}
}

func bindQuery(c *gin.Context, params any, op string) bool {
	if err := c.ShouldBindQuery(params); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind query params for "+op, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return false
	}
	return true
}

// getDashboard godoc
// @Summary Dashboard figures
// @Description Catalog, today's and this month's sales, pending credits and the till status.
// @Tags reports
// @Produce json
// @Success 200 {object} domain.Dashboard
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build dashboard"
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *reportingHandler) getDashboard(c *gin.Context) {
	dashboard, err := h.reportingService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// getSalesSeries godoc
// @Summary Sales per period
// @Tags reports
// @Produce json
// @Param period query string false "day, week or month" default(day)
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {array} domain.SalesBucket
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build sales report"
// @Security BearerAuth
// @Router /reports/sales [get]
func (h *reportingHandler) getSalesSeries(c *gin.Context) {
	var params dto.SeriesParams
	if !bindQuery(c, &params, "SalesSeries") {
		return
	}
	granularity, err := domain.ParseGranularity(params.Period)
	if err != nil {
		respondError(c, err, "Failed to build sales report")
		return
	}
	series, err := h.reportingService.SalesSeries(c.Request.Context(), granularity, params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to build sales report")
		return
	}
	c.JSON(http.StatusOK, series)
}

// getPurchaseSeries godoc
// @Summary Purchases per period
// @Tags reports
// @Produce json
// @Param period query string false "day, week or month" default(day)
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {array} domain.PurchaseBucket
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build purchases report"
// @Security BearerAuth
// @Router /reports/purchases [get]
func (h *reportingHandler) getPurchaseSeries(c *gin.Context) {
	var params dto.SeriesParams
	if !bindQuery(c, &params, "PurchaseSeries") {
		return
	}
	granularity, err := domain.ParseGranularity(params.Period)
	if err != nil {
		respondError(c, err, "Failed to build purchases report")
		return
	}
	series, err := h.reportingService.PurchaseSeries(c.Request.Context(), granularity, params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to build purchases report")
		return
	}
	c.JSON(http.StatusOK, series)
}

// getTopProducts godoc
// @Summary Best selling products
// @Tags reports
// @Produce json
// @Param limit query int false "Number of products" default(10)
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {array} domain.ProductRanking
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to rank products"
// @Security BearerAuth
// @Router /reports/top-products [get]
func (h *reportingHandler) getTopProducts(c *gin.Context) {
	var params dto.TopProductsParams
	if !bindQuery(c, &params, "TopProducts") {
		return
	}
	ranking, err := h.reportingService.TopProducts(c.Request.Context(), params.Limit, params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to rank products")
		return
	}
	c.JSON(http.StatusOK, ranking)
}

// getSalesByCategory godoc
// @Summary Sales per category
// @Tags reports
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {array} domain.CategoryTotal
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build category report"
// @Security BearerAuth
// @Router /reports/categories [get]
func (h *reportingHandler) getSalesByCategory(c *gin.Context) {
	var params dto.ReportRangeParams
	if !bindQuery(c, &params, "SalesByCategory") {
		return
	}
	totals, err := h.reportingService.SalesByCategory(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to build category report")
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getFinancialSummary godoc
// @Summary Income and expenses
// @Description Defaults to the current month.
// @Tags reports
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} domain.FinancialSummary
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build financial summary"
// @Security BearerAuth
// @Router /reports/financial-summary [get]
func (h *reportingHandler) getFinancialSummary(c *gin.Context) {
	var params dto.ReportRangeParams
	if !bindQuery(c, &params, "FinancialSummary") {
		return
	}
	summary, err := h.reportingService.FinancialSummary(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to build financial summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getComparison godoc
// @Summary Period over period sales
// @Tags reports
// @Produce json
// @Success 200 {object} domain.Comparison
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compare periods"
// @Security BearerAuth
// @Router /reports/comparison [get]
func (h *reportingHandler) getComparison(c *gin.Context) {
	comparison, err := h.reportingService.Comparison(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compare periods")
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// getHourlySales godoc
// @Summary Sales per hour
// @Tags reports
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), today when absent"
// @Success 200 {array} domain.HourlyBucket
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build hourly report"
// @Security BearerAuth
// @Router /reports/hourly [get]
func (h *reportingHandler) getHourlySales(c *gin.Context) {
	var params dto.HourlyParams
	if !bindQuery(c, &params, "HourlySales") {
		return
	}
	hours, err := h.reportingService.HourlySales(c.Request.Context(), params.Date)
	if err != nil {
		respondError(c, err, "Failed to build hourly report")
		return
	}
	c.JSON(http.StatusOK, hours)
}

package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/SscSPs/licoreria_pos/internal/middleware"
	"github.com/gin-gonic/gin"
)

// commerceHandler handles the catalog, sales, purchases and credits.
type commerceHandler struct {
	commerceService portssvc.CommerceSvcFacade
	currency        string
}

// RegisterCommerceRoutes registers routes related to sales, purchases and credits.
func RegisterCommerceRoutes(rg *gin.RouterGroup, currency string, commerce portssvc.CommerceSvcFacade) {
	h := &commerceHandler{commerceService: commerce, currency: currency}

	products := rg.Group("/products")
	{
		products.POST("", h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:productID", h.getProduct)
		products.PUT("/:productID", h.updateProduct)
	}
	sales := rg.Group("/sales")
	{
		sales.POST("", h.registerSale)
		sales.GET("", h.listSales)
		sales.GET("/:saleID", h.getSale)
	}
	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.registerPurchase)
		purchases.GET("", h.listPurchases)
		purchases.GET("/:purchaseID", h.getPurchase)
	}
	credits := rg.Group("/credits")
	{
		credits.GET("", h.listCredits)
		credits.GET("/stats", h.creditStats)
		credits.GET("/customers/:customer", h.customerCredits)
		credits.GET("/:creditID", h.getCredit)
		credits.POST("/:creditID/payments", h.registerCreditPayment)
	}
}

// createProduct godoc
// @Summary Add a product
// @Tags products
// @Accept json
// @Produce json
// @Param product body dto.CreateProductRequest true "Product details"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Product name already used"
// @Failure 500 {object} map[string]string "Failed to create product"
// @Security BearerAuth
// @Router /products [post]
func (h *commerceHandler) createProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateProduct", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	product, err := h.commerceService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// listProducts godoc
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list products"
// @Security BearerAuth
// @Router /products [get]
func (h *commerceHandler) listProducts(c *gin.Context) {
	products, err := h.commerceService.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// getProduct godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param productID path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string "Invalid product id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Failed to read product"
// @Security BearerAuth
// @Router /products/{productID} [get]
func (h *commerceHandler) getProduct(c *gin.Context) {
	productID, ok := pathID(c, "productID")
	if !ok {
		return
	}
	product, err := h.commerceService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err, "Failed to read product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// updateProduct godoc
// @Summary Update a product
// @Description Replaces name, category, price and stock. MinStock is kept when omitted.
// @Tags products
// @Accept json
// @Produce json
// @Param productID path int true "Product ID"
// @Param product body dto.UpdateProductRequest true "Product details"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Product name already used"
// @Failure 500 {object} map[string]string "Failed to update product"
// @Security BearerAuth
// @Router /products/{productID} [put]
func (h *commerceHandler) updateProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	productID, ok := pathID(c, "productID")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateProduct", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	product, err := h.commerceService.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// registerSale godoc
// @Summary Register a sale
// @Description Records a ticket against the open session, decrements stock and derives the till movements.
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body dto.RegisterSaleRequest true "Ticket"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "No open session"
// @Failure 500 {object} map[string]string "Failed to register sale"
// @Security BearerAuth
// @Router /sales [post]
func (h *commerceHandler) registerSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c)
	if !ok {
		return
	}

	receipt, err := h.commerceService.RegisterSale(c.Request.Context(), req, operatorID)
	if err != nil {
		respondError(c, err, "Failed to register sale")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSaleResponse(receipt, h.currency))
}

// listSales godoc
// @Summary List sales
// @Description Tickets of the calendar range, newest first. Both bounds default to today.
// @Tags sales
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {array} domain.Sale
// @Failure 400 {object} map[string]string "Invalid range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list sales"
// @Security BearerAuth
// @Router /sales [get]
func (h *commerceHandler) listSales(c *gin.Context) {
	var params dto.SaleListParams
	if !bindQuery(c, &params, "ListSales") {
		return
	}
	sales, err := h.commerceService.ListSales(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to list sales")
		return
	}
	c.JSON(http.StatusOK, sales)
}

// getSale godoc
// @Summary Get a sale with its items
// @Tags sales
// @Produce json
// @Param saleID path int true "Sale ID"
// @Success 200 {object} domain.Sale
// @Failure 400 {object} map[string]string "Invalid sale id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 500 {object} map[string]string "Failed to read sale"
// @Security BearerAuth
// @Router /sales/{saleID} [get]
func (h *commerceHandler) getSale(c *gin.Context) {
	saleID, ok := pathID(c, "saleID")
	if !ok {
		return
	}
	sale, err := h.commerceService.GetSale(c.Request.Context(), saleID)
	if err != nil {
		respondError(c, err, "Failed to read sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// registerPurchase godoc
// @Summary Register a purchase
// @Description Records goods, supplies or an expense. The till movement is only derived while a session is open.
// @Tags purchases
// @Accept json
// @Produce json
// @Param purchase body dto.RegisterPurchaseRequest true "Purchase"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to register purchase"
// @Security BearerAuth
// @Router /purchases [post]
func (h *commerceHandler) registerPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterPurchase", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c)
	if !ok {
		return
	}

	receipt, err := h.commerceService.RegisterPurchase(c.Request.Context(), req, operatorID)
	if err != nil {
		respondError(c, err, "Failed to register purchase")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPurchaseResponse(receipt, h.currency))
}

// listPurchases godoc
// @Summary List purchases
// @Description Newest first, without items.
// @Tags purchases
// @Produce json
// @Param kind query string false "GOODS, SUPPLIES or EXPENSE"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param search query string false "Part of the supplier or description"
// @Param limit query int false "Page size" minimum(1) maximum(500)
// @Success 200 {array} domain.Purchase
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list purchases"
// @Security BearerAuth
// @Router /purchases [get]
func (h *commerceHandler) listPurchases(c *gin.Context) {
	var params dto.PurchaseListParams
	if !bindQuery(c, &params, "ListPurchases") {
		return
	}
	purchases, err := h.commerceService.ListPurchases(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list purchases")
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// getPurchase godoc
// @Summary Get a purchase with its items
// @Tags purchases
// @Produce json
// @Param purchaseID path int true "Purchase ID"
// @Success 200 {object} domain.Purchase
// @Failure 400 {object} map[string]string "Invalid purchase id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 500 {object} map[string]string "Failed to read purchase"
// @Security BearerAuth
// @Router /purchases/{purchaseID} [get]
func (h *commerceHandler) getPurchase(c *gin.Context) {
	purchaseID, ok := pathID(c, "purchaseID")
	if !ok {
		return
	}
	purchase, err := h.commerceService.GetPurchase(c.Request.Context(), purchaseID)
	if err != nil {
		respondError(c, err, "Failed to read purchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// listCredits godoc
// @Summary List credit accounts
// @Description Newest first. Status is ALL, OUTSTANDING, PENDING, PARTIAL or PAID.
// @Tags credits
// @Produce json
// @Param status query string false "Status filter" default(ALL)
// @Param search query string false "Part of the customer name or phone"
// @Success 200 {array} domain.CreditAccount
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list credits"
// @Security BearerAuth
// @Router /credits [get]
func (h *commerceHandler) listCredits(c *gin.Context) {
	var params dto.CreditListParams
	if !bindQuery(c, &params, "ListCredits") {
		return
	}
	credits, err := h.commerceService.ListCredits(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list credits")
		return
	}
	c.JSON(http.StatusOK, credits)
}

// creditStats godoc
// @Summary Summarize the receivables
// @Description Unpaid and overdue accounts plus what was collected this month.
// @Tags credits
// @Produce json
// @Success 200 {object} dto.CreditStatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to summarize credits"
// @Security BearerAuth
// @Router /credits/stats [get]
func (h *commerceHandler) creditStats(c *gin.Context) {
	stats, err := h.commerceService.CreditStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to summarize credits")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditStatsResponse(stats, h.currency))
}

// customerCredits godoc
// @Summary List the credits of one customer
// @Tags credits
// @Produce json
// @Param customer path string true "Customer name"
// @Success 200 {object} domain.CustomerCredits
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No credits for the customer"
// @Failure 500 {object} map[string]string "Failed to list customer credits"
// @Security BearerAuth
// @Router /credits/customers/{customer} [get]
func (h *commerceHandler) customerCredits(c *gin.Context) {
	summary, err := h.commerceService.CustomerCredits(c.Request.Context(), c.Param("customer"))
	if err != nil {
		respondError(c, err, "Failed to list customer credits")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getCredit godoc
// @Summary Get a credit account
// @Tags credits
// @Produce json
// @Param creditID path int true "Credit ID"
// @Success 200 {object} domain.CreditAccount
// @Failure 400 {object} map[string]string "Invalid credit id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit not found"
// @Failure 500 {object} map[string]string "Failed to read credit"
// @Security BearerAuth
// @Router /credits/{creditID} [get]
func (h *commerceHandler) getCredit(c *gin.Context) {
	creditID, ok := pathID(c, "creditID")
	if !ok {
		return
	}
	credit, err := h.commerceService.GetCreditAccount(c.Request.Context(), creditID)
	if err != nil {
		respondError(c, err, "Failed to read credit")
		return
	}
	c.JSON(http.StatusOK, credit)
}

// registerCreditPayment godoc
// @Summary Collect a credit payment
// @Description Applies a payment to a credit account. The money entering the till is recorded while a session is open.
// @Tags credits
// @Accept json
// @Produce json
// @Param creditID path int true "Credit ID"
// @Param payment body dto.CreditPaymentRequest true "Payment"
// @Success 201 {object} dto.CreditPaymentResponse
// @Failure 400 {object} map[string]string "Invalid input or amount above the balance"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit not found"
// @Failure 500 {object} map[string]string "Failed to register payment"
// @Security BearerAuth
// @Router /credits/{creditID}/payments [post]
func (h *commerceHandler) registerCreditPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	creditID, ok := pathID(c, "creditID")
	if !ok {
		return
	}
	var req dto.CreditPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterCreditPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c)
	if !ok {
		return
	}

	receipt, err := h.commerceService.RegisterCreditPayment(c.Request.Context(), creditID, req, operatorID)
	if err != nil {
		respondError(c, err, "Failed to register payment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCreditPaymentResponse(receipt, h.currency))
}

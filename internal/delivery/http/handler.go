package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trolley/backend/internal/domain"
	"github.com/trolley/backend/internal/usecase"
)

const serviceName = "trolley-backend"

// PriceInvalidator drops cached prices for a store whose listing changed
type PriceInvalidator interface {
	InvalidateStore(storeID string)
}

// HandlerDeps groups the handler's collaborators. Prices may be nil when
// store prices are not cached. Version is reported by the health check.
type HandlerDeps struct {
	Version            string
	Lists              *usecase.ListService
	Listings           domain.PriceRepository
	Prices             PriceInvalidator
	Extractor          *usecase.SizeExtractor
	AutoMatchTolerance float64
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	version   string
	lists     *usecase.ListService
	listings  domain.PriceRepository
	prices    PriceInvalidator
	extractor *usecase.SizeExtractor
	tolerance float64
}

// NewHandler creates a new HTTP handler
func NewHandler(deps HandlerDeps) *Handler {
	extractor := deps.Extractor
	if extractor == nil {
		extractor = usecase.NewSizeExtractor(false)
	}
	tolerance := deps.AutoMatchTolerance
	if tolerance <= 0 {
		tolerance = domain.DefaultAutoMatchTolerance
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		version:   version,
		lists:     deps.Lists,
		listings:  deps.Listings,
		prices:    deps.Prices,
		extractor: extractor,
		tolerance: tolerance,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": h.version,
	})
}

// CreateList handles POST /lists
func (h *Handler) CreateList(c *gin.Context) {
	if h.lists == nil {
		notConfigured(c)
		return
	}

	var list domain.ShoppingList
	if err := c.ShouldBindJSON(&list); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.lists.CreateList(c.Request.Context(), &list)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetList handles GET /lists/:id
func (h *Handler) GetList(c *gin.Context) {
	if h.lists == nil {
		notConfigured(c)
		return
	}

	list, err := h.lists.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SwitchStoreRequest is the body of POST /lists/:id/switch-store
type SwitchStoreRequest struct {
	StoreID string `json:"storeId" binding:"required"`
}

// SwitchStore handles POST /lists/:id/switch-store
func (h *Handler) SwitchStore(c *gin.Context) {
	if h.lists == nil {
		notConfigured(c)
		return
	}

	var req SwitchStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.lists.SwitchStore(c.Request.Context(), c.Param("id"), req.StoreID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReplaceStorePricesRequest is the body of PUT /stores/:storeId/prices
type ReplaceStorePricesRequest struct {
	Listings []domain.StoreListing `json:"listings" binding:"dive"`
}

// ReplaceStorePrices handles PUT /stores/:storeId/prices
func (h *Handler) ReplaceStorePrices(c *gin.Context) {
	if h.listings == nil {
		notConfigured(c)
		return
	}

	var req ReplaceStorePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	storeID := c.Param("storeId")
	for i := range req.Listings {
		req.Listings[i].StoreID = storeID
	}

	if err := h.listings.ReplaceStorePrices(c.Request.Context(), storeID, req.Listings); err != nil {
		respondError(c, err)
		return
	}
	if h.prices != nil {
		h.prices.InvalidateStore(storeID)
	}

	c.JSON(http.StatusOK, gin.H{
		"storeId":  storeID,
		"listings": len(req.Listings),
	})
}

// respondError maps domain errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrListNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrPriceLookupFailed),
		errors.Is(err, domain.ErrPriceFeedFailure),
		errors.Is(err, domain.ErrStoreNotFound):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notConfigured(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service not configured"})
}

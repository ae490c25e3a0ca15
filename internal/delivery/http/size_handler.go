package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trolley/backend/internal/domain"
	"github.com/trolley/backend/internal/usecase"
)

// Size endpoints never fail on unparsable sizes: the result is null instead.

type sizeRequest struct {
	Size string `json:"size" binding:"required"`
}

type sizePairRequest struct {
	A string `json:"a" binding:"required"`
	B string `json:"b" binding:"required"`
}

type closestRequest struct {
	Target     string   `json:"target" binding:"required"`
	Candidates []string `json:"candidates"`
	Tolerance  float64  `json:"tolerance" binding:"gte=0,lte=1"`
}

type convertRequest struct {
	Size string `json:"size" binding:"required"`
	Unit string `json:"unit" binding:"required"`
}

type sizesRequest struct {
	Sizes    []string        `json:"sizes"`
	Category domain.Category `json:"category" binding:"omitempty,oneof=volume weight count"`
}

type pricePerUnitRequest struct {
	Price float64 `json:"price" binding:"gte=0"`
	Size  string  `json:"size" binding:"required"`
}

type extractRequest struct {
	Title string `json:"title" binding:"required"`
}

type bestValueRequest struct {
	Options []domain.StorePrice `json:"options"`
}

// ParseSize handles POST /sizes/parse
func (h *Handler) ParseSize(c *gin.Context) {
	var req sizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if p, ok := usecase.Parse(req.Size); ok {
		c.JSON(http.StatusOK, gin.H{"result": p})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": nil})
}

// NormalizeSize handles POST /sizes/normalize
func (h *Handler) NormalizeSize(c *gin.Context) {
	var req sizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":    usecase.Normalize(req.Size),
		"unitLabel": usecase.UnitLabel(req.Size),
	})
}

// CompareSizes handles POST /sizes/compare
func (h *Handler) CompareSizes(c *gin.Context) {
	var req sizePairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var diff *float64
	if d, ok := usecase.PercentDiff(req.A, req.B); ok {
		diff = &d
	}
	c.JSON(http.StatusOK, gin.H{
		"comparable":  usecase.AreComparable(req.A, req.B),
		"equivalent":  usecase.AreEquivalent(req.A, req.B),
		"percentDiff": diff,
	})
}

// FindClosest handles POST /sizes/closest. A zero tolerance uses the
// configured auto-match tolerance.
func (h *Handler) FindClosest(c *gin.Context) {
	var req closestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = h.tolerance
	}
	c.JSON(http.StatusOK, usecase.FindClosestWithTolerance(req.Target, req.Candidates, tolerance))
}

// ConvertSize handles POST /sizes/convert
func (h *Handler) ConvertSize(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if converted, ok := usecase.ConvertSize(req.Size, req.Unit); ok {
		c.JSON(http.StatusOK, gin.H{"result": converted})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": nil})
}

// RankSizes handles POST /sizes/rank
func (h *Handler) RankSizes(c *gin.Context) {
	var req sizesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": usecase.RankByValue(req.Sizes)})
}

// GroupSizes handles POST /sizes/group
func (h *Handler) GroupSizes(c *gin.Context) {
	var req sizesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, usecase.GroupByCategory(req.Sizes))
}

// SuggestSize handles POST /sizes/suggest
func (h *Handler) SuggestSize(c *gin.Context) {
	var req sizesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if size, ok := usecase.SuggestStandardSize(req.Sizes, req.Category); ok {
		c.JSON(http.StatusOK, gin.H{"result": size})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": nil})
}

// PricePerUnit handles POST /sizes/price-per-unit
func (h *Handler) PricePerUnit(c *gin.Context) {
	var req pricePerUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var ppu *float64
	if v, ok := usecase.PricePerUnit(req.Price, req.Size); ok {
		ppu = &v
	}
	c.JSON(http.StatusOK, gin.H{
		"pricePerUnit": ppu,
		"unitLabel":    usecase.UnitLabel(req.Size),
	})
}

// ExtractSize handles POST /sizes/extract
func (h *Handler) ExtractSize(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var size *string
	if s, ok := h.extractor.ExtractSize(req.Title); ok {
		size = &s
	}
	c.JSON(http.StatusOK, gin.H{
		"size": size,
		"name": h.extractor.StripSize(req.Title),
	})
}

// BestValue handles POST /sizes/best-value
func (h *Handler) BestValue(c *gin.Context) {
	var req bestValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": usecase.RankByPricePerUnit(req.Options)})
}

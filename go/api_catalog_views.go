package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopwave-catalog/catalog"
	"shopwave-catalog/engine"
)

// snapshot loads the current result set, narrowed by the optional category query param.
func (api *ProductsAPI) snapshot(c *gin.Context) ([]catalog.Record, bool) {
	records, err := api.engine.Snapshot(c.Request.Context(), c.Query("category"))
	if err != nil {
		storeError(c, err)
		return nil, false
	}
	return records, true
}

// SortedCatalog handles GET /v1/catalog/sorted?by=price|rating&order=asc|desc&category=.
// Rating order is always highest first; products without a rating rank as 0.
func (api *ProductsAPI) SortedCatalog(c *gin.Context) {
	by := c.DefaultQuery("by", "price")
	order := c.DefaultQuery("order", "asc")
	if order != "asc" && order != "desc" {
		badRequest(c, "query param order must be asc or desc")
		return
	}

	var sortFn func([]catalog.Record) []catalog.Record
	switch by {
	case "price":
		ascending := order == "asc"
		sortFn = func(r []catalog.Record) []catalog.Record { return engine.SortByPrice(r, ascending) }
	case "rating":
		if c.Query("order") == "asc" {
			badRequest(c, "rating order is descending only")
			return
		}
		order = "desc"
		sortFn = engine.SortByRating
	default:
		badRequest(c, "query param by must be price or rating")
		return
	}

	records, ok := api.snapshot(c)
	if !ok {
		return
	}
	sorted := sortFn(records)
	c.JSON(http.StatusOK, gin.H{
		"by":    by,
		"order": order,
		"items": sorted,
		"count": len(sorted),
	})
}

// PriceRange handles GET /v1/catalog/price-range?min=<cents>&max=<cents>&category=.
// Bounds are inclusive; an inverted range is empty.
func (api *ProductsAPI) PriceRange(c *gin.Context) {
	if c.Query("min") == "" || c.Query("max") == "" {
		badRequest(c, "query params min and max are required")
		return
	}
	minCents, ok := intQuery(c, "min", 0)
	if !ok {
		return
	}
	maxCents, ok := intQuery(c, "max", 0)
	if !ok {
		return
	}

	records, ok := api.snapshot(c)
	if !ok {
		return
	}
	hits := engine.FilterByPriceRange(engine.SortByPrice(records, true), minCents, maxCents)
	c.JSON(http.StatusOK, gin.H{
		"min_cents": minCents,
		"max_cents": maxCents,
		"items":     hits,
		"count":     len(hits),
	})
}

// Cheapest handles GET /v1/catalog/cheapest?k=<n>&category=.
func (api *ProductsAPI) Cheapest(c *gin.Context) {
	k, ok := intQuery(c, "k", 10)
	if !ok {
		return
	}
	if k < 0 {
		badRequest(c, "query param k must not be negative")
		return
	}

	records, ok := api.snapshot(c)
	if !ok {
		return
	}
	top := engine.TopKCheapest(records, int(k))
	c.JSON(http.StatusOK, gin.H{
		"k":     k,
		"items": top,
		"count": len(top),
	})
}

// MedianPrice handles GET /v1/catalog/median-price?category=. For an even count the upper
// median is returned. An empty catalog is a 404.
func (api *ProductsAPI) MedianPrice(c *gin.Context) {
	records, ok := api.snapshot(c)
	if !ok {
		return
	}
	median, found := engine.MedianByPrice(records)
	if !found {
		respondError(c, http.StatusNotFound, codeNotFound, "no products to rank")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"median_price_cents": median.PriceCents,
		"product":            median,
		"population":         len(records),
	})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ViewProduct handles GET /v1/products/:id. A successful view moves the product to the
// front of the recently-viewed list.
func (api *ProductsAPI) ViewProduct(c *gin.Context) {
	key, ok := keyParam(c)
	if !ok {
		return
	}

	record, found, err := api.engine.View(c.Request.Context(), key)
	if err != nil {
		storeError(c, err)
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, codeNotFound, "product "+strconv.FormatInt(key, 10)+" not found")
		return
	}
	c.JSON(http.StatusOK, record)
}

// RecentlyViewed handles GET /v1/recently-viewed, most recent first.
func (api *ProductsAPI) RecentlyViewed(c *gin.Context) {
	items := api.engine.RecentlyViewed()
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// RelatedProducts handles GET /v1/products/:id/related?depth=<n>.
//
// Keys come back in breadth-first order: nearer products first. An unknown product has
// no relations and yields an empty list rather than a 404.
func (api *ProductsAPI) RelatedProducts(c *gin.Context) {
	key, ok := keyParam(c)
	if !ok {
		return
	}
	depth, ok := intQuery(c, "depth", int64(api.relatedDepth))
	if !ok {
		return
	}
	if depth < 0 {
		badRequest(c, "query param depth must not be negative")
		return
	}

	related, err := api.engine.Related(c.Request.Context(), key, int(depth))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      key,
		"depth":   depth,
		"related": related,
		"count":   len(related),
	})
}

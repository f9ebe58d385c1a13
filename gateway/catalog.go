package gateway

import (
	"errors"
	"net/http"

	"github.com/example/foodshop/pkg/catalog"
	"github.com/example/foodshop/pkg/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (g *Gateway) listProducts(c *gin.Context) {
	products, err := g.services.Catalog.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		g.logger.Error("Failed to list products", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (g *Gateway) getProduct(c *gin.Context) {
	product, err := g.services.Catalog.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		abortWithError(c, http.StatusNotFound, "product_not_found", err.Error())
		return
	}
	if err != nil {
		g.logger.Error("Failed to get product", zap.String("product_id", c.Param("id")), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) shippingZones(c *gin.Context) {
	zones := g.config.Shipping.Zones
	if zones == nil {
		zones = []config.ShippingZone{}
	}
	c.JSON(http.StatusOK, zones)
}

func (g *Gateway) shippingQuote(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		abortWithError(c, http.StatusBadRequest, "invalid_request", "city is required")
		return
	}
	zone, ok := g.config.Shipping.Zone(city)
	if !ok {
		abortWithError(c, http.StatusNotFound, "zone_not_found", "no delivery to "+city)
		return
	}
	c.JSON(http.StatusOK, zone)
}

package gateway

import (
	"errors"
	"net/http"

	"github.com/example/foodshop/pkg/checkout"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// postCheckout godoc
// @Summary  Validate the cart against the catalog and create an order
// @Tags     checkout
// @Accept   json
// @Produce  json
// @Param    request body checkout.Request true "Cart and customer data"
// @Success  200 {object} checkout.Result
// @Failure  400 {object} ErrorResponse
// @Failure  500 {object} ErrorResponse
// @Router   /checkout [post]
func (g *Gateway) postCheckout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := g.services.Checkout.Checkout(c.Request.Context(), &req)
	if err != nil {
		g.renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (g *Gateway) renderCheckoutError(c *gin.Context, err error) {
	var cerr *checkout.Error
	if !errors.As(err, &cerr) {
		g.logger.Error("Unexpected checkout failure", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "internal_error", "checkout failed")
		return
	}

	status := cerr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		g.logger.Error("Checkout failed", zap.String("code", cerr.Code), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     cerr.Code,
		Message:   cerr.Message,
		Params:    cerr.Params,
		DebugInfo: cerr.DebugInfo,
	})
}

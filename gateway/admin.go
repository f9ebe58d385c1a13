package gateway

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/orders"
	"github.com/example/foodshop/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatusRequest struct {
	Status         string `json:"status" binding:"required"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

func (g *Gateway) listOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := g.services.Orders.List(c.Request.Context(), repository.OrderFilter{
		Status:   models.OrderStatus(c.Query("status")),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		g.renderOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.services.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.renderOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (g *Gateway) updateOrderStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := g.services.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), orders.StatusChange{
		Status:         req.Status,
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		Actor:          c.GetString(actorKey),
	})
	if err != nil {
		g.renderOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// orderActivity returns the newest activity entries recorded for an order.
func (g *Gateway) orderActivity(c *gin.Context) {
	if g.services.Activity == nil {
		abortWithError(c, http.StatusServiceUnavailable, "activity_unavailable", "activity log is not configured")
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := g.services.Orders.Get(ctx, id); err != nil {
		g.renderOrderError(c, err)
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)), 10, 64)
	if err != nil || limit < 1 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	logs, err := g.services.Activity.ListActivity(ctx, id, limit)
	if err != nil {
		g.logger.Error("Failed to read order activity", zap.String("order_id", id), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to read activity")
		return
	}
	if logs == nil {
		logs = []*repository.ActivityLog{}
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "activity": logs})
}

func (g *Gateway) renderOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		abortWithError(c, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, orders.ErrInvalidStatus):
		abortWithError(c, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, orders.ErrIllegalTransition):
		abortWithError(c, http.StatusConflict, "illegal_transition", err.Error())
	default:
		g.logger.Error("Order administration failed", zap.String("path", c.FullPath()), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "internal_error", "order operation failed")
	}
}

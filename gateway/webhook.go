package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/example/foodshop/pkg/orders"
	"github.com/example/foodshop/pkg/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// notificationID accepts the resource id as either a JSON string or number
// holding a positive decimal id.
type notificationID string

func (n *notificationID) UnmarshalJSON(data []byte) error {
	var raw string
	switch {
	case len(data) > 0 && data[0] == '"':
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	case len(data) > 0 && data[0] >= '0' && data[0] <= '9':
		raw = string(data)
	default:
		return fmt.Errorf("notification id must be a string or number, got %s", data)
	}
	if _, err := payment.ParsePaymentID(raw); err != nil {
		return err
	}
	*n = notificationID(raw)
	return nil
}

type paymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID notificationID `json:"id"`
	} `json:"data"`
}

func (g *Gateway) paymentWebhook(c *gin.Context) {
	var n paymentNotification
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&n); err != nil {
			g.logger.Warn("Unreadable payment notification", zap.Error(err))
			abortWithError(c, http.StatusBadRequest, "invalid_notification", "notification body is not valid")
			return
		}
	}
	if n.Type == "" {
		n.Type = c.Query("type")
	}
	if n.Data.ID == "" {
		if q := c.Query("data.id"); q != "" {
			if _, err := payment.ParsePaymentID(q); err != nil {
				g.logger.Warn("Rejected payment notification id", zap.String("data_id", q))
				abortWithError(c, http.StatusBadRequest, "invalid_notification", "notification id must be numeric")
				return
			}
			n.Data.ID = notificationID(q)
		}
	}

	if n.Type != "payment" || n.Data.ID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ctx := c.Request.Context()
	paymentID := string(n.Data.ID)
	p, err := g.services.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		g.logger.Error("Failed to fetch payment", zap.String("payment_id", paymentID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "payment_lookup_failed", "failed to fetch payment")
		return
	}

	if p.Status != payment.StatusApproved || p.ExternalReference == "" {
		g.logger.Info("Payment not approved yet",
			zap.String("payment_id", paymentID),
			zap.String("status", p.Status),
			zap.String("order_id", p.ExternalReference))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	changed, err := g.services.Orders.MarkPaid(ctx, p.ExternalReference, paymentID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		g.logger.Warn("Approved payment references unknown order",
			zap.String("payment_id", paymentID),
			zap.String("order_id", p.ExternalReference))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		g.logger.Error("Failed to mark order paid", zap.String("order_id", p.ExternalReference), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "order_update_failed", "failed to update order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed", "order_id": p.ExternalReference, "updated": changed})
}

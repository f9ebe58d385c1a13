package gateway

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/foodshop/pkg/checkout"
	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/orders"
	"github.com/example/foodshop/pkg/payment"
	"github.com/example/foodshop/pkg/repository"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const actorKey = "actor"

type CheckoutService interface {
	Checkout(ctx context.Context, req *checkout.Request) (*checkout.Result, error)
}

type CatalogService interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, category string) ([]models.Product, error)
}

type OrderService interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, f repository.OrderFilter) (*orders.Page, error)
	UpdateStatus(ctx context.Context, id string, change orders.StatusChange) (*models.Order, error)
	MarkPaid(ctx context.Context, id, paymentID string) (bool, error)
}

type PaymentLookup interface {
	GetPayment(ctx context.Context, paymentID string) (*payment.Payment, error)
}

type ActivityReader interface {
	ListActivity(ctx context.Context, entityID string, limit int64) ([]*repository.ActivityLog, error)
}

// Services are the domain collaborators behind the HTTP routes.
type Services struct {
	Checkout CheckoutService
	Catalog  CatalogService
	Orders   OrderService
	Payments PaymentLookup
	// Activity is optional; without it the activity route answers 503.
	Activity ActivityReader
}

type ErrorResponse struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
	DebugInfo map[string]interface{} `json:"debug_info,omitempty"`
}

type Gateway struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
	services Services
}

func NewGateway(cfg *config.Config, logger *zap.Logger, services Services) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Gateway{
		config:   cfg,
		logger:   logger,
		router:   router,
		services: services,
	}
}

func (g *Gateway) SetupRoutes() {
	// Health check
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := g.router.Group("/api/v1")
	{
		v1.POST("/checkout", g.postCheckout)

		products := v1.Group("/products")
		{
			products.GET("", g.listProducts)
			products.GET("/:id", g.getProduct)
		}

		shipping := v1.Group("/shipping")
		{
			shipping.GET("/zones", g.shippingZones)
			shipping.GET("/quote", g.shippingQuote)
		}

		v1.POST("/payments/webhook", g.paymentWebhook)

		admin := v1.Group("/admin", adminAuth(g.config.Admin.Tokens))
		{
			admin.GET("/orders", g.listOrders)
			admin.GET("/orders/:id", g.getOrder)
			admin.PUT("/orders/:id/status", g.updateOrderStatus)
			admin.GET("/orders/:id/activity", g.orderActivity)
		}
	}

	if g.config.Gateway.Swagger {
		g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Gateway.Host, g.config.Gateway.Port)
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// adminAuth accepts requests carrying one of tokens as a bearer credential.
func adminAuth(tokens []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == header {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		for i, t := range tokens {
			if t != "" && subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
				c.Set(actorKey, fmt.Sprintf("admin-%d", i))
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid token")
	}
}
